// Package device represents the USB device bring-up pipeline as a
// collaborator interface only — out of scope for this broker, specified
// only by the interface its core uses. original_source/src/device.rs
// implements USB hotplug detection (rusb), port-forwarding, and helper
// package installation (adb) for this role; none of that is available
// or in scope here, so this package defines the seam a real
// implementation would fill without attempting USB access itself.
package device

import "context"

// Config mirrors original_source/src/config.rs's DeviceConfig fields
// relevant to the bring-up contract, trimmed to what a collaborator
// needs to know to act.
type Config struct {
	LocalPort    uint16
	RemotePort   uint16
	AppPath      string
	CleanerPath  string
}

// Bringup is the seam the broker's startup wiring calls into once a
// device is ready to be handed a client connection. A real
// implementation watches for USB hotplug, reverse-forwards
// RemotePort->LocalPort, and installs/launches AppPath on the device so
// its on-device client can dial back to the broker.
type Bringup interface {
	// Watch blocks, bringing up devices as they attach, until ctx is
	// canceled.
	Watch(ctx context.Context) error
}

// Noop is a Bringup that does nothing; it is the default when no real
// device pipeline is wired in, matching the "no device workflow" case
// a broker running purely against eventbridge/page/sysinfo clients
// needs.
type Noop struct{}

func (Noop) Watch(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
