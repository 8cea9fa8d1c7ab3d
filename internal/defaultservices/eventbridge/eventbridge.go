// Package eventbridge is a default broadcast service that republishes
// messages from a NATS subject onto the broker, ported in spirit from
// original_source/src/default_services/pulse.rs (which bridged an
// external event source — PulseAudio — onto the broker as a service).
// Grounded in nats-io/nats.go's connect/subscribe pattern from
// streamspace-dev-streamspace/docker-controller/pkg/events/subscriber.go.
package eventbridge

import (
	"github.com/nats-io/nats.go"
	"github.com/z3phyrl/zeitop/internal/apperrors"
	"github.com/z3phyrl/zeitop/internal/embed"
)

// Run registers "eventbridge" as a broadcast service at addr and
// republishes every message received on subject until ctx-less
// cancellation via connection failure. If natsURL is empty the bridge
// does not start at all — this is a documented scope decision, not a
// silent feature loss.
func Run(addr, natsURL, subject string) error {
	if natsURL == "" {
		return nil
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("zeitop-eventbridge"),
		nats.ReconnectWait(2e9),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return apperrors.UpstreamUnavailable("nats", err)
	}
	defer nc.Close()

	svc, err := embed.OpenBroadcastService(addr, "eventbridge")
	if err != nil {
		return err
	}
	defer svc.Close()

	done := make(chan error, 1)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		if err := svc.Publish(string(msg.Data)); err != nil {
			select {
			case done <- err:
			default:
			}
		}
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeUpstreamUnavailable, "subscribing to "+subject, err)
	}
	defer sub.Unsubscribe()

	return <-done
}
