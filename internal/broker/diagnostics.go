package broker

import "github.com/z3phyrl/zeitop/internal/metrics"

// Diagnostic text, verbatim from the wire grammar's diagnostic table.
// Most carry the "!" prefix used for peer-facing protocol errors.
// Service-hello failures are the exception: all three of them
// (name/type unspecified, invalid type) go out unprefixed, matching
// original_source's own unprefixed hello diagnostics, while
// duplicate-registration keeps its "!" prefix as observed in the
// worked scenarios.
const (
	// diagServiceNameUnspecified is the client-dispatch-path diagnostic
	// (§4.5): a request frame naming no service.
	diagServiceNameUnspecified = "!Service Name Unspecified"
	diagInvalidService         = "!Invalid Service"
	diagInvalidRequest         = "!Invalid Request"
	diagInvalidDestination     = "!Invalid Destination"
	diagNotABroadcastService   = "!Not a Broadcast Service"
	diagCanNotSend             = "!Can not Send"
	diagServiceAlreadyRegistered = "!Service already registered"

	// The three service-hello diagnostics below share the unprefixed
	// form; none of them are peer-facing "!..." protocol errors in the
	// original sense, they are hello-negotiation rejections.
	diagHelloServiceNameUnspecified = "Service Name Unspecified"
	diagInvalidServiceType          = "Invalid ServiceType"
	diagServiceTypeUnspecified      = "ServiceType Unspecified"

	keepaliveFrame = "?"
	helloOk        = "@Ok"
)

// sendDiagnostic sends a diagnostic text frame on conn and records it
// against internal/metrics.DiagnosticsSent, labeled by the diagnostic
// text itself.
func sendDiagnostic(conn *Connection, diagnostic string) bool {
	metrics.DiagnosticsSent.WithLabelValues(diagnostic).Inc()
	return conn.SendText(diagnostic)
}
