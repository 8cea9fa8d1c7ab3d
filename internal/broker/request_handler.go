package broker

import (
	"github.com/rs/zerolog"
	"github.com/z3phyrl/zeitop/internal/metrics"
	"github.com/z3phyrl/zeitop/internal/wire"
)

// RequestHandler runs per registered request service: it reads reply frames from the service's Connection and routes each
// one back to the client that made the original request.
type RequestHandler struct {
	svc    *Service
	cmap   *ConnectionMap
	frames <-chan Frame
	log    zerolog.Logger
}

// NewRequestHandler constructs a RequestHandler for svc, consuming
// frames from the given subscription.
func NewRequestHandler(svc *Service, cmap *ConnectionMap, frames <-chan Frame, log zerolog.Logger) *RequestHandler {
	return &RequestHandler{svc: svc, cmap: cmap, frames: frames, log: log}
}

// Run drives the handler until the service's connection closes. It
// deregisters the service on exit, regardless of cause.
func (h *RequestHandler) Run() {
	defer func() {
		h.cmap.Services.Remove(h.svc.Name)
		metrics.ServicesRegistered.WithLabelValues(h.svc.Kind.String()).Dec()
	}()

	for frame := range h.frames {
		switch frame.Kind {
		case FrameClosed:
			return
		case FrameBinary:
			h.log.Debug().Msg("binary frame from service, dropping (unimplemented)")
		case FrameText:
			h.dispatch(frame.Text)
		}
	}
}

func (h *RequestHandler) dispatch(text string) {
	addr, ok := wire.ParseServiceAddress(text)
	if !ok {
		sendDiagnostic(h.svc.Conn, diagInvalidRequest)
		return
	}

	request, tracked := h.svc.takeRequest(addr.Serial, addr.ID, addr.Tag)
	if !tracked {
		sendDiagnostic(h.svc.Conn, diagInvalidDestination)
		return
	}

	client, ok := h.cmap.Clients.Get(addr.Serial, addr.ID)
	if !ok {
		// The client disconnected between request and reply. The reply
		// is dropped silently; this is not a protocol violation by the
		// service, so no diagnostic is sent to it.
		metrics.RepliesDropped.Inc()
		return
	}

	reply := wire.FormatClientReply(request, addr.Tag, h.svc.Name, addr.Data)
	client.Conn.SendText(reply)
}
