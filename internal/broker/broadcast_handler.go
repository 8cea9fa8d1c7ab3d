package broker

import (
	"github.com/rs/zerolog"
	"github.com/z3phyrl/zeitop/internal/metrics"
	"github.com/z3phyrl/zeitop/internal/wire"
)

// BroadcastHandler is one (broadcast-service, subscribed-client) pump.
// A broadcast service with k subscribers has k
// independent handlers, each with its own subscriber clone of the
// service connection's inbound fan-out.
type BroadcastHandler struct {
	svc        *Service
	cmap       *ConnectionMap
	clientConn *Connection
	frames     <-chan Frame
	unsubscribe func()
	log        zerolog.Logger
}

// NewBroadcastHandler binds svc (which must be a broadcast service) to
// clientConn. The svc.Kind check mirrors original_source's own
// defensive check in its BroadcastHandler constructor; given the
// caller already dispatches on Service.Kind, it is not reachable in
// practice but is kept for parity with the original's structure.
func NewBroadcastHandler(svc *Service, cmap *ConnectionMap, clientConn *Connection, log zerolog.Logger) (*BroadcastHandler, error) {
	if svc.Kind != wire.ServiceKindBroadcast {
		return nil, errNotABroadcastService
	}
	frames, unsubscribe := svc.Conn.Subscribe()
	return &BroadcastHandler{svc: svc, cmap: cmap, clientConn: clientConn, frames: frames, unsubscribe: unsubscribe, log: log}, nil
}

// Run delivers each publication from the service to the bound client
// until the service connection closes, at which point it deregisters
// the service: broadcast registrations spawn no per-service task
// (unlike request services' RequestHandler), so a subscriber pump is
// the only place left to reap a dead broadcast service from the
// registry.
func (h *BroadcastHandler) Run() {
	defer h.unsubscribe()

	for frame := range h.frames {
		switch frame.Kind {
		case FrameClosed:
			h.cmap.Services.Remove(h.svc.Name)
			return
		case FrameBinary:
			h.log.Debug().Msg("binary frame from broadcast service, dropping (unimplemented)")
		case FrameText:
			delivery := wire.FormatBroadcastDelivery(h.svc.Name, frame.Text)
			h.clientConn.SendText(delivery)
			metrics.BroadcastsPublished.Inc()
		}
	}
}
