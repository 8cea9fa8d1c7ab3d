package broker

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/z3phyrl/zeitop/internal/metrics"
	"github.com/z3phyrl/zeitop/internal/wire"
)

// ClientHandler is the per-client state machine: it parses inbound
// text frames from one client connection and
// dispatches them to services.
type ClientHandler struct {
	conn   *Connection
	serial string
	id     uint32
	cmap   *ConnectionMap
	frames <-chan Frame
	log    zerolog.Logger
}

// NewClientHandler constructs a ClientHandler for an already-registered
// client, consuming frames from the given subscription.
func NewClientHandler(conn *Connection, serial string, id uint32, cmap *ConnectionMap, frames <-chan Frame, log zerolog.Logger) *ClientHandler {
	return &ClientHandler{conn: conn, serial: serial, id: id, cmap: cmap, frames: frames, log: log}
}

// Run drives the handler until the connection closes. It removes the
// client from the registry on exit, regardless of cause.
func (h *ClientHandler) Run() {
	defer func() {
		h.cmap.Clients.Remove(h.serial, h.id)
		metrics.ClientsConnected.Dec()
	}()

	for frame := range h.frames {
		switch frame.Kind {
		case FrameClosed:
			return
		case FrameBinary:
			h.log.Debug().Msg("binary frame from client, dropping (unimplemented)")
		case FrameText:
			h.dispatch(frame.Text)
		}
	}
}

func (h *ClientHandler) dispatch(text string) {
	body, isRequest := strings.CutPrefix(text, "&")
	if !isRequest {
		sendDiagnostic(h.conn, diagInvalidRequest)
		return
	}

	req, ok := wire.ParseClientRequest(body)
	if !ok {
		sendDiagnostic(h.conn, diagInvalidRequest)
		return
	}
	if req.ServiceName == "" {
		sendDiagnostic(h.conn, diagServiceNameUnspecified)
		return
	}

	svc, ok := h.cmap.Services.Get(req.ServiceName)
	if !ok {
		sendDiagnostic(h.conn, diagInvalidService)
		return
	}

	switch svc.Kind {
	case wire.ServiceKindRequest:
		h.dispatchRequest(svc, req)
	case wire.ServiceKindBroadcast:
		h.dispatchSubscribe(svc)
	}
}

func (h *ClientHandler) dispatchRequest(svc *Service, req wire.ClientRequest) {
	svc.trackRequest(h.serial, h.id, req.Tag, req.Data)
	frame := wire.FormatServiceAddress(h.serial, h.id, req.Tag, req.Data)
	if !svc.Conn.SendText(frame) {
		sendDiagnostic(h.conn, diagCanNotSend)
		return
	}
	metrics.RequestsRouted.Inc()
}

func (h *ClientHandler) dispatchSubscribe(svc *Service) {
	handler, err := NewBroadcastHandler(svc, h.cmap, h.conn, h.log)
	if err != nil {
		sendDiagnostic(h.conn, diagNotABroadcastService)
		return
	}
	go handler.Run()
}
