// Package broker implements the core message broker: connection
// lifecycle, the text wire protocol, the client and service registries,
// and the request and broadcast routing state machines.
package broker

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/z3phyrl/zeitop/internal/metrics"
	"github.com/z3phyrl/zeitop/internal/wire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The wire protocol has no notion of origin-based access control or
	// authentication; accepting any origin matches that scope.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broker ties the shared registries to an HTTP handler that upgrades
// incoming connections and runs the hello loop.
type Broker struct {
	cmap *ConnectionMap
	log  zerolog.Logger
}

// New constructs a Broker over a fresh ConnectionMap.
func New(log zerolog.Logger) *Broker {
	return &Broker{cmap: NewConnectionMap(), log: log}
}

// ConnectionMap exposes the broker's registries, e.g. for the
// /debug/state ambient HTTP surface.
func (b *Broker) ConnectionMap() *ConnectionMap {
	return b.cmap
}

// ServeHTTP upgrades the request to WebSocket and runs the hello loop
// on it.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Debug().Err(err).Msg("upgrade failed")
		return
	}
	conn := NewConnection(ws, b.log)
	go b.accept(conn)
}

// accept runs the hello loop for one newly upgraded connection: read
// text frames until one parses as a service or client registration,
// then install the corresponding handler.
func (b *Broker) accept(conn *Connection) {
	frames, unsubscribe := conn.Subscribe()

	for frame := range frames {
		switch frame.Kind {
		case FrameClosed:
			unsubscribe()
			return
		case FrameBinary:
			// Binary hello frames have no grammar to parse against; log
			// and keep waiting for a valid hello rather than aborting
			// the connection outright.
			b.log.Debug().Msg("binary frame during hello, dropping")
			continue
		case FrameText:
			if b.helloFrame(conn, frame.Text, unsubscribe) {
				return
			}
		}
	}
}

// helloFrame processes one candidate hello frame. It returns true once
// the hello loop is finished for this connection (either the
// connection was handed off to a spawned handler, or it was closed
// after a malformed hello).
func (b *Broker) helloFrame(conn *Connection, text string, unsubscribe func()) bool {
	if body, isService := strings.CutPrefix(text, "+"); isService {
		return b.serviceHello(conn, body, unsubscribe)
	}
	return b.clientHello(conn, text, unsubscribe)
}

func (b *Broker) serviceHello(conn *Connection, body string, unsubscribe func()) bool {
	hello, err := wire.ParseServiceHello(body)
	if err != nil {
		// Malformed hellos (unparseable name/type) abort the connection
		// rather than permitting a retry.
		sendDiagnostic(conn, serviceHelloDiagnostic(err))
		unsubscribe()
		conn.Close()
		return true
	}

	svc, err := b.cmap.Services.Insert(hello.Name, hello.Kind, conn)
	if err != nil {
		// Duplicate registration: diagnose the late arrival but do not
		// forcibly close its connection.
		sendDiagnostic(conn, diagServiceAlreadyRegistered)
		unsubscribe()
		return true
	}

	metrics.ServicesRegistered.WithLabelValues(hello.Kind.String()).Inc()
	unsubscribe()

	if hello.Kind == wire.ServiceKindRequest {
		handlerFrames, handlerUnsubscribe := conn.Subscribe()
		handler := NewRequestHandler(svc, b.cmap, handlerFrames, b.log)
		go func() {
			defer handlerUnsubscribe()
			handler.Run()
		}()
	}
	// Broadcast services spawn no per-service task; subscribers drive
	// their own BroadcastHandler pumps when clients subscribe.
	return true
}

func (b *Broker) clientHello(conn *Connection, serial string, unsubscribe func()) bool {
	client := b.cmap.Clients.Insert(serial, conn)
	conn.SendText(helloOk)
	metrics.ClientsConnected.Inc()
	unsubscribe()

	handlerFrames, handlerUnsubscribe := conn.Subscribe()
	handler := NewClientHandler(conn, client.Serial, client.ID, b.cmap, handlerFrames, b.log)
	go func() {
		defer handlerUnsubscribe()
		handler.Run()
	}()
	return true
}

func serviceHelloDiagnostic(err error) string {
	switch err {
	case wire.ErrServiceNameUnspecified:
		return diagHelloServiceNameUnspecified
	case wire.ErrServiceTypeUnspecified:
		return diagServiceTypeUnspecified
	case wire.ErrInvalidServiceType:
		return diagInvalidServiceType
	default:
		return diagInvalidRequest
	}
}
