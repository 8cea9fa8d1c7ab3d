// Package embed is the service-side embedding API: a thin library used
// by in-process services to register themselves by opening a loopback
// WebSocket to the broker and then consuming Request values /
// publishing broadcast payloads.
//
// Wire note: the reply a service sends is the bare
// "<serial>@<id>[#tag]::<payload>" shape, not one that re-embeds the
// original request text onto the wire — the broker already recovers
// the original request text from its own pending-request table keyed
// by (serial, id, tag), so the embedding API does not need to
// round-trip it.
package embed

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// RegistrationError is returned by RequestService.Next when the broker
// sends the service a "!" diagnostic frame, as it does when it rejects
// the service's hello frame (e.g. a duplicate name). Any other "!"
// frame reaching Next is reported the same way.
type RegistrationError struct {
	Diagnostic string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("service registration rejected: %s", e.Diagnostic)
}

func dial(addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing broker at %s: %w", addr, err)
	}
	return conn, nil
}

// sendLocked serializes writes to a connection: gorilla's Conn does not
// support concurrent writers.
type sendLocked struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *sendLocked) send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (s *sendLocked) close() error {
	return s.conn.Close()
}

// echoKeepalive answers every inbound "?" immediately, the only
// keepalive contract the broker enforces on services. text frames
// that are not "?" are returned to the caller; anything else (binary,
// close) is reported as an error.
func echoKeepalive(conn *websocket.Conn, sender *sendLocked) (string, error) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage {
			return "", fmt.Errorf("unsupported frame type %d from broker (unimplemented)", messageType)
		}
		text := string(data)
		if text == "?" {
			if err := sender.send("?"); err != nil {
				return "", err
			}
			continue
		}
		return text, nil
	}
}

func isDiagnostic(text string) bool {
	return strings.HasPrefix(text, "!")
}
