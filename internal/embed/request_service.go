package embed

import (
	"fmt"

	"github.com/z3phyrl/zeitop/internal/wire"
)

// RequestService is a loopback connection registered as a request
// service.
type RequestService struct {
	name   string
	sender *sendLocked
}

// OpenRequestService dials addr and registers name as a request
// service. A rejected hello (e.g. name already claimed) is not reported
// here: the first call to Next returns it as a *RegistrationError, since
// the broker never acknowledges a service hello directly (only clients
// receive "@Ok").
func OpenRequestService(addr, name string) (*RequestService, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, err
	}
	sender := &sendLocked{conn: conn}
	if err := sender.send(fmt.Sprintf("+%s::request", name)); err != nil {
		conn.Close()
		return nil, err
	}
	return &RequestService{name: name, sender: sender}, nil
}

// Close tears down the loopback connection.
func (s *RequestService) Close() error {
	return s.sender.close()
}

// Request is one forwarded client request, ready to be answered via
// Text, Error, or Binary.
type Request struct {
	Serial string
	ID     uint32
	Tag    string
	Data   string

	svc *RequestService
}

// Next blocks until the broker forwards the next request, echoing any
// keepalive pings transparently in the meantime.
func (s *RequestService) Next() (*Request, error) {
	for {
		text, err := echoKeepalive(s.sender.conn, s.sender)
		if err != nil {
			return nil, err
		}
		if isDiagnostic(text) {
			return nil, &RegistrationError{Diagnostic: text}
		}
		addr, ok := wire.ParseServiceAddress(text)
		if !ok {
			// Malformed forwarded-request frame; keep reading rather
			// than aborting the whole service on one bad frame.
			continue
		}
		return &Request{Serial: addr.Serial, ID: addr.ID, Tag: addr.Tag, Data: addr.Data, svc: s}, nil
	}
}

// Text replies to the request with payload s.
func (r *Request) Text(s string) error {
	return r.svc.sender.send(wire.FormatServiceAddress(r.Serial, r.ID, r.Tag, s))
}

// Error replies to the request with an error payload; the client sees
// it prefixed with "!" once the broker forwards it.
func (r *Request) Error(s string) error {
	return r.Text("!" + s)
}

// Binary is unimplemented: binary replies have no grammar defined for
// them yet.
func (r *Request) Binary(data []byte) error {
	return fmt.Errorf("binary replies are unimplemented")
}
