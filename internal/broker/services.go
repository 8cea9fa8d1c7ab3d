package broker

import (
	"errors"
	"sync"

	"github.com/z3phyrl/zeitop/internal/wire"
)

// ErrServiceAlreadyRegistered is returned by ServiceMap.Insert when name
// is already claimed; the caller renders diagServiceAlreadyRegistered
// onto the rejected connection.
var ErrServiceAlreadyRegistered = errors.New("service already registered")

// errNotABroadcastService guards BroadcastHandler construction; see its
// doc comment for why this is effectively unreachable in practice.
var errNotABroadcastService = errors.New("not a broadcast service")

type pendingKey struct {
	serial string
	id     uint32
	tag    string
}

// Service is a registered request or broadcast service. Request
// services additionally track outstanding requests so a later reply
// (which the wire grammar carries only as
// "<serial>@<id>[#tag]::<payload>") can be matched back to the
// original request text the client sent.
type Service struct {
	Name string
	Kind wire.ServiceKind
	Conn *Connection

	pendingMu sync.Mutex
	pending   map[pendingKey]string
}

func newService(name string, kind wire.ServiceKind, conn *Connection) *Service {
	return &Service{
		Name:    name,
		Kind:    kind,
		Conn:    conn,
		pending: make(map[pendingKey]string),
	}
}

// trackRequest remembers the original request text sent to (serial, id,
// tag) so it can be echoed back to the client once the service replies.
func (s *Service) trackRequest(serial string, id uint32, tag, request string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[pendingKey{serial, id, tag}] = request
}

// takeRequest retrieves and forgets the request text tracked for
// (serial, id, tag). ok is false if no such request is outstanding —
// either the address was never tracked or the reply already consumed it.
func (s *Service) takeRequest(serial string, id uint32, tag string) (string, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	key := pendingKey{serial, id, tag}
	req, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	return req, ok
}

// ServiceMap maps a service name to the single Connection currently
// providing it.
type ServiceMap struct {
	mu   sync.RWMutex
	byName map[string]*Service
}

// NewServiceMap constructs an empty ServiceMap.
func NewServiceMap() *ServiceMap {
	return &ServiceMap{byName: make(map[string]*Service)}
}

// Insert registers a new service under name. It fails with
// ErrServiceAlreadyRegistered if name is already claimed; the existing
// registration is left untouched.
func (m *ServiceMap) Insert(name string, kind wire.ServiceKind, conn *Connection) (*Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[name]; exists {
		return nil, ErrServiceAlreadyRegistered
	}

	svc := newService(name, kind, conn)
	m.byName[name] = svc
	return svc, nil
}

// Get looks up a service by name.
func (m *ServiceMap) Get(name string) (*Service, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.byName[name]
	return svc, ok
}

// Remove deregisters name. Idempotent: it is not an error to remove a
// name that is absent.
func (m *ServiceMap) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byName, name)
}

// Count returns the number of registered services of a given kind, for
// metrics and the /debug/state surface.
func (m *ServiceMap) Count(kind wire.ServiceKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, svc := range m.byName {
		if svc.Kind == kind {
			n++
		}
	}
	return n
}

// Names returns every currently registered service name, for the
// /debug/state surface.
func (m *ServiceMap) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	return names
}
