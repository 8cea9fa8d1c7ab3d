package broker

import "sync"

// Client is a registered client connection, keyed by (Serial, ClientId)
// in a ClientMap.
type Client struct {
	Serial string
	ID     uint32
	Conn   *Connection
}

// ClientMap maps a device serial to a set of per-connection numeric
// ids, generalizing a single-level clients set to
// the two-level serial/id scheme this protocol requires.
type ClientMap struct {
	mu      sync.RWMutex
	bySerial map[string]map[uint32]*Client
}

// NewClientMap constructs an empty ClientMap.
func NewClientMap() *ClientMap {
	return &ClientMap{bySerial: make(map[string]map[uint32]*Client)}
}

// Insert allocates the next ClientId for serial — (max existing id) + 1,
// or 1 if this is the first client for that serial — and registers conn
// under it.
func (m *ClientMap) Insert(serial string, conn *Connection) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	inner, ok := m.bySerial[serial]
	if !ok {
		inner = make(map[uint32]*Client)
		m.bySerial[serial] = inner
	}

	var next uint32 = 1
	for id := range inner {
		if id >= next {
			next = id + 1
		}
	}

	client := &Client{Serial: serial, ID: next, Conn: conn}
	inner[next] = client
	return client
}

// Get looks up a client by (serial, id).
func (m *ClientMap) Get(serial string, id uint32) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inner, ok := m.bySerial[serial]
	if !ok {
		return nil, false
	}
	client, ok := inner[id]
	return client, ok
}

// Remove deletes (serial, id). If that was the last id for serial, the
// outer entry is removed too, so a later Insert for the same serial
// starts back at ClientId 1.
func (m *ClientMap) Remove(serial string, id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inner, ok := m.bySerial[serial]
	if !ok {
		return
	}
	delete(inner, id)
	if len(inner) == 0 {
		delete(m.bySerial, serial)
	}
}

// Count returns the total number of registered clients, across all
// serials, for the ambient /debug/state surface and metrics.
func (m *ClientMap) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, inner := range m.bySerial {
		n += len(inner)
	}
	return n
}
