package embed

import "fmt"

// BroadcastService is a loopback connection registered as a broadcast
// service.
type BroadcastService struct {
	name   string
	sender *sendLocked
}

// OpenBroadcastService dials addr and registers name as a broadcast
// service.
func OpenBroadcastService(addr, name string) (*BroadcastService, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, err
	}
	sender := &sendLocked{conn: conn}
	if err := sender.send(fmt.Sprintf("+%s::broadcast", name)); err != nil {
		conn.Close()
		return nil, err
	}
	go sender.keepaliveLoop()
	return &BroadcastService{name: name, sender: sender}, nil
}

// keepaliveLoop answers inbound "?" pings for the lifetime of the
// connection. Other text frames (such as a registration diagnostic)
// are discarded; a binary frame or a read error ends the loop.
func (s *sendLocked) keepaliveLoop() {
	for {
		if _, err := echoKeepalive(s.conn, s); err != nil {
			return
		}
	}
}

// Publish sends payload to every client currently subscribed to this
// broadcast service.
func (s *BroadcastService) Publish(payload string) error {
	return s.sender.send(payload)
}

// Close tears down the loopback connection.
func (s *BroadcastService) Close() error {
	return s.sender.close()
}
