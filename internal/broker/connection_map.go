package broker

// ConnectionMap is the shared handle threaded through every handler:
// the client registry and the service registry, carried by value to
// every handler spawned over the lifetime of the broker.
type ConnectionMap struct {
	Clients  *ClientMap
	Services *ServiceMap
}

// NewConnectionMap constructs an empty ConnectionMap.
func NewConnectionMap() *ConnectionMap {
	return &ConnectionMap{
		Clients:  NewClientMap(),
		Services: NewServiceMap(),
	}
}
