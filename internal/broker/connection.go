package broker

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// keepaliveInterval matches original_source/src/server.rs: a ping is
// sent on a fixed cadence regardless of recent traffic, not an idle
// timer.
const keepaliveInterval = 30 * time.Second

const writeTimeout = 10 * time.Second

// FrameKind classifies a frame delivered to a Connection subscriber.
type FrameKind int

const (
	// FrameText is a text message, with the keepalive "?" frame already
	// suppressed by the reader task — it never reaches subscribers.
	FrameText FrameKind = iota
	// FrameBinary is a binary message. The text wire grammar has no
	// rule for binary frames; rather than closing the connection over
	// it, these are delivered to subscribers so a handler can log and
	// drop them.
	FrameBinary
	// FrameClosed marks that the connection's reader has terminated,
	// either because the peer closed or because of a transport error.
	// It is always the last frame a subscriber receives.
	FrameClosed
)

// Frame is one inbound unit delivered to a Connection's subscribers.
type Frame struct {
	Kind   FrameKind
	Text   string
	Binary []byte
}

type outboundFrame struct {
	messageType int
	data        []byte
}

// Connection wraps one upgraded WebSocket with the broker's transport
// contract: a single writer task draining a growable
// outbound queue, a single reader task fanning inbound frames out to
// any number of subscriber clones, and a keepalive task. Handing a
// connection off between the acceptor's hello loop and the spawned
// client/service handler is just subscribing a new channel and
// unsubscribing the old one — no frames are lost across the handoff
// because both ends observe the same fan-out.
type Connection struct {
	ws  *websocket.Conn
	log zerolog.Logger

	outMu    sync.Mutex
	outCond  *sync.Cond
	outQueue *queue.Queue
	closed   bool

	fan *fanout

	closeOnce sync.Once
}

// NewConnection starts a Connection's reader, writer, and keepalive
// tasks over an already-upgraded WebSocket.
func NewConnection(ws *websocket.Conn, log zerolog.Logger) *Connection {
	c := &Connection{
		ws:       ws,
		log:      log,
		outQueue: queue.New(),
		fan:      newFanout(),
	}
	c.outCond = sync.NewCond(&c.outMu)

	go c.writeLoop()
	go c.readLoop()
	go c.keepaliveLoop()

	return c
}

// Subscribe registers a new subscriber to this connection's inbound
// fan-out. The returned cancel func must be called once the caller is
// done reading, typically via defer in the handler's run loop.
func (c *Connection) Subscribe() (<-chan Frame, func()) {
	return c.fan.subscribe()
}

// SendText enqueues a text frame for delivery. It never blocks: the
// outbound queue grows to hold it. Returns false if the connection is
// already closed, the caller's cue to emit a "Can not Send" diagnostic
// where the protocol calls for one.
func (c *Connection) SendText(text string) bool {
	return c.enqueue(outboundFrame{messageType: websocket.TextMessage, data: []byte(text)})
}

// SendBinary enqueues a binary frame. Like SendText it never blocks and
// returns false if the connection is already closed.
func (c *Connection) SendBinary(data []byte) bool {
	return c.enqueue(outboundFrame{messageType: websocket.BinaryMessage, data: data})
}

func (c *Connection) enqueue(f outboundFrame) bool {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.closed {
		return false
	}
	c.outQueue.Add(f)
	c.outCond.Signal()
	return true
}

// Close terminates the connection's tasks and the underlying socket.
// Safe to call more than once and from any task.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.outMu.Lock()
		c.closed = true
		c.outCond.Broadcast()
		c.outMu.Unlock()
		c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	for {
		c.outMu.Lock()
		for c.outQueue.Length() == 0 && !c.closed {
			c.outCond.Wait()
		}
		if c.outQueue.Length() == 0 {
			c.outMu.Unlock()
			return
		}
		f := c.outQueue.Peek().(outboundFrame)
		c.outQueue.Remove()
		c.outMu.Unlock()

		c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.ws.WriteMessage(f.messageType, f.data); err != nil {
			c.log.Debug().Err(err).Msg("write failed, closing connection")
			c.Close()
			return
		}
	}
}

func (c *Connection) keepaliveLoop() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !c.SendText(keepaliveFrame) {
			return
		}
	}
}

// readLoop drains the WebSocket into the fan-out, suppressing keepalive
// frames so they never reach a subscriber.
func (c *Connection) readLoop() {
	defer func() {
		c.fan.publish(Frame{Kind: FrameClosed})
		c.Close()
	}()

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		switch messageType {
		case websocket.TextMessage:
			text := string(data)
			if text == keepaliveFrame {
				continue
			}
			c.fan.publish(Frame{Kind: FrameText, Text: text})
		case websocket.BinaryMessage:
			c.fan.publish(Frame{Kind: FrameBinary, Binary: data})
		default:
			// Control frames are handled by gorilla internally; nothing
			// else is expected here.
		}
	}
}

// fanout is a bounded (capacity 64) broadcaster
// of inbound frames to any number of independent subscriber clones,
// generalizing a single-hub clients-map broadcast to
// support the acceptor-to-handler handoff and one-to-many broadcast
// delivery.
type fanout struct {
	mu          sync.Mutex
	subscribers map[chan Frame]struct{}
}

const fanoutBuffer = 64

func newFanout() *fanout {
	return &fanout{subscribers: make(map[chan Frame]struct{})}
}

func (f *fanout) subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, fanoutBuffer)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// publish fans a frame out to every current subscriber. A subscriber
// whose buffer is full misses the frame: lagging subscribers drop
// intermediate frames rather than stalling the reader.
func (f *fanout) publish(frame Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- frame:
		default:
		}
	}
}
