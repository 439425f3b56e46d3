// services/httpd/transport_net.go
package httpd

import (
	"context"
	"net"
)

// NetTransport adapts a stream listener to the event model. All events are
// funnelled through one dispatcher goroutine, so Handle never runs
// concurrently with itself. Writes synthesize an EvSent once the data has
// been handed to the stack, which drives the sender's continuation.
type NetTransport struct {
	ln     net.Listener
	events chan Event
	handle func(Event)
}

func ListenNet(addr string, handle func(Event)) (*NetTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &NetTransport{
		ln:     ln,
		events: make(chan Event, 64),
		handle: handle,
	}, nil
}

func (t *NetTransport) Start(ctx context.Context) error {
	go t.dispatch(ctx)
	go t.acceptLoop(ctx)
	return nil
}

func (t *NetTransport) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = t.ln.Close()
			return
		case ev := <-t.events:
			t.handle(ev)
		}
	}
}

func (t *NetTransport) acceptLoop(ctx context.Context) {
	for {
		nc, err := t.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			println("Error: accept:", err.Error())
			continue
		}
		c := &netConn{nc: nc, t: t}
		t.events <- Event{Kind: EvAccept, Conn: c}
		go t.readLoop(ctx, c)
	}
}

// readLoop turns received bytes into EvData events. EOF maps to the
// zero-length delivery that signals a peer close.
func (t *NetTransport) readLoop(ctx context.Context, c *netConn) {
	buf := make([]byte, 536)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case t.events <- Event{Kind: EvData, Conn: c, Data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case t.events <- Event{Kind: EvData, Conn: c}:
			case <-ctx.Done():
			}
			return
		}
	}
}

type netConn struct {
	nc net.Conn
	t  *NetTransport
}

func (c *netConn) Write(p []byte) (int, error) {
	n, err := c.nc.Write(p)
	if err == nil {
		// Sent from within the dispatcher; a blocking send would deadlock.
		go func() { c.t.events <- Event{Kind: EvSent, Conn: c} }()
	}
	return n, err
}

func (c *netConn) Close() error { return c.nc.Close() }

func (c *netConn) RemoteAddr() string {
	if a := c.nc.RemoteAddr(); a != nil {
		return a.String()
	}
	return "?"
}
