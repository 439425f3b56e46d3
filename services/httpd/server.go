// services/httpd/server.go
package httpd

import (
	"context"
	"time"

	"weatherstation-go/state"
)

// Options carries the server's fixed limits.
type Options struct {
	MaxConns    int
	MaxRequest  int           // cumulative request cap; beyond it → 413
	ChunkSize   int           // body bytes per write opportunity
	IdleTimeout time.Duration // evicted when no data received for this long
	ReapPeriod  time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxConns:    4,
		MaxRequest:  1024,
		ChunkSize:   512,
		IdleTimeout: 10 * time.Second,
		ReapPeriod:  time.Second,
	}
}

// Server drives every connection through
// Accepted → Receiving → Responding → Closed, with Closed reachable from any
// phase on error or eviction. Handle is the single transition function; the
// transport must invoke it from one context at a time.
type Server struct {
	st   *state.Store
	pool *Pool
	opts Options

	now func() time.Time // stubbed in tests
}

func NewServer(st *state.Store, opts Options) *Server {
	if opts.MaxConns <= 0 {
		opts = DefaultOptions()
	}
	return &Server{
		st:   st,
		pool: NewPool(opts.MaxConns, opts.IdleTimeout),
		opts: opts,
		now:  time.Now,
	}
}

func (s *Server) Pool() *Pool { return s.pool }

// Start launches the timeout reaper.
func (s *Server) Start(ctx context.Context) error {
	go s.pool.RunReaper(ctx, s.opts.ReapPeriod)
	return nil
}

// Handle applies one transport event.
func (s *Server) Handle(ev Event) {
	switch ev.Kind {
	case EvAccept:
		s.accept(ev.Conn)
	case EvData:
		s.data(ev.Conn, ev.Data)
	case EvSent:
		if rec := s.pool.Lookup(ev.Conn); rec != nil {
			s.pump(rec)
		}
	case EvError:
		if rec := s.pool.Lookup(ev.Conn); rec != nil {
			println("Error: transport:", ev.Err.Error())
			s.pool.Release(rec)
		}
	}
}

func (s *Server) accept(conn Conn) {
	rec, err := s.pool.Accept(conn, s.now())
	if err != nil {
		println("Info: connection refused, pool full:", conn.RemoteAddr())
		_ = conn.Close()
		return
	}
	rec.phase = phaseReceiving
}

func (s *Server) data(conn Conn, p []byte) {
	rec := s.pool.Lookup(conn)
	if rec == nil {
		return
	}
	if len(p) == 0 {
		// Peer closed; nothing to answer.
		s.pool.Release(rec)
		return
	}
	s.pool.Touch(rec, s.now())
	if rec.phase != phaseReceiving {
		return
	}

	if len(rec.req)+len(p) > s.opts.MaxRequest {
		println("Info: request over size cap from", conn.RemoteAddr())
		s.respond(rec, plainHeader("413 Payload Too Large", len("Payload Too Large")), []byte("Payload Too Large"))
		return
	}
	rec.req = append(rec.req, p...)

	if i := headerEnd(rec.req); i >= 0 {
		s.route(rec, string(rec.req[:i]), string(rec.req[i+4:]))
	}
}

// headerEnd returns the index of the "\r\n\r\n" terminator, or -1.
func headerEnd(b []byte) int {
	for i := 0; i+3 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' && b[i+2] == '\r' && b[i+3] == '\n' {
			return i
		}
	}
	return -1
}
