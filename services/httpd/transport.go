// services/httpd/transport.go
package httpd

// Conn is the transport handle for one accepted connection. Writes are
// non-blocking at the transport level; a short write surfaces as an error.
type Conn interface {
	Write(p []byte) (int, error)
	Close() error
	RemoteAddr() string
}

// EventKind enumerates the transport callbacks, delivered as explicit
// inputs to Server.Handle rather than re-entrant callbacks.
type EventKind int

const (
	EvAccept EventKind = iota // new connection
	EvData                    // bytes received; empty Data means peer close
	EvSent                    // a previous write was flushed
	EvError                   // transport failure; connection is dead
)

func (k EventKind) String() string {
	switch k {
	case EvAccept:
		return "accept"
	case EvData:
		return "data"
	case EvSent:
		return "sent"
	case EvError:
		return "error"
	}
	return "unknown"
}

// Event is one transport occurrence on one connection.
type Event struct {
	Kind EventKind
	Conn Conn
	Data []byte
	Err  error
}
