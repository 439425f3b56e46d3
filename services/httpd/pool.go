// services/httpd/pool.go
package httpd

import (
	"context"
	"sync"
	"time"

	"weatherstation-go/errcode"
)

// Connection phases. phaseClosed is reachable from every other phase on
// transport error or timeout eviction.
type phase int

const (
	phaseAccepted phase = iota
	phaseReceiving
	phaseResponding
	phaseClosed
)

// record is the per-slot connection state: request buffer, response cursor
// and idle deadline. A record is owned by exactly one slot from Accept until
// Release.
type record struct {
	conn     Conn
	phase    phase
	deadline time.Time
	req      []byte
	pending  []byte // unsent response body
	started  bool   // header written
	slot     int
}

// Pool is the fixed-capacity connection table. The slot table has two
// writers (server and reaper), so it carries its own lock.
type Pool struct {
	mu    sync.Mutex
	slots []*record
	idle  time.Duration
}

func NewPool(capacity int, idle time.Duration) *Pool {
	if capacity <= 0 {
		capacity = 4
	}
	return &Pool{
		slots: make([]*record, capacity),
		idle:  idle,
	}
}

// Accept claims a free slot for conn. At capacity the connection is refused
// outright; the caller closes it and no record exists.
func (p *Pool) Accept(conn Conn, now time.Time) (*record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.slots {
		if r == nil {
			rec := &record{
				conn:     conn,
				phase:    phaseAccepted,
				deadline: now.Add(p.idle),
				slot:     i,
			}
			p.slots[i] = rec
			return rec, nil
		}
	}
	return nil, errcode.PoolFull
}

// Release closes the transport and frees the slot. Idempotent: releasing an
// already-released record is a no-op.
func (p *Pool) Release(rec *record) {
	if rec == nil {
		return
	}
	p.mu.Lock()
	if rec.phase == phaseClosed {
		p.mu.Unlock()
		return
	}
	rec.phase = phaseClosed
	if p.slots[rec.slot] == rec {
		p.slots[rec.slot] = nil
	}
	p.mu.Unlock()
	_ = rec.conn.Close()
}

// Lookup finds the live record for a transport handle.
func (p *Pool) Lookup(conn Conn) *record {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.slots {
		if r != nil && r.conn == conn {
			return r
		}
	}
	return nil
}

// Touch refreshes the idle deadline. Called on received data only; sending
// never extends a connection's life.
func (p *Pool) Touch(rec *record, now time.Time) {
	p.mu.Lock()
	rec.deadline = now.Add(p.idle)
	p.mu.Unlock()
}

// Active reports the number of occupied slots.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.slots {
		if r != nil {
			n++
		}
	}
	return n
}

// reap evicts every record whose deadline has elapsed.
func (p *Pool) reap(now time.Time) {
	p.mu.Lock()
	var stale []*record
	for _, r := range p.slots {
		if r != nil && now.After(r.deadline) {
			stale = append(stale, r)
		}
	}
	p.mu.Unlock()

	for _, r := range stale {
		println("Info: evicting idle connection", r.conn.RemoteAddr())
		p.Release(r)
	}
}

// RunReaper scans for stale connections on a fixed period until ctx ends.
func (p *Pool) RunReaper(ctx context.Context, period time.Duration) {
	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			p.reap(now)
		}
	}
}
