// services/httpd/send.go
package httpd

// respond writes the header in one call, stores the body as the pending
// cursor and pushes the first chunk. Each later EvSent advances the cursor
// by at most one chunk; when it empties, the connection is released.
func (s *Server) respond(rec *record, header string, body []byte) {
	rec.phase = phaseResponding
	rec.started = true
	rec.pending = body

	if _, err := rec.conn.Write([]byte(header)); err != nil {
		println("Error: header write:", err.Error())
		s.pool.Release(rec)
		return
	}
	s.pump(rec)
}

// pump sends the next chunk of the pending body. A write failure is fatal to
// the connection; the transport's own retransmission covers transient loss.
func (s *Server) pump(rec *record) {
	if !rec.started || rec.phase != phaseResponding {
		return
	}
	if len(rec.pending) == 0 {
		s.pool.Release(rec)
		return
	}
	n := s.opts.ChunkSize
	if n > len(rec.pending) {
		n = len(rec.pending)
	}
	if _, err := rec.conn.Write(rec.pending[:n]); err != nil {
		println("Error: body write:", err.Error())
		s.pool.Release(rec)
		return
	}
	rec.pending = rec.pending[n:]
}
