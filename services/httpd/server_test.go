package httpd

import (
	"errors"
	"strings"
	"testing"
	"time"

	"weatherstation-go/state"
	"weatherstation-go/types"
)

type fakeConn struct {
	addr      string
	writes    [][]byte
	closes    int
	failWrite bool
}

func newFakeConn(addr string) *fakeConn { return &fakeConn{addr: addr} }

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.failWrite {
		return 0, errors.New("write refused")
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	c.writes = append(c.writes, buf)
	return len(p), nil
}

func (c *fakeConn) Close() error { c.closes++; return nil }

func (c *fakeConn) RemoteAddr() string { return c.addr }

func (c *fakeConn) sent() string {
	var sb strings.Builder
	for _, w := range c.writes {
		sb.Write(w)
	}
	return sb.String()
}

func newServer(t *testing.T) (*Server, *state.Store) {
	t.Helper()
	st := state.New()
	return NewServer(st, DefaultOptions()), st
}

// perform runs a whole request: accept, data, then EvSent events until the
// server releases the connection.
func perform(t *testing.T, s *Server, c *fakeConn, req string) {
	t.Helper()
	s.Handle(Event{Kind: EvAccept, Conn: c})
	s.Handle(Event{Kind: EvData, Conn: c, Data: []byte(req)})
	for i := 0; i < 64 && c.closes == 0; i++ {
		s.Handle(Event{Kind: EvSent, Conn: c})
	}
	if c.closes == 0 {
		t.Fatal("connection never released")
	}
}

func body(t *testing.T, raw string) string {
	t.Helper()
	i := strings.Index(raw, "\r\n\r\n")
	if i < 0 {
		t.Fatalf("no header terminator in response %q", raw)
	}
	return raw[i+4:]
}

func TestGetJSONOneDecimal(t *testing.T) {
	s, st := newServer(t)
	if err := st.PublishSnapshot(types.Snapshot{Temp: 22.5, Hum: 45.0, Press: 1013.2}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	c := newFakeConn("peer")
	perform(t, s, c, "GET /json HTTP/1.1\r\nHost: station\r\n\r\n")

	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("status line: %q", raw)
	}
	if !strings.Contains(raw, "Access-Control-Allow-Origin: *") {
		t.Fatal("missing CORS header")
	}
	if !strings.Contains(raw, "Connection: close") {
		t.Fatal("missing Connection: close")
	}
	want := `{"temp_aht20":22.5,"hum_aht20":45.0,"press_bmp280":1013.2}`
	if got := body(t, raw); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestGetConfigReportsAllNineFields(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	perform(t, s, c, "GET /config HTTP/1.1\r\n\r\n")

	got := body(t, c.sent())
	want := `{"temp_min":15.0,"temp_max":30.0,"hum_min":30.0,"hum_max":70.0,` +
		`"press_min":950.0,"press_max":1050.0,"temp_offset":0.0,"hum_offset":0.0,"press_offset":0.0}`
	if got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestIndexServedOnRootAndIndexHTML(t *testing.T) {
	s, _ := newServer(t)
	for _, req := range []string{"GET / HTTP/1.1\r\n\r\n", "GET /index.html HTTP/1.1\r\n\r\n"} {
		c := newFakeConn("peer")
		perform(t, s, c, req)
		raw := c.sent()
		if !strings.Contains(raw, "Content-Type: text/html") {
			t.Fatalf("%q: not html: %q", req, raw[:40])
		}
		if got := body(t, raw); got != indexPage {
			t.Fatalf("%q: page body mismatch", req)
		}
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	perform(t, s, c, "DELETE /nope HTTP/1.1\r\n\r\n")
	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 404 Not Found\r\n") {
		t.Fatalf("status: %q", raw)
	}
	if got := body(t, raw); got != "Not Found" {
		t.Fatalf("body = %q", got)
	}
}

func TestOversizedRequestGets413(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	s.Handle(Event{Kind: EvAccept, Conn: c})

	// Cap is cumulative across deliveries.
	s.Handle(Event{Kind: EvData, Conn: c, Data: make([]byte, 800)})
	s.Handle(Event{Kind: EvData, Conn: c, Data: make([]byte, 700)})
	for i := 0; i < 8 && c.closes == 0; i++ {
		s.Handle(Event{Kind: EvSent, Conn: c})
	}

	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 413 Payload Too Large\r\n") {
		t.Fatalf("status: %q", raw)
	}
	if c.closes != 1 {
		t.Fatal("connection not closed after 413")
	}
	if got := s.Pool().Active(); got != 0 {
		t.Fatalf("slot retained after 413: active = %d", got)
	}
}

func TestPeerCloseReleasesWithoutResponse(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	s.Handle(Event{Kind: EvAccept, Conn: c})
	s.Handle(Event{Kind: EvData, Conn: c}) // zero-length delivery

	if len(c.writes) != 0 {
		t.Fatalf("wrote %d buffers to a closed peer", len(c.writes))
	}
	if c.closes != 1 || s.Pool().Active() != 0 {
		t.Fatal("connection not released on peer close")
	}
}

func TestFifthConnectionRefused(t *testing.T) {
	s, _ := newServer(t)
	for i := 0; i < 4; i++ {
		s.Handle(Event{Kind: EvAccept, Conn: newFakeConn("open")})
	}
	fifth := newFakeConn("fifth")
	s.Handle(Event{Kind: EvAccept, Conn: fifth})

	if fifth.closes != 1 {
		t.Fatal("refused connection not closed")
	}
	if len(fifth.writes) != 0 {
		t.Fatal("refused connection got a response")
	}
	if got := s.Pool().Active(); got != 4 {
		t.Fatalf("active = %d, want 4", got)
	}
}

func TestTransportErrorReleases(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	s.Handle(Event{Kind: EvAccept, Conn: c})
	s.Handle(Event{Kind: EvError, Conn: c, Err: errors.New("reset by peer")})
	if c.closes != 1 || s.Pool().Active() != 0 {
		t.Fatal("connection not released on transport error")
	}
}

func TestChunkingCompleteness(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	perform(t, s, c, "GET /index.html HTTP/1.1\r\n\r\n")

	// Skip the header write, then check every body write is chunk-sized.
	if len(c.writes) < 3 {
		t.Fatalf("page should need several chunks, got %d writes", len(c.writes))
	}
	var rebuilt []byte
	for i, w := range c.writes[1:] {
		if len(w) > s.opts.ChunkSize {
			t.Fatalf("chunk %d is %d bytes, cap %d", i, len(w), s.opts.ChunkSize)
		}
		rebuilt = append(rebuilt, w...)
	}
	if string(rebuilt) != indexPage {
		t.Fatal("concatenated chunks do not equal the body")
	}
}

func TestPostCfgOrderedPartialApply(t *testing.T) {
	s, st := newServer(t)
	c := newFakeConn("peer")
	perform(t, s, c,
		"POST /cfg HTTP/1.1\r\nContent-Type: application/x-www-form-urlencoded\r\n\r\ntemp_min=10.0&temp_max=5.0")

	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("status: %q", raw)
	}
	want := `{"status":"success","message":"Configuration saved",` +
		`"updates":[{"field":"temp_min","value":10.0}],` +
		`"errors":[{"field":"temp_max <= temp_min (10.0)","error":"Value out of range: 5.0"}]}`
	if got := body(t, raw); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}

	lim, err := st.Limits()
	if err != nil {
		t.Fatalf("limits: %v", err)
	}
	if lim.TempMin != 10.0 || lim.TempMax != types.DefaultTempMax {
		t.Fatalf("stored limits: %+v", lim)
	}
}

func TestPostCfgMissingBody(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	perform(t, s, c, "POST /cfg HTTP/1.1\r\n\r\n")

	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 400 Bad Request\r\n") {
		t.Fatalf("status: %q", raw)
	}
	if got := body(t, raw); got != `{"status":"error","message":"Missing body"}` {
		t.Fatalf("body = %q", got)
	}
}

func TestPostCfgAllInvalidIs400(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	perform(t, s, c, "POST /cfg HTTP/1.1\r\n\r\nbogus=1.0&temp_min=abc")

	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 400 Bad Request\r\n") {
		t.Fatalf("status: %q", raw)
	}
	got := body(t, raw)
	if !strings.Contains(got, `"message":"No valid parameter applied"`) {
		t.Fatalf("body = %q", got)
	}
	if !strings.Contains(got, `{"field":"bogus (unknown)","error":"Unknown parameter"}`) {
		t.Fatalf("unknown key entry missing: %q", got)
	}
	if !strings.Contains(got, `{"field":"temp_min","error":"Invalid value: abc"}`) {
		t.Fatalf("parse failure entry missing: %q", got)
	}
}

func TestHeaderWriteFailureReleases(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	c.failWrite = true
	s.Handle(Event{Kind: EvAccept, Conn: c})
	s.Handle(Event{Kind: EvData, Conn: c, Data: []byte("GET /json HTTP/1.1\r\n\r\n")})

	if c.closes != 1 || s.Pool().Active() != 0 {
		t.Fatal("connection not released after failed header write")
	}
}

func TestRequestAssembledAcrossDeliveries(t *testing.T) {
	s, _ := newServer(t)
	c := newFakeConn("peer")
	s.Handle(Event{Kind: EvAccept, Conn: c})
	s.Handle(Event{Kind: EvData, Conn: c, Data: []byte("GET /jso")})
	s.Handle(Event{Kind: EvData, Conn: c, Data: []byte("n HTTP/1.1\r\n\r\n")})
	for i := 0; i < 8 && c.closes == 0; i++ {
		s.Handle(Event{Kind: EvSent, Conn: c})
	}

	raw := c.sent()
	if !strings.HasPrefix(raw, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("split request not routed: %q", raw)
	}
}

func TestReaperIntegration(t *testing.T) {
	s, _ := newServer(t)
	base := time.Now()
	s.now = func() time.Time { return base }

	c := newFakeConn("idle")
	s.Handle(Event{Kind: EvAccept, Conn: c})
	if got := s.Pool().Active(); got != 1 {
		t.Fatalf("active = %d", got)
	}

	s.pool.reap(base.Add(11 * time.Second))
	if c.closes != 1 || s.Pool().Active() != 0 {
		t.Fatal("idle connection survived the reaper")
	}
}
