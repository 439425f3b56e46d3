// services/httpd/routes.go
package httpd

import (
	"strings"

	"weatherstation-go/types"
)

const corsHeaders = "Access-Control-Allow-Origin: *\r\n" +
	"Access-Control-Allow-Methods: GET, POST\r\n" +
	"Access-Control-Allow-Headers: Content-Type\r\n"

// jsonHeader builds a response header with permissive cross-origin headers,
// an explicit length and connection-close.
func jsonHeader(status string, n int) string {
	b := NewBuilder(256)
	b.WriteString("HTTP/1.1 ")
	b.WriteString(status)
	b.WriteString("\r\nContent-Type: application/json\r\n")
	b.WriteString(corsHeaders)
	b.WriteString("Content-Length: ")
	b.WriteInt(n)
	b.WriteString("\r\nConnection: close\r\n\r\n")
	return b.String()
}

func htmlHeader(n int) string {
	b := NewBuilder(256)
	b.WriteString("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n")
	b.WriteString(corsHeaders)
	b.WriteString("Content-Length: ")
	b.WriteInt(n)
	b.WriteString("\r\nConnection: close\r\n\r\n")
	return b.String()
}

func plainHeader(status string, n int) string {
	b := NewBuilder(192)
	b.WriteString("HTTP/1.1 ")
	b.WriteString(status)
	b.WriteString("\r\nContent-Type: text/plain\r\n")
	b.WriteString(corsHeaders)
	b.WriteString("Content-Length: ")
	b.WriteInt(n)
	b.WriteString("\r\nConnection: close\r\n\r\n")
	return b.String()
}

// route matches the assembled request by substring containment and hands the
// produced header/body to the sender. Specific paths are tried before the
// bare "GET /" catch-all.
func (s *Server) route(rec *record, head, body string) {
	switch {
	case strings.Contains(head, "GET /json"):
		payload := s.jsonSnapshot()
		s.respond(rec, jsonHeader("200 OK", len(payload)), []byte(payload))
	case strings.Contains(head, "GET /config"):
		payload := s.jsonLimits()
		s.respond(rec, jsonHeader("200 OK", len(payload)), []byte(payload))
	case strings.Contains(head, "POST /cfg"):
		s.configUpdate(rec, body)
	case strings.Contains(head, "GET /index.html"), strings.Contains(head, "GET /"):
		s.respond(rec, htmlHeader(len(indexPage)), []byte(indexPage))
	default:
		s.respond(rec, plainHeader("404 Not Found", len("Not Found")), []byte("Not Found"))
	}
}

func (s *Server) jsonSnapshot() string {
	snap, err := s.st.Snapshot()
	if err != nil {
		snap = types.Snapshot{}
	}
	b := NewBuilder(128)
	b.WriteString(`{"temp_aht20":`)
	b.WriteFloat1(snap.Temp)
	b.WriteString(`,"hum_aht20":`)
	b.WriteFloat1(snap.Hum)
	b.WriteString(`,"press_bmp280":`)
	b.WriteFloat1(snap.Press)
	b.WriteString("}")
	return b.String()
}

func (s *Server) jsonLimits() string {
	lim, err := s.st.Limits()
	if err != nil {
		lim = types.DefaultLimits()
	}
	b := NewBuilder(256)
	b.WriteString("{")
	for i, f := range types.FieldOrder {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"`)
		b.WriteString(f)
		b.WriteString(`":`)
		b.WriteFloat1(*lim.Field(f))
	}
	b.WriteString("}")
	return b.String()
}

// configUpdate applies a POST /cfg body and reports the structured result.
func (s *Server) configUpdate(rec *record, body string) {
	if body == "" {
		payload := `{"status":"error","message":"Missing body"}`
		s.respond(rec, jsonHeader("400 Bad Request", len(payload)), []byte(payload))
		return
	}

	res := ApplyForm(s.st, body)

	b := NewBuilder(768)
	b.WriteString(`{"status":"`)
	if res.OK() {
		b.WriteString(`success","message":"Configuration saved"`)
	} else {
		b.WriteString(`error","message":"No valid parameter applied"`)
	}
	b.WriteString(`,"updates":[`)
	for i, u := range res.Applied {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"field":"`)
		b.WriteString(u.Field)
		b.WriteString(`","value":`)
		b.WriteFloat1(u.Value)
		b.WriteString("}")
	}
	b.WriteString(`],"errors":[`)
	for i, e := range res.Errors {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"field":"`)
		b.WriteString(e.Field)
		b.WriteString(`","error":"`)
		b.WriteString(e.Reason)
		b.WriteString(`"}`)
	}
	b.WriteString("]}")

	if b.Err() != nil {
		println("Error: config response overflowed buffer")
		payload := `{"status":"error","message":"Internal error"}`
		s.respond(rec, jsonHeader("500 Internal Server Error", len(payload)), []byte(payload))
		return
	}

	status := "400 Bad Request"
	if res.OK() {
		status = "200 OK"
	}
	payload := b.String()
	s.respond(rec, jsonHeader(status, len(payload)), []byte(payload))
}
