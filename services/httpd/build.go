// services/httpd/build.go
package httpd

import (
	"weatherstation-go/errcode"
	"weatherstation-go/x/strconvx"
)

// Builder assembles a response into a fixed-capacity buffer. Exceeding the
// capacity is reported as an error instead of silently truncating.
type Builder struct {
	buf      []byte
	overflow bool
}

func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

func (b *Builder) WriteString(s string) {
	if b.overflow || len(b.buf)+len(s) > cap(b.buf) {
		b.overflow = true
		return
	}
	b.buf = append(b.buf, s...)
}

// WriteFloat1 appends v with one decimal place.
func (b *Builder) WriteFloat1(v float64) {
	b.WriteString(strconvx.Ftoa1(v))
}

func (b *Builder) WriteInt(v int) {
	b.WriteString(strconvx.Itoa(v))
}

func (b *Builder) Err() error {
	if b.overflow {
		return errcode.Overflow
	}
	return nil
}

func (b *Builder) Len() int       { return len(b.buf) }
func (b *Builder) Bytes() []byte  { return b.buf }
func (b *Builder) String() string { return string(b.buf) }
