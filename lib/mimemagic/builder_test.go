package mimemagic

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// magicBuilder assembles magic files for tests.
type magicBuilder struct {
	buf bytes.Buffer
}

func newMagicBuilder() *magicBuilder {
	b := &magicBuilder{}
	b.buf.WriteString(Header)
	return b
}

func (b *magicBuilder) section(priority int, mimeType string) *magicBuilder {
	fmt.Fprintf(&b.buf, "[%d:%s]\n", priority, mimeType)
	return b
}

type lineOpts struct {
	indent   int
	offset   int
	end      int
	mask     []byte
	wordSize int
	rng      int
}

func (b *magicBuilder) line(value []byte, opts lineOpts) *magicBuilder {
	if opts.indent > 0 {
		fmt.Fprintf(&b.buf, "%d", opts.indent)
	}
	fmt.Fprintf(&b.buf, ">%d", opts.offset)
	if opts.end > 0 {
		fmt.Fprintf(&b.buf, ":%d", opts.end)
	}
	b.buf.WriteByte('=')
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(len(value)))
	b.buf.Write(tmp[:])
	b.buf.Write(value)
	if opts.mask != nil {
		b.buf.WriteByte('&')
		b.buf.Write(opts.mask)
	}
	if opts.wordSize > 0 {
		fmt.Fprintf(&b.buf, "~%d", opts.wordSize)
	}
	if opts.rng > 0 {
		fmt.Fprintf(&b.buf, "+%d", opts.rng)
	}
	b.buf.WriteByte('\n')
	return b
}

func (b *magicBuilder) raw(str string) *magicBuilder {
	b.buf.WriteString(str)
	return b
}

func (b *magicBuilder) bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}
