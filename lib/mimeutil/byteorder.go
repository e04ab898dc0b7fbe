package mimeutil

import (
	"encoding/binary"
)

// ByteReader reads fixed-width integers from byte slices in one byte order.
// It is constructed once per byte order, so call sites never carry a swap
// flag around.
type ByteReader struct {
	order binary.ByteOrder
}

var (
	// BigEndian reads network-order integers.  The magic file format stores
	// all of its multi-byte fields this way.
	BigEndian = ByteReader{order: binary.BigEndian}

	// LittleEndian reads little-endian integers.
	LittleEndian = ByteReader{order: binary.LittleEndian}

	// Host reads integers in the byte order of the running machine.
	Host = ByteReader{order: binary.NativeEndian}
)

// NewByteReader constructs a ByteReader for the given byte order.
func NewByteReader(order binary.ByteOrder) ByteReader {
	return ByteReader{order: order}
}

// Order returns the underlying byte order.
func (r ByteReader) Order() binary.ByteOrder {
	return r.order
}

// IsLittleEndian returns true iff r reads least significant byte first.
func (r ByteReader) IsLittleEndian() bool {
	var tmp [2]byte
	r.order.PutUint16(tmp[:], 1)
	return tmp[0] == 1
}

// SameOrder returns true iff r and other decode bytes identically.
func (r ByteReader) SameOrder(other ByteReader) bool {
	return r.IsLittleEndian() == other.IsLittleEndian()
}

// Uint16 reads a 16-bit integer from the start of buf.
func (r ByteReader) Uint16(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, ErrShortBuffer
	}
	return r.order.Uint16(buf), nil
}

// Uint32 reads a 32-bit integer from the start of buf.
func (r ByteReader) Uint32(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, ErrShortBuffer
	}
	return r.order.Uint32(buf), nil
}

// ConvertWords rewrites buf in place, word by word, from byte order r into
// byte order dst.  wordSize must be 1, 2, or 4, and len(buf) must be a
// multiple of wordSize.
func (r ByteReader) ConvertWords(dst ByteReader, buf []byte, wordSize int) error {
	switch wordSize {
	case 0, 1:
		return nil
	case 2, 4:
		// pass
	default:
		return ErrBadWordSize
	}

	if len(buf)%wordSize != 0 {
		return ErrShortBuffer
	}

	if r.SameOrder(dst) {
		return nil
	}

	for i := 0; i < len(buf); i += wordSize {
		word := buf[i : i+wordSize]
		if wordSize == 2 {
			v, _ := r.Uint16(word)
			dst.order.PutUint16(word, v)
		} else {
			v, _ := r.Uint32(word)
			dst.order.PutUint32(word, v)
		}
	}
	return nil
}
