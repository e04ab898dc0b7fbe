package main

import (
	"io"
	"net/http"
)

// type statusWriter {{{

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	next        http.ResponseWriter
	wroteHeader bool
	status      int
	bytes       int64
}

func (sw *statusWriter) Header() http.Header {
	return sw.next.Header()
}

func (sw *statusWriter) WriteHeader(status int) {
	if !sw.wroteHeader {
		sw.status = status
		sw.wroteHeader = true
		sw.next.WriteHeader(status)
	}
}

func (sw *statusWriter) Write(buf []byte) (int, error) {
	sw.WriteHeader(http.StatusOK)
	n, err := sw.next.Write(buf)
	sw.bytes += int64(n)
	return n, err
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.next
}

func (sw *statusWriter) Status() int {
	if !sw.wroteHeader {
		return http.StatusOK
	}
	return sw.status
}

func (sw *statusWriter) BytesWritten() int64 {
	return sw.bytes
}

var _ http.ResponseWriter = (*statusWriter)(nil)

// }}}

// type countingReader {{{

// countingReader counts the bytes read from a request body.
type countingReader struct {
	next  io.ReadCloser
	bytes int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.next.Read(p)
	cr.bytes += int64(n)
	return n, err
}

func (cr *countingReader) Close() error {
	return cr.next.Close()
}

var _ io.ReadCloser = (*countingReader)(nil)

// }}}
