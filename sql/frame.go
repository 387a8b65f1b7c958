package sql

import "bytes"

// IsComplete reports whether buffer ends with sentinel. Only the trailing
// len(sentinel) bytes are compared, so the cost does not grow with the
// buffer.
func IsComplete(buffer, sentinel []byte) bool {
	if len(sentinel) == 0 || len(buffer) < len(sentinel) {
		return false
	}

	return bytes.Equal(buffer[len(buffer)-len(sentinel):], sentinel)
}

// Frame accumulates the output of one statement until the sentinel arrives.
type Frame struct {
	buffer   bytes.Buffer
	sentinel []byte
}

func NewFrame(sentinel []byte) *Frame {
	return &Frame{
		sentinel: sentinel,
	}
}

func (f *Frame) Bytes() []byte {
	return f.buffer.Bytes()
}

func (f *Frame) IsComplete() bool {
	return IsComplete(f.buffer.Bytes(), f.sentinel)
}

func (f *Frame) Len() int {
	return f.buffer.Len()
}

func (f *Frame) Reset() {
	f.buffer.Reset()
}

func (f *Frame) Write(p []byte) (int, error) {
	return f.buffer.Write(p)
}
