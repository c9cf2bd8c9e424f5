package credentials

import (
	"bytes"
	"io"

	"github.com/awnumar/memguard"
)

// Secret holds a password in locked, guarded memory until Destroy is called.
type Secret struct {
	buf *memguard.LockedBuffer
}

// NewSecret copies s into a locked buffer.
func NewSecret(s string) *Secret {
	return &Secret{buf: memguard.NewBufferFromBytes([]byte(s))}
}

// Reader returns the secret followed by a newline, the shape a password
// prompt such as kinit expects on stdin.
func (s *Secret) Reader() io.Reader {
	if s == nil || s.buf == nil || !s.buf.IsAlive() {
		return bytes.NewReader(nil)
	}
	return io.MultiReader(s.buf.Reader(), bytes.NewReader([]byte("\n")))
}

// Len is the secret length in bytes (0 once destroyed).
func (s *Secret) Len() int {
	if s == nil || s.buf == nil || !s.buf.IsAlive() {
		return 0
	}
	return s.buf.Size()
}

// Destroy wipes the secret. Safe to call more than once.
func (s *Secret) Destroy() {
	if s != nil && s.buf != nil {
		s.buf.Destroy()
	}
}
