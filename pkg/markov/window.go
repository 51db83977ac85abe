package markov

import "hash/fnv"

// Window holds the last n symbols of a byte sequence in a ring buffer. Its
// Digest depends only on the content, oldest symbol first.
type Window struct {
	buf  []byte
	head int // index of the oldest symbol
}

// NewWindow creates a window of len(seed) symbols holding a copy of seed.
func NewWindow(seed []byte) *Window {
	w := &Window{buf: make([]byte, len(seed))}
	copy(w.buf, seed)
	return w
}

// Len returns the window size
func (w *Window) Len() int {
	return len(w.buf)
}

// Slide drops the oldest symbol and appends b.
func (w *Window) Slide(b byte) {
	if len(w.buf) == 0 {
		return
	}
	w.buf[w.head] = b
	w.head = (w.head + 1) % len(w.buf)
}

// Reset replaces the content with seed, which must have the window's size.
func (w *Window) Reset(seed []byte) {
	if len(seed) != len(w.buf) {
		panic("markov: window reset with wrong size")
	}
	copy(w.buf, seed)
	w.head = 0
}

// Bytes returns a copy of the content, oldest symbol first.
func (w *Window) Bytes() []byte {
	out := make([]byte, 0, len(w.buf))
	out = append(out, w.buf[w.head:]...)
	return append(out, w.buf[:w.head]...)
}

// Digest is a 64-bit FNV-1a hash of the content, oldest symbol first.
func (w *Window) Digest() uint64 {
	h := fnv.New64a()
	h.Write(w.buf[w.head:])
	h.Write(w.buf[:w.head])
	return h.Sum64()
}
