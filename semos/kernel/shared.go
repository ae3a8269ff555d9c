package kernel

import "sync"

// SharedBuffer is a single-slot shared-memory region: writers replace the
// contents, readers copy out the latest version and its sequence number.
type SharedBuffer struct {
	mu  sync.Mutex
	seq uint32
	n   int
	buf [MaxMessageBytes]byte
}

// Write copies data into the buffer and bumps the sequence counter.
func (b *SharedBuffer) Write(data []byte) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.n = copy(b.buf[:], data)
	b.seq++
	return b.seq
}

// Read returns the last written data and the current sequence number.
// A zero sequence means nothing has been written yet.
func (b *SharedBuffer) Read(dst []byte) (seq uint32, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count = copy(dst, b.buf[:b.n])
	return b.seq, count
}

// Seq returns the current sequence number without copying.
func (b *SharedBuffer) Seq() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
