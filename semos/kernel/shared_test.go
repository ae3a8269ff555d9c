package kernel

import "testing"

func TestSharedBufferReadWrite(t *testing.T) {
	var b SharedBuffer
	dst := make([]byte, MaxMessageBytes)

	if seq, n := b.Read(dst); seq != 0 || n != 0 {
		t.Fatalf("expected empty buffer, got seq=%d n=%d", seq, n)
	}

	if seq := b.Write([]byte("first")); seq != 1 {
		t.Fatalf("expected seq 1, got %d", seq)
	}
	if seq := b.Write([]byte("second")); seq != 2 {
		t.Fatalf("expected seq 2, got %d", seq)
	}

	seq, n := b.Read(dst)
	if seq != 2 || string(dst[:n]) != "second" {
		t.Fatalf("expected seq 2 %q, got seq %d %q", "second", seq, dst[:n])
	}
	if b.Seq() != 2 {
		t.Fatalf("expected Seq 2, got %d", b.Seq())
	}
}

func TestSharedBufferShortDestination(t *testing.T) {
	var b SharedBuffer
	b.Write([]byte("abcdef"))

	dst := make([]byte, 3)
	if _, n := b.Read(dst); n != 3 || string(dst) != "abc" {
		t.Fatalf("expected %q, got %q", "abc", dst[:n])
	}
}
