package kernel

import (
	"bytes"
	"testing"
)

func TestMessagePayloadClampsLen(t *testing.T) {
	var msg Message
	msg.Len = MaxMessageBytes + 10
	if got := len(msg.Payload()); got != MaxMessageBytes {
		t.Fatalf("expected payload length %d, got %d", MaxMessageBytes, got)
	}
}

func TestNewMessageTruncates(t *testing.T) {
	big := bytes.Repeat([]byte{'x'}, MaxMessageBytes+5)
	msg := NewMessage(7, big)
	if msg.Kind != 7 {
		t.Fatalf("expected kind 7, got %d", msg.Kind)
	}
	if int(msg.Len) != MaxMessageBytes {
		t.Fatalf("expected len %d, got %d", MaxMessageBytes, msg.Len)
	}
}

func TestMailboxFIFO(t *testing.T) {
	mb := NewMailbox(4)
	for _, s := range []string{"a", "b", "c"} {
		if !mb.TrySend(NewMessage(1, []byte(s))) {
			t.Fatalf("send %q failed", s)
		}
	}
	if mb.Len() != 3 {
		t.Fatalf("expected 3 queued, got %d", mb.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		msg, ok := mb.TryRecv()
		if !ok {
			t.Fatal("expected message")
		}
		if got := string(msg.Payload()); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if _, ok := mb.TryRecv(); ok {
		t.Fatal("expected empty mailbox")
	}
}

func TestMailboxFullDrops(t *testing.T) {
	mb := NewMailbox(2)
	mb.TrySend(NewMessage(1, nil))
	mb.TrySend(NewMessage(1, nil))
	if mb.TrySend(NewMessage(1, nil)) {
		t.Fatal("expected send to full mailbox to fail")
	}
	if got := mb.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped, got %d", got)
	}
}

func TestMailboxDefaultSlots(t *testing.T) {
	mb := NewMailbox(0)
	for i := 0; i < DefaultMailboxSlots; i++ {
		if !mb.TrySend(NewMessage(1, nil)) {
			t.Fatalf("send %d failed", i)
		}
	}
	if mb.TrySend(NewMessage(1, nil)) {
		t.Fatal("expected mailbox to be full")
	}
}
