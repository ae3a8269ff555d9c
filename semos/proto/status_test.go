package proto

import (
	"math"
	"testing"
	"time"
)

func TestStatusPayloadDecode(t *testing.T) {
	in := Status{
		State:       3,
		Active:      true,
		Remaining:   12345 * time.Millisecond,
		Cycles:      7,
		Transitions: 31,
		FreeHeap:    4096,
		Uptime:      90 * time.Second,
	}
	b := StatusPayload(in)
	if len(b) != StatusSize {
		t.Fatalf("expected %d bytes, got %d", StatusSize, len(b))
	}
	out, ok := DecodeStatus(b)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if out != in {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}
}

func TestDecodeStatusRejectsBadInput(t *testing.T) {
	if _, ok := DecodeStatus(nil); ok {
		t.Fatal("expected nil payload to fail")
	}
	b := StatusPayload(Status{})
	b[0] = 99
	if _, ok := DecodeStatus(b); ok {
		t.Fatal("expected unknown version to fail")
	}
}

func TestStatusSaturates(t *testing.T) {
	b := StatusPayload(Status{Remaining: -time.Second, Stopped: true})
	out, ok := DecodeStatus(b)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if out.Remaining != 0 || !out.Stopped || out.Active {
		t.Fatalf("unexpected status %+v", out)
	}
	if got := SaturateHeap(math.MaxUint32 + 10); got != math.MaxUint32 {
		t.Fatalf("expected saturated heap, got %d", got)
	}
}

func TestLogLinePayloadTrimsNewline(t *testing.T) {
	if got := string(LogLinePayload("[OK] ready\r\n")); got != "[OK] ready" {
		t.Fatalf("unexpected payload %q", got)
	}
	if got := LogLinePayload(""); len(got) != 0 {
		t.Fatalf("expected empty payload, got %q", got)
	}
}
