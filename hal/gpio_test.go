package hal

import (
	"errors"
	"testing"
)

func TestVirtualPinRequiresOutputMode(t *testing.T) {
	g := NewVirtualGPIO(4)
	if g.PinCount() != 4 {
		t.Fatalf("PinCount() = %d, want 4", g.PinCount())
	}
	pin := g.Pin(2)
	if pin == nil {
		t.Fatal("expected pin")
	}
	if pin.Name() != "D2" {
		t.Fatalf("Name() = %q, want D2", pin.Name())
	}

	if err := pin.Write(true); err == nil {
		t.Fatal("expected Write to fail before output mode")
	}
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := pin.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	level, err := pin.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !level {
		t.Fatal("expected high after Write(true)")
	}
	if n := g.Writes(2); n != 1 {
		t.Fatalf("Writes(2) = %d, want 1", n)
	}
}

func TestVirtualPinPullUpReadsHigh(t *testing.T) {
	pin := NewVirtualGPIO(1).Pin(0)
	if err := pin.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if level, _ := pin.Read(); !level {
		t.Fatal("expected pulled-up input to read high")
	}
	if err := pin.Configure(GPIOModeInput, GPIOPull(9)); !errors.Is(err, ErrPinConfig) {
		t.Fatalf("Configure(bad pull) = %v, want ErrPinConfig", err)
	}
}

func TestPinBankFail(t *testing.T) {
	g := NewVirtualGPIO(2)
	pin := g.Pin(1)
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	broken := errors.New("driver open")
	if !g.Fail(1, broken) {
		t.Fatal("Fail on a virtual pin returned false")
	}
	if err := pin.Write(true); !errors.Is(err, broken) {
		t.Fatalf("Write = %v, want %v", err, broken)
	}
	if level, _ := pin.Read(); level {
		t.Fatal("failed write changed the level")
	}

	g.Fail(1, nil)
	if err := pin.Write(true); err != nil {
		t.Fatalf("Write after repair: %v", err)
	}
	if g.Fail(5, broken) {
		t.Fatal("Fail on a missing pin returned true")
	}
}

func TestPinBankOutOfRange(t *testing.T) {
	g := NewVirtualGPIO(2)
	if g.Pin(-1) != nil || g.Pin(2) != nil {
		t.Fatal("expected nil for out-of-range pins")
	}
	if NewVirtualGPIO(0).PinCount() != 0 {
		t.Fatal("expected empty bank")
	}
	var nilBank *PinBank
	if nilBank.PinCount() != 0 || nilBank.Pin(0) != nil {
		t.Fatal("nil bank should be empty")
	}
}

func TestPinBankReservedSlots(t *testing.T) {
	g := NewPinBank([]GPIOPin{nil, nil, NewVirtualGPIO(1).Pin(0)})
	if g.Pin(0) != nil {
		t.Fatal("reserved slot should be nil")
	}
	if g.Pin(2) == nil {
		t.Fatal("expected pin in slot 2")
	}
}
