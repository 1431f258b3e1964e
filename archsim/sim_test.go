package archsim

import (
	"testing"

	"github.com/ardnew/hub75/arch"
)

func TestSetClearToggle(t *testing.T) {
	p := New(1, true)
	p.Bind(arch.Pin(0), 0, 3)
	p.Bind(arch.Pin(1), 0, 5)

	p.Set(arch.Pin(0))
	if !p.PinValue(arch.Pin(0)) {
		t.Fatalf("pin 0 should read high after Set")
	}
	if p.PinValue(arch.Pin(1)) {
		t.Fatalf("pin 1 should still read low")
	}

	reg, ok := p.ToggleRegisterFor(arch.Pin(1))
	if !ok {
		t.Fatalf("expected toggle capability")
	}
	reg.Toggle(p.BitMask(arch.Pin(1)))
	if !p.PinValue(arch.Pin(1)) {
		t.Fatalf("pin 1 should read high after Toggle")
	}
	reg.Toggle(p.BitMask(arch.Pin(1)))
	if p.PinValue(arch.Pin(1)) {
		t.Fatalf("pin 1 should read low after second Toggle")
	}

	p.Clear(arch.Pin(0))
	if p.PinValue(arch.Pin(0)) {
		t.Fatalf("pin 0 should read low after Clear")
	}
}

func TestNoToggleCapability(t *testing.T) {
	p := New(1, false)
	p.Bind(arch.Pin(0), 0, 0)
	if _, ok := p.ToggleRegisterFor(arch.Pin(0)); ok {
		t.Fatalf("expected no toggle capability")
	}
}

func TestByteAndWordOffset(t *testing.T) {
	p := New(1, false)
	p.Bind(arch.Pin(0), 0, 0)  // byte 0
	p.Bind(arch.Pin(1), 0, 15) // byte 1, word 0
	p.Bind(arch.Pin(2), 0, 16) // byte 2, word 1
	p.Bind(arch.Pin(3), 0, 31) // byte 3, word 1

	if got := p.ByteOffset(arch.Pin(0)); got != 0 {
		t.Errorf("pin0 ByteOffset = %d, want 0", got)
	}
	if got := p.WordOffset(arch.Pin(1)); got != 0 {
		t.Errorf("pin1 WordOffset = %d, want 0", got)
	}
	if got := p.WordOffset(arch.Pin(2)); got != 1 {
		t.Errorf("pin2 WordOffset = %d, want 1", got)
	}
	if got := p.ByteOffset(arch.Pin(3)); got != 3 {
		t.Errorf("pin3 ByteOffset = %d, want 3", got)
	}
}
