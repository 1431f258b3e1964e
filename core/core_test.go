package core

import (
	"testing"

	"github.com/ardnew/hub75/arch"
	"github.com/ardnew/hub75/archsim"
)

// newTestPlatform wires one RGB+clock port (7 bits, byte 0 -- elementWidth 1)
// and one latch/OE/address port, returning the platform plus the pin lists
// Init expects.
func newTestPlatform(toggleCapable bool) (*archsim.Platform, []arch.Pin, arch.Pin, arch.Pin, arch.Pin, []arch.Pin) {
	p := archsim.New(2, toggleCapable, archsim.WithChunkSize(8), archsim.WithMinMinPeriod(1))

	rgb := []arch.Pin{0, 1, 2, 3, 4, 5}
	clock := arch.Pin(6)
	for i, pin := range rgb {
		p.Bind(pin, 0, uint32(i))
	}
	p.Bind(clock, 0, 6)

	latch := arch.Pin(10)
	oe := arch.Pin(11)
	addr := []arch.Pin{12, 13, 14, 15}
	p.Bind(latch, 1, 0)
	p.Bind(oe, 1, 1)
	for i, pin := range addr {
		p.Bind(pin, 1, uint32(2+i))
	}

	return p, rgb, clock, latch, oe, addr
}

// newTestPlatformWithClockBit is newTestPlatform but with the clock pin
// placed at an arbitrary bit of the RGB+clock port, letting a test force a
// particular element width out of the layout planner: byte 1 (bit 8-15)
// keeps everything within the lower half-word (elementWidth 2), byte 2
// (bit 16-23) spreads the mask across both half-words and falls back to a
// full 32-bit element (elementWidth 4).
func newTestPlatformWithClockBit(toggleCapable bool, clockBit uint32) (*archsim.Platform, []arch.Pin, arch.Pin, arch.Pin, arch.Pin, []arch.Pin) {
	p := archsim.New(2, toggleCapable, archsim.WithChunkSize(8), archsim.WithMinMinPeriod(1))

	rgb := []arch.Pin{0, 1, 2, 3, 4, 5}
	clock := arch.Pin(6)
	for i, pin := range rgb {
		p.Bind(pin, 0, uint32(i))
	}
	p.Bind(clock, 0, clockBit)

	latch := arch.Pin(10)
	oe := arch.Pin(11)
	addr := []arch.Pin{12}
	p.Bind(latch, 1, 0)
	p.Bind(oe, 1, 1)
	for i, pin := range addr {
		p.Bind(pin, 1, uint32(2+i))
	}

	return p, rgb, clock, latch, oe, addr
}

func TestBeginSelectsWordWidthAndShiftsViaRowHandler(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatformWithClockBit(true, 8) // byte 1
	c := New(p)
	if err := c.Init(16, 2, 1, rgb, addr, clock, latch, oe, false, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer c.Free()

	if c.ElementWidth() != 2 {
		t.Fatalf("ElementWidth = %d, want 2 (lower half-word)", c.ElementWidth())
	}

	p.Timer().Advance(10)
	for i := 0; i < 2*c.NumRowPairs()*c.NumPlanes(); i++ {
		c.RowHandler() // exercises blastWord without panicking on the slice math
	}
}

func TestBeginSelectsLongWidthAndShiftsViaRowHandler(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatformWithClockBit(true, 16) // byte 2
	c := New(p)
	if err := c.Init(16, 2, 1, rgb, addr, clock, latch, oe, false, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer c.Free()

	if c.ElementWidth() != 4 {
		t.Fatalf("ElementWidth = %d, want 4 (spans both half-words)", c.ElementWidth())
	}

	p.Timer().Advance(10)
	for i := 0; i < 2*c.NumRowPairs()*c.NumPlanes(); i++ {
		c.RowHandler() // exercises blastLong without panicking on the slice math
	}
}

func TestInitRejectsBadArgs(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	c := New(p)

	if err := c.Init(0, 8, 1, rgb, addr, clock, latch, oe, false, nil); err != ErrInvalidWidth {
		t.Errorf("zero width: got %v, want ErrInvalidWidth", err)
	}
	if err := c.Init(64, 0, 1, rgb, addr, clock, latch, oe, false, nil); err != ErrInvalidPlanes {
		t.Errorf("zero planes: got %v, want ErrInvalidPlanes", err)
	}
	if err := c.Init(64, 8, 1, rgb[:3], addr, clock, latch, oe, false, nil); err != ErrArg {
		t.Errorf("short rgb list: got %v, want ErrArg", err)
	}
}

func TestInitClampsRgbCount(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	c := New(p)
	if err := c.Init(64, 8, 99, rgb, addr, clock, latch, oe, false, nil); err != ErrArg {
		// rgbCount clamps to 5 first, which then needs 30 pins; our list of
		// 6 is short for that, so ErrArg is the expected outcome.
		t.Fatalf("Init = %v, want ErrArg", err)
	}
}

func TestBeginSelectsByteWidth(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	c := New(p)
	if err := c.Init(64, 8, 1, rgb, addr, clock, latch, oe, false, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer c.Free()

	if c.ElementWidth() != 1 {
		t.Errorf("ElementWidth = %d, want 1", c.ElementWidth())
	}
	if c.NumRowPairs() != 16 {
		t.Errorf("NumRowPairs = %d, want 16 (4 addr lines)", c.NumRowPairs())
	}
	if c.Columns() != 64 {
		t.Errorf("Columns = %d, want 64 (already a multiple of chunk size 8)", c.Columns())
	}
	wantBufSize := c.Columns() * c.NumRowPairs() * c.NumPlanes() * c.ElementWidth()
	if c.BufferSize() != wantBufSize {
		t.Errorf("BufferSize = %d, want %d", c.BufferSize(), wantBufSize)
	}
	if len(c.ScreenData()) != c.BufferSize() {
		t.Errorf("single-buffered ScreenData length = %d, want %d", len(c.ScreenData()), c.BufferSize())
	}
}

func TestBeginPadsColumnsToChunkSize(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	c := New(p)
	if err := c.Init(65, 8, 1, rgb, addr, clock, latch, oe, false, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer c.Free()

	if c.Columns() != 72 {
		t.Errorf("Columns = %d, want 72 (65 padded up to a multiple of 8)", c.Columns())
	}
}

func TestDoubleBufferDoublesScreenData(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	c := New(p)
	if err := c.Init(64, 8, 1, rgb, addr, clock, latch, oe, true, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer c.Free()

	if len(c.ScreenData()) != 2*c.BufferSize() {
		t.Errorf("double-buffered ScreenData length = %d, want %d", len(c.ScreenData()), 2*c.BufferSize())
	}
}

func TestRejectsMismatchedPorts(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	// Rebind one RGB pin onto the other port -- Begin must reject this.
	p.Bind(rgb[0], 1, 20)

	c := New(p)
	if err := c.Init(64, 8, 1, rgb, addr, clock, latch, oe, false, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != ErrPins {
		t.Errorf("Begin = %v, want ErrPins", err)
	}
}

func TestFreeIsIdempotentAndSafeBeforeBegin(t *testing.T) {
	p, _, _, _, _, _ := newTestPlatform(true)
	c := New(p)
	c.Free()
	c.Free()

	_, rgb, clock, latch, oe, addr := newTestPlatform(true)
	_ = rgb
	_ = clock
	_ = latch
	_ = oe
	_ = addr
}

func TestGetFrameCountResetsOnRead(t *testing.T) {
	p, rgb, clock, latch, oe, addr := newTestPlatform(true)
	c := New(p)
	if err := c.Init(64, 8, 1, rgb, addr, clock, latch, oe, false, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer c.Free()

	c.frameCount = 7
	if got := c.GetFrameCount(); got != 7 {
		t.Errorf("GetFrameCount = %d, want 7", got)
	}
	if got := c.GetFrameCount(); got != 0 {
		t.Errorf("second GetFrameCount = %d, want 0", got)
	}
}
