// Package core implements the device-neutral refresh engine for HUB75-style
// chained RGB LED matrix panels: the layout planner that sizes the
// framebuffer from a pin-to-port mapping, the interrupt-driven scan state
// machine that walks (bitplane, row) pairs with binary-coded-modulation
// timing, and the three byte/word/long shifters that bit-bang a scanline
// through a memory-mapped GPIO port.
//
// Everything platform-specific -- register addresses, pin direction, a
// microsecond delay, a hardware timer -- is a collaborator satisfying
// package arch's Platform interface. This package never touches hardware
// directly.
package core

import (
	"sync/atomic"

	"github.com/ardnew/hub75/arch"
)

// Tunables fixed by §6.
const (
	// MaxRefreshHz bounds the estimated full-frame refresh rate used to
	// derive minPeriod; exceeding it would spend all available CPU time
	// servicing the timer interrupt.
	MaxRefreshHz = 250

	// RowDelayMicroseconds is the settle time after any change to the row
	// address lines.
	RowDelayMicroseconds = 8
)

// Core is one active panel chain. It exclusively owns all subordinate
// state (§3) and must not be copied after Init.
type Core struct {
	platform arch.Platform
	timer    arch.Timer

	width        int
	numPlanes    int
	parallel     int
	numAddrLines int
	numRowPairs  int
	doubleBuffer bool

	clockPin arch.Pin
	latchPin arch.Pin
	oePin    arch.Pin
	rgbPins  []arch.Pin
	addrPins []arch.Pin

	elementWidth int
	portOffset   int
	columns      int
	bufferSize   int

	clockMask       uint32
	rgbAndClockMask uint32
	rgbMask         []uint32

	addr  []pinBinding
	latch pinBinding
	oe    pinBinding

	toggleCapable  bool
	clockToggle    arch.ToggleRegister
	setReg         arch.Register
	clearReg       arch.Register
	singleAddrPort bool
	addrToggle     arch.ToggleRegister

	screenData []byte

	activeBuffer int32
	swapBuffers  int32
	frameCount   uint32

	plane, row, prevRow int

	bitZeroPeriod uint32
	minPeriod     uint32

	remapRB [32]uint16
	remapG  [64]uint16

	initialized bool
	began       bool
}

// New returns a Core bound to platform. The Core must still be initialized
// with Init and activated with Begin before it can scan.
func New(platform arch.Platform) *Core {
	return &Core{platform: platform}
}

// Init validates and copies the pin configuration. It allocates no
// framebuffer -- that happens in Begin, once the element width is known.
//
// rgbList must hold at least 6*rgbCount pins, ordered as consecutive RGB
// triples (upper-half, lower-half, ... for each parallel chain). rgbCount is
// clamped to [1,5]; addrList is clamped to at most 5 entries, per §4.8.
func (c *Core) Init(
	width, numPlanes, rgbCount int,
	rgbList []arch.Pin,
	addrList []arch.Pin,
	clockPin, latchPin, oePin arch.Pin,
	doubleBuffer bool,
	timer arch.Timer,
) error {
	if c == nil {
		return ErrArg
	}
	if width <= 0 {
		return ErrInvalidWidth
	}
	if numPlanes <= 0 {
		return ErrInvalidPlanes
	}

	if rgbCount > 5 {
		rgbCount = 5
	}
	if rgbCount < 1 {
		rgbCount = 1
	}
	if len(addrList) > 5 {
		addrList = addrList[:5]
	}

	if timer == nil {
		timer = c.platform.DefaultTimer()
		if timer == nil {
			return ErrArg
		}
	}

	need := rgbCount * 6
	if len(rgbList) < need {
		return ErrArg
	}

	c.width = width
	c.numPlanes = numPlanes
	c.parallel = rgbCount
	c.numAddrLines = len(addrList)
	c.numRowPairs = 1 << c.numAddrLines
	c.doubleBuffer = doubleBuffer
	c.timer = timer
	c.clockPin = clockPin
	c.latchPin = latchPin
	c.oePin = oePin

	// Copy both lists so the caller is free to reuse or mutate the slices
	// they passed in (§3 invariant: Core exclusively owns its state).
	c.rgbPins = append([]arch.Pin(nil), rgbList[:need]...)
	c.addrPins = append([]arch.Pin(nil), addrList...)

	c.initialized = true
	return nil
}

// Begin runs the Layout Planner, allocates the framebuffer and mask table,
// populates the gamma/remap tables, resolves every pin binding, configures
// pin directions and initial levels, and starts scanning (§4.8).
func (c *Core) Begin() error {
	if c == nil || !c.initialized {
		return ErrArg
	}

	port := c.platform.Port(c.clockPin)

	var bitMask uint32
	if tr, ok := c.platform.ToggleRegisterFor(c.clockPin); ok {
		c.toggleCapable = true
		c.clockToggle = tr
		bitMask = c.platform.BitMask(c.clockPin)
	} else {
		c.toggleCapable = false
	}

	var rgbUnion uint32
	for _, pin := range c.rgbPins {
		if c.platform.Port(pin) != port {
			return ErrPins
		}
		m := c.platform.BitMask(pin)
		bitMask |= m
		rgbUnion |= m
	}

	c.elementWidth = classifyPortWidth(bitMask)
	switch c.elementWidth {
	case 1:
		c.portOffset = int(c.platform.ByteOffset(c.rgbPins[0]))
	case 2:
		c.portOffset = int(c.platform.WordOffset(c.rgbPins[0]))
	default:
		c.portOffset = 0
	}

	c.columns = paddedColumns(c.width, c.platform.ChunkSize())
	c.bufferSize = c.columns * c.numRowPairs * c.numPlanes * c.elementWidth

	total := c.bufferSize
	if c.doubleBuffer {
		total *= 2
	}
	c.screenData = make([]byte, total)
	if c.screenData == nil && total > 0 {
		return ErrMalloc
	}

	clockBit := c.platform.BitMask(c.clockPin)
	c.clockMask = clockBit
	c.rgbAndClockMask = rgbUnion | clockBit

	if c.toggleCapable {
		// Single-pass fill: every element preset to clockMask, resolving
		// the ambiguity noted in spec.md §9 / SPEC_FULL.md.
		fillElement(c.screenData, c.elementWidth, c.clockMask>>c.narrowShift())
	}

	c.rgbMask = make([]uint32, len(c.rgbPins))
	shift := c.narrowShift()
	for i, pin := range c.rgbPins {
		c.rgbMask[i] = c.platform.BitMask(pin) >> shift
	}

	c.remapRB, c.remapG = buildRemapTables(c.numPlanes)

	minPeriodPerFrame := c.platform.TimerFreq() / MaxRefreshHz
	minPeriodPerLine := minPeriodPerFrame / uint32(c.numRowPairs)
	c.minPeriod = minPeriodPerLine / ((uint32(1) << uint(c.numPlanes)) - 1)
	if floor := c.platform.MinMinPeriod(); c.minPeriod < floor {
		c.minPeriod = floor
	}
	c.bitZeroPeriod = uint32(c.width) * 5

	atomic.StoreInt32(&c.activeBuffer, 0)

	c.latch = resolveBinding(c.platform, c.latchPin)
	c.oe = resolveBinding(c.platform, c.oePin)

	c.platform.PinOutput(c.clockPin)
	c.platform.PinLow(c.clockPin)
	c.platform.PinOutput(c.latchPin)
	c.platform.PinLow(c.latchPin)
	c.platform.PinOutput(c.oePin)
	c.platform.PinHigh(c.oePin)
	for _, pin := range c.rgbPins {
		c.platform.PinOutput(pin)
		c.platform.PinLow(pin)
	}

	prevRow := c.numRowPairs - 2
	c.addr = make([]pinBinding, len(c.addrPins))
	c.singleAddrPort = c.toggleCapable
	var addrPort uintptr
	for i, pin := range c.addrPins {
		c.addr[i] = resolveBinding(c.platform, pin)
		c.platform.PinOutput(pin)
		if prevRow&(1<<uint(i)) != 0 {
			c.platform.PinHigh(pin)
		} else {
			c.platform.PinLow(pin)
		}
		if !c.toggleCapable {
			continue
		}
		if i == 0 {
			addrPort = c.platform.Port(pin)
			if tr, ok := c.platform.ToggleRegisterFor(pin); ok {
				c.addrToggle = tr
			} else {
				c.singleAddrPort = false
			}
		} else if c.platform.Port(pin) != addrPort {
			c.singleAddrPort = false
		}
	}
	c.prevRow = prevRow

	c.setReg = c.platform.SetRegister(c.clockPin)
	c.clearReg = c.platform.ClearRegister(c.clockPin)

	c.began = true
	c.Resume()
	return nil
}

// Stop blanks the panel (OE high, all RGB lines low, shift registers
// cleared by clocking zeros through and latching) but keeps every
// allocation, per §4.8.
func (c *Core) Stop() {
	if !c.began {
		return
	}
	for atomic.LoadInt32(&c.swapBuffers) != 0 {
		// Bounded by one frame: the ISR clears swapBuffers at the next
		// row=0,plane=0 boundary.
	}
	c.timer.Stop()
	c.oe.setReg.Set(c.oe.bit)
	for _, pin := range c.rgbPins {
		c.platform.PinLow(pin)
	}
	for i := 0; i < c.width; i++ {
		c.platform.PinHigh(c.clockPin)
		c.platform.ClockHoldHigh()
		c.platform.PinLow(c.clockPin)
		c.platform.ClockHoldLow()
	}
	c.latch.setReg.Set(c.latch.bit)
	c.latch.clearReg.Clear(c.latch.bit)
}

// Resume resets the scan cursor so the first interrupt rolls over to
// plane=0, row=0, clears swapBuffers and frameCount, and (re)starts the
// timer with an initial guess period.
func (c *Core) Resume() {
	if !c.began {
		return
	}
	c.plane = c.numPlanes - 1
	c.row = c.numRowPairs - 1
	if c.numRowPairs > 1 {
		c.prevRow = c.row - 1
	} else {
		c.prevRow = 1
	}
	atomic.StoreInt32(&c.swapBuffers, 0)
	atomic.StoreUint32(&c.frameCount, 0)

	c.timer.Init()
	c.timer.Start(1000)
}

// Free stops the panel and releases the framebuffer, mask table, and pin
// lists. Safe to call on a partially initialized or already-freed Core.
func (c *Core) Free() {
	if c.began {
		c.Stop()
	}
	c.screenData = nil
	c.rgbMask = nil
	c.addr = nil
	c.rgbPins = nil
	c.addrPins = nil
	c.began = false
	c.initialized = false
}

// GetFrameCount atomically reads and resets the frame counter.
func (c *Core) GetFrameCount() uint32 {
	return atomic.SwapUint32(&c.frameCount, 0)
}

// narrowShift is the bit shift applied when scaling a full-port bitmask down
// to the chosen element width (§4.3).
func (c *Core) narrowShift() uint32 {
	switch c.elementWidth {
	case 1:
		return uint32(c.portOffset) * 8
	case 2:
		return uint32(c.portOffset) * 16
	default:
		return 0
	}
}

// fillElement fills data, a slice whose length is a multiple of width
// (1, 2, or 4), with the low width*8 bits of value, each element stored
// little-endian.
func fillElement(data []byte, width int, value uint32) {
	var buf [4]byte
	for i := 0; i < width; i++ {
		buf[i] = byte(value >> uint(8*i))
	}
	for i := 0; i+width <= len(data); i += width {
		copy(data[i:i+width], buf[:width])
	}
}
