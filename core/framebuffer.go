package core

import "sync/atomic"

// Framebuffer addressing (§4.2). The element at (buffer, row, plane,
// column) lives at a linear byte offset computed once here; a higher-level
// plotter (out of scope for this package, per spec §1) is expected to call
// Offset/Element/SetElement to translate pixels into the storage format
// this package defines.

// Offset returns the byte offset of element (buffer, row, plane, column)
// within ScreenData.
func (c *Core) Offset(buffer, row, plane, column int) int {
	idx := ((buffer*c.numRowPairs+row)*c.numPlanes+plane)*c.columns + column
	return idx * c.elementWidth
}

// Element reads the raw, little-endian, elementWidth-sized port word stored
// at (buffer, row, plane, column).
func (c *Core) Element(buffer, row, plane, column int) uint32 {
	off := c.Offset(buffer, row, plane, column)
	return readElement(c.screenData[off : off+c.elementWidth])
}

// SetElement writes a raw port word at (buffer, row, plane, column). value
// is truncated to the low elementWidth*8 bits.
func (c *Core) SetElement(buffer, row, plane, column int, value uint32) {
	off := c.Offset(buffer, row, plane, column)
	writeElement(c.screenData[off:off+c.elementWidth], value)
}

func readElement(b []byte) uint32 {
	var v uint32
	for i, by := range b {
		v |= uint32(by) << uint(8*i)
	}
	return v
}

func writeElement(b []byte, v uint32) {
	for i := range b {
		b[i] = byte(v >> uint(8*i))
	}
}

// The remainder of this file is the Plotter interface (§6): the fields a
// higher layer needs to compute pixel addresses and request a buffer swap.

// Width returns the chain length in columns (pixels).
func (c *Core) Width() int { return c.width }

// NumPlanes returns the number of BCM bit-planes.
func (c *Core) NumPlanes() int { return c.numPlanes }

// NumRowPairs returns the number of addressable row pairs.
func (c *Core) NumRowPairs() int { return c.numRowPairs }

// ElementWidth returns the chosen port element width in bytes (1, 2, or 4).
func (c *Core) ElementWidth() int { return c.elementWidth }

// Columns returns the padded column count framebuffer rows are stored with.
func (c *Core) Columns() int { return c.columns }

// BufferSize returns the byte size of a single matrix buffer (half of
// ScreenData's length when double-buffered).
func (c *Core) BufferSize() int { return c.bufferSize }

// ScreenData returns the raw framebuffer storage.
func (c *Core) ScreenData() []byte { return c.screenData }

// RGBMask returns the per-pin bitmasks, pre-shifted into the chosen element
// width, indexed 0..6*Parallel-1.
func (c *Core) RGBMask() []uint32 { return c.rgbMask }

// RemapRB returns the 5-bit red/blue channel to bitplane-index lookup
// table.
func (c *Core) RemapRB() [32]uint16 { return c.remapRB }

// RemapG returns the 6-bit green channel to bitplane-index lookup table.
func (c *Core) RemapG() [64]uint16 { return c.remapG }

// Parallel returns the number of RGB triples per column.
func (c *Core) Parallel() int { return c.parallel }

// DoubleBuffer reports whether the Core was configured with a second
// buffer.
func (c *Core) DoubleBuffer() bool { return c.doubleBuffer }

// ActiveBuffer returns which buffer (0 or 1) the scan loop is currently
// reading from. A plotter double-buffering its output should draw into
// the other one.
func (c *Core) ActiveBuffer() int32 { return atomic.LoadInt32(&c.activeBuffer) }

// RequestSwap asks the scan loop to swap buffers at the next frame
// boundary (row 0, plane 0). Safe to call from any goroutine; has no
// effect on a Core configured without double buffering.
func (c *Core) RequestSwap() {
	if c.doubleBuffer {
		atomic.StoreInt32(&c.swapBuffers, 1)
	}
}
