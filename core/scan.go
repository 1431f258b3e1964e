package core

import "sync/atomic"

// RowHandler is the ISR entry point (§4.6, §6). The platform's timer
// interrupt vector must call this on every expiry. Strictly ordered:
// blank, latch the previously-shifted scanline, update BCM timing, update
// the row address if a new row just started, advance the (plane, row)
// cursor, arm the next interval, unblank, and shift the next plane's data
// so it is ready by the time the timer fires again.
//
// Must complete well within the next timer interval; it performs no
// allocation and blocks only on DelayMicroseconds.
func (c *Core) RowHandler() {
	c.oe.setReg.Set(c.oe.bit) // disable LED output

	// Sync pulse: clear (no-op, orders the coalesced writes on platforms
	// that need it), set, capture timing, clear again to latch.
	c.latch.clearReg.Clear(c.latch.bit)
	c.latch.setReg.Set(c.latch.bit)

	elapsed := c.timer.Stop()
	prevPlane := c.plane
	c.latch.clearReg.Clear(c.latch.bit)

	if prevPlane == 1 || c.numPlanes == 1 {
		c.bitZeroPeriod = updateBitZeroPeriod(c.bitZeroPeriod, elapsed, c.minPeriod)
	}

	if prevPlane == 0 {
		c.selectRow()
	}

	// Advance bitplane index and/or row.
	c.plane++
	if c.plane >= c.numPlanes {
		c.plane = 0
		c.row++
		if c.row >= c.numRowPairs {
			c.row = 0
			if atomic.LoadInt32(&c.swapBuffers) != 0 {
				active := atomic.LoadInt32(&c.activeBuffer)
				atomic.StoreInt32(&c.activeBuffer, 1-active)
				atomic.StoreInt32(&c.swapBuffers, 0)
			}
			atomic.AddUint32(&c.frameCount, 1)
		}
	}

	// plane now names the data being loaded; prevPlane names the data
	// being displayed for the interval we're about to arm.
	c.timer.Start(c.bitZeroPeriod << uint(prevPlane))
	c.platform.DelayMicroseconds(1)
	c.oe.clearReg.Clear(c.oe.bit) // enable LED output

	c.shiftPlane()
}

// selectRow applies a row-address change, either as one toggle-register
// write (when every address line shares a single toggle-capable port) or
// line by line with a settle delay after each change (§4.6 step 5).
func (c *Core) selectRow() {
	if c.singleAddrPort {
		var priorBits, newBits uint32
		for line := range c.addr {
			bit := 1 << uint(line)
			if c.row&bit != 0 {
				newBits |= c.addr[line].bit
			}
			if c.prevRow&bit != 0 {
				priorBits |= c.addr[line].bit
			}
		}
		c.addrToggle.Toggle(newBits ^ priorBits)
		c.platform.DelayMicroseconds(RowDelayMicroseconds)
	} else {
		for line := range c.addr {
			bit := 1 << uint(line)
			if (c.row & bit) != (c.prevRow & bit) {
				if c.row&bit != 0 {
					c.addr[line].setReg.Set(c.addr[line].bit)
				} else {
					c.addr[line].clearReg.Clear(c.addr[line].bit)
				}
				c.platform.DelayMicroseconds(RowDelayMicroseconds)
			}
		}
	}
	c.prevRow = c.row
}

// shiftPlane computes the source offset for (activeBuffer, row, plane) and
// hands the scanline to the shifter matching elementWidth.
func (c *Core) shiftPlane() {
	active := int(atomic.LoadInt32(&c.activeBuffer))
	off := c.Offset(active, c.row, c.plane, 0)
	data := c.screenData[off : off+c.columns*c.elementWidth]

	switch c.elementWidth {
	case 1:
		c.blastByte(data)
	case 2:
		c.blastWord(data)
	default:
		c.blastLong(data)
	}
}

// updateBitZeroPeriod applies the period estimator's EMA filter (§4.7):
// plane 0's measured exposure time is blended 7:1 against the running
// average, floored so the estimator can never drive the refresh loop faster
// than the platform's minimum period.
func updateBitZeroPeriod(current, elapsed, min uint32) uint32 {
	p := (current*7 + elapsed) / 8
	if p < min {
		p = min
	}
	return p
}
