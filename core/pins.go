package core

import "github.com/ardnew/hub75/arch"

// pinBinding is a Pin Binding (§3): the resolved set/clear register
// addresses and bitmask for a single GPIO line, cached once at Begin so the
// ISR never calls back into the Platform to re-derive them.
type pinBinding struct {
	pin      arch.Pin
	setReg   arch.Register
	clearReg arch.Register
	bit      uint32
}

func resolveBinding(p arch.Platform, pin arch.Pin) pinBinding {
	return pinBinding{
		pin:      pin,
		setReg:   p.SetRegister(pin),
		clearReg: p.ClearRegister(pin),
		bit:      p.BitMask(pin),
	}
}
