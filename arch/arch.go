// Package arch declares the device- and environment-specific collaborator
// that the refresh engine in package core depends on but never implements
// itself: GPIO register lookup, pin direction/level control, microsecond
// delay, and a hardware timer.
//
// Nothing in this package pokes real hardware. It exists so core can be
// written once against an interface and driven by whichever concrete
// Platform fits the host -- a software simulator for tests (package
// archsim), a Linux GPIO character device for single-board computers
// (package archlinux), or, eventually, a real memory-mapped microcontroller
// PORT register.
package arch

// Pin identifies a single GPIO line. Its numeric value is meaningful only to
// the Platform that resolves it -- core treats it as an opaque handle, the
// same way tinygo.org/x/drivers/rgb75 treats a machine.Pin.
type Pin int

// Register models a write-only GPIO set or clear register: writing a mask
// with Set raises those bits, Clear lowers them. Bits passed to either
// method are always already positioned for the full 32-bit port word --
// see Platform.Strict32BitIO.
type Register interface {
	Set(bits uint32)
	Clear(bits uint32)
}

// ToggleRegister is a port's toggle register: writing a mask to Toggle
// flips exactly those bits, leaving the rest of the port word untouched.
// Not every platform has one.
type ToggleRegister interface {
	Toggle(bits uint32)
}

// Timer is the hardware BCM interval timer. Start arms the next interval,
// in platform ticks; Stop halts the timer and reports ticks elapsed since
// the last Start.
type Timer interface {
	Init()
	Start(ticks uint32)
	Stop() uint32
}

// Platform is the Arch Facade. A Core is built from exactly one Platform and
// assumes every Pin it is given resolves through that same Platform.
type Platform interface {
	// Port returns an opaque identifier for the 32-bit GPIO port pin
	// belongs to. Two pins on the same physical port must compare equal;
	// this is how Begin enforces invariant 1 (all RGB + clock pins share a
	// port).
	Port(pin Pin) uintptr

	// BitMask returns the full 32-bit mask of the bit pin occupies within
	// its port.
	BitMask(pin Pin) uint32

	// ByteOffset returns which byte (0-3) of the 32-bit port pin's bit
	// falls within. WordOffset returns which half-word (0-1).
	ByteOffset(pin Pin) uint8
	WordOffset(pin Pin) uint8

	// SetRegister and ClearRegister return the full-width set/clear
	// register of the port pin belongs to.
	SetRegister(pin Pin) Register
	ClearRegister(pin Pin) Register

	// ToggleRegisterFor returns the toggle register of the port pin
	// belongs to, and whether one exists. A platform either has toggle
	// registers on every port or none at all; ok is false uniformly when
	// the platform lacks the capability.
	ToggleRegisterFor(pin Pin) (reg ToggleRegister, ok bool)

	PinOutput(pin Pin)
	PinHigh(pin Pin)
	PinLow(pin Pin)
	PinSet(pin Pin, high bool)

	DelayMicroseconds(us uint32)

	// DefaultTimer returns the platform's default timer, used when Init is
	// called with a nil Timer. Returns nil if the platform has none, in
	// which case Init with a nil timer is an error.
	DefaultTimer() Timer

	// TimerFreq is the timer's tick rate, in ticks per second.
	TimerFreq() uint32

	// MinMinPeriod floors the computed minimum BCM period (ticks), below
	// which the platform cannot reliably schedule an interrupt.
	MinMinPeriod() uint32

	// ChunkSize is the compile-time (for this platform) unroll factor the
	// Layout Planner pads column counts to. Must be a power of two, 1-64.
	ChunkSize() int

	// Strict32BitIO reports whether register accesses must always be full
	// 32-bit transactions. Both Platform implementations in this module
	// report true; see DESIGN.md for why the narrower byte/word bus access
	// core.c optionally takes advantage of isn't modeled here.
	Strict32BitIO() bool

	// ClockHoldLow and ClockHoldHigh are called immediately after the data
	// and clock edges (respectively) of a Shifter write, giving platforms
	// whose CPU can outrun the panel's shift register a place to insert a
	// hold delay. A no-op implementation is always valid.
	ClockHoldLow()
	ClockHoldHigh()
}
