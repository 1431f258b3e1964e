// Package archsim is a software arch.Platform: every GPIO port is a plain
// uint32 in process memory, and the timer is driven by the caller rather
// than a real interrupt source. It exists so package core's scan state
// machine and shifters can be exercised -- and their branch coverage
// controlled -- without any hardware.
package archsim

import (
	"fmt"
	"sync/atomic"

	"github.com/ardnew/hub75/arch"
)

// port is one simulated 32-bit GPIO register bank.
type port struct {
	id      uintptr
	value   uint32
	toggle  bool // this port (and therefore every pin on it) has a toggle register
	dirOut  uint32
}

func (p *port) Set(bits uint32)   { atomicOr(&p.value, bits) }
func (p *port) Clear(bits uint32) { atomicAnd(&p.value, ^bits) }
func (p *port) Toggle(bits uint32) {
	if !p.toggle {
		panic("archsim: Toggle called on a port configured without one")
	}
	atomicXor(&p.value, bits)
}

func atomicOr(addr *uint32, bits uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, old, old|bits) {
			return
		}
	}
}

func atomicAnd(addr *uint32, bits uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, old, old&bits) {
			return
		}
	}
}

func atomicXor(addr *uint32, bits uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, old, old^bits) {
			return
		}
	}
}

// pinLoc locates a single pin within a Platform's port list.
type pinLoc struct {
	port int
	bit  uint32
}

// Timer is a caller-driven stand-in for a hardware interval timer: Start
// records the requested period, Stop reports whatever Advance most
// recently fed it as "elapsed".
type Timer struct {
	running bool
	period  uint32
	elapsed uint32
}

func (t *Timer) Init()              { t.running = false; t.elapsed = 0 }
func (t *Timer) Start(ticks uint32) { t.period = ticks; t.running = true }
func (t *Timer) Stop() uint32 {
	t.running = false
	return t.elapsed
}

// Advance feeds the simulated elapsed tick count RowHandler will see the
// next time it calls Stop. Tests use this to drive the scan loop forward
// deterministically.
func (t *Timer) Advance(ticks uint32) { t.elapsed = ticks }

// Platform is a configurable software arch.Platform.
type Platform struct {
	ports []*port
	pins  map[arch.Pin]pinLoc

	chunkSize    int
	timerFreq    uint32
	minMinPeriod uint32
	tmr          Timer

	holdLowCalls, holdHighCalls int
	delayCalls                  []uint32
}

// Option configures a new Platform.
type Option func(*Platform)

// WithChunkSize sets the layout planner's unroll factor. Default 1.
func WithChunkSize(n int) Option {
	return func(p *Platform) { p.chunkSize = n }
}

// WithTimerFreq sets the simulated timer's tick rate. Default 1_000_000 (1MHz).
func WithTimerFreq(hz uint32) Option {
	return func(p *Platform) { p.timerFreq = hz }
}

// WithMinMinPeriod sets the platform's minimum schedulable period, in ticks.
func WithMinMinPeriod(ticks uint32) Option {
	return func(p *Platform) { p.minMinPeriod = ticks }
}

// New returns an empty Platform with numPorts simulated 32-bit registers.
// toggleCapable controls whether every port additionally exposes a toggle
// register -- real hardware is uniform across its own ports, so this
// package is too.
func New(numPorts int, toggleCapable bool, opts ...Option) *Platform {
	p := &Platform{
		pins:         make(map[arch.Pin]pinLoc),
		chunkSize:    1,
		timerFreq:    1_000_000,
		minMinPeriod: 1,
	}
	for i := 0; i < numPorts; i++ {
		p.ports = append(p.ports, &port{id: uintptr(i + 1), toggle: toggleCapable})
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Bind assigns pin to bit position bit (0-31) of port index portIdx.
func (p *Platform) Bind(pin arch.Pin, portIdx int, bit uint32) {
	if portIdx < 0 || portIdx >= len(p.ports) {
		panic(fmt.Sprintf("archsim: port index %d out of range", portIdx))
	}
	p.pins[pin] = pinLoc{port: portIdx, bit: uint32(1) << bit}
}

func (p *Platform) loc(pin arch.Pin) pinLoc {
	l, ok := p.pins[pin]
	if !ok {
		panic(fmt.Sprintf("archsim: pin %d never bound", pin))
	}
	return l
}

func (p *Platform) Port(pin arch.Pin) uintptr { return p.ports[p.loc(pin).port].id }
func (p *Platform) BitMask(pin arch.Pin) uint32 { return p.loc(pin).bit }

func (p *Platform) ByteOffset(pin arch.Pin) uint8 {
	bit := p.loc(pin).bit
	for i := uint8(0); i < 4; i++ {
		if bit&(uint32(0xFF)<<(8*i)) != 0 {
			return i
		}
	}
	return 0
}

func (p *Platform) WordOffset(pin arch.Pin) uint8 {
	if p.loc(pin).bit&0xFFFF0000 != 0 {
		return 1
	}
	return 0
}

func (p *Platform) SetRegister(pin arch.Pin) arch.Register   { return p.ports[p.loc(pin).port] }
func (p *Platform) ClearRegister(pin arch.Pin) arch.Register { return p.ports[p.loc(pin).port] }

func (p *Platform) ToggleRegisterFor(pin arch.Pin) (arch.ToggleRegister, bool) {
	port := p.ports[p.loc(pin).port]
	if !port.toggle {
		return nil, false
	}
	return port, true
}

func (p *Platform) PinOutput(pin arch.Pin) { p.ports[p.loc(pin).port].dirOut |= p.loc(pin).bit }
func (p *Platform) PinHigh(pin arch.Pin)   { p.Set(pin) }
func (p *Platform) PinLow(pin arch.Pin)    { p.Clear(pin) }
func (p *Platform) PinSet(pin arch.Pin, high bool) {
	if high {
		p.PinHigh(pin)
	} else {
		p.PinLow(pin)
	}
}

// Set and Clear are convenience wrappers so tests can flip a pin without
// going through SetRegister/ClearRegister.
func (p *Platform) Set(pin arch.Pin)   { p.ports[p.loc(pin).port].Set(p.loc(pin).bit) }
func (p *Platform) Clear(pin arch.Pin) { p.ports[p.loc(pin).port].Clear(p.loc(pin).bit) }

// PinValue reports whether pin currently reads high.
func (p *Platform) PinValue(pin arch.Pin) bool {
	l := p.loc(pin)
	return atomic.LoadUint32(&p.ports[l.port].value)&l.bit != 0
}

// PortValue reports the raw 32-bit contents of the port pin belongs to.
func (p *Platform) PortValue(pin arch.Pin) uint32 {
	return atomic.LoadUint32(&p.ports[p.loc(pin).port].value)
}

func (p *Platform) DelayMicroseconds(us uint32) { p.delayCalls = append(p.delayCalls, us) }

func (p *Platform) DefaultTimer() arch.Timer { return &p.tmr }
func (p *Platform) TimerFreq() uint32        { return p.timerFreq }
func (p *Platform) MinMinPeriod() uint32     { return p.minMinPeriod }
func (p *Platform) ChunkSize() int           { return p.chunkSize }

// Strict32BitIO is always true: see DESIGN.md for why this package does not
// model the narrow byte/word bus access core.c optionally takes.
func (p *Platform) Strict32BitIO() bool { return true }

func (p *Platform) ClockHoldLow()  { p.holdLowCalls++ }
func (p *Platform) ClockHoldHigh() { p.holdHighCalls++ }

// Timer returns the simulated timer directly, so tests can Advance it
// between RowHandler calls.
func (p *Platform) Timer() *Timer { return &p.tmr }
