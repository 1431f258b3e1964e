// Package archlinux is an arch.Platform backed by the Linux GPIO character
// device, via github.com/warthog618/go-gpiocdev. Unlike a microcontroller's
// memory-mapped PORT register, a gpiocdev.Line is independently addressed --
// there is no single 32-bit word the kernel lets us write in one syscall.
// This package presents the illusion of one anyway: every bound Pin gets a
// bit position in a virtual 32-bit port, and Register.Set/Clear fan a
// multi-bit write back out into one Line.SetValue call per affected line.
// The trade is latency (N syscalls instead of one store) for the ability to
// run core's layout planner and shifters unmodified against real hardware.
package archlinux

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/ardnew/hub75/arch"
)

// Platform drives one HUB75 chain's GPIO lines through a single gpiochip.
type Platform struct {
	chip string

	lines map[arch.Pin]*gpiocdev.Line
	bits  map[arch.Pin]uint32
	out   map[arch.Pin]bool // direction requested as output

	chunkSize    int
	timerFreq    uint32
	minMinPeriod uint32
	tmr          swTimer

	holdLow, holdHigh time.Duration
}

// Option configures a new Platform.
type Option func(*Platform)

// WithChip overrides the gpiochip device name. Default "gpiochip0".
func WithChip(name string) Option {
	return func(p *Platform) { p.chip = name }
}

// WithChunkSize sets the layout planner's unroll factor. Default 8.
func WithChunkSize(n int) Option {
	return func(p *Platform) { p.chunkSize = n }
}

// WithClockHold sets the settle delay ClockHoldLow/ClockHoldHigh insert
// after each GPIO fan-out write, compensating for the character device's
// higher per-write latency relative to a memory-mapped register.
func WithClockHold(low, high time.Duration) Option {
	return func(p *Platform) { p.holdLow, p.holdHigh = low, high }
}

// New returns an empty Platform for chip (default gpiochip0 unless
// overridden). No line is requested until Bind, so pins must still be bound
// with Bind before use.
func New(opts ...Option) *Platform {
	p := &Platform{
		chip:         "gpiochip0",
		lines:        make(map[arch.Pin]*gpiocdev.Line),
		bits:         make(map[arch.Pin]uint32),
		out:          make(map[arch.Pin]bool),
		chunkSize:    8,
		timerFreq:    1_000_000_000, // one tick per nanosecond
		minMinPeriod: 1000,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Bind requests offset as an output line on the chip and assigns it bit
// position bit (0-31) of the virtual port every bound pin shares.
func (p *Platform) Bind(pin arch.Pin, offset, bit int) error {
	line, err := gpiocdev.RequestLine(p.chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("archlinux: request line %d: %w", offset, err)
	}
	p.lines[pin] = line
	p.bits[pin] = uint32(1) << uint(bit)
	return nil
}

// Close releases every requested GPIO line. Safe to call more than once.
func (p *Platform) Close() error {
	var firstErr error
	for pin, line := range p.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.lines, pin)
	}
	return firstErr
}

func (p *Platform) line(pin arch.Pin) *gpiocdev.Line {
	l, ok := p.lines[pin]
	if !ok {
		panic(fmt.Sprintf("archlinux: pin %d never bound", pin))
	}
	return l
}

// register fans a virtual-port bitmask write out across whichever real
// lines it covers.
type register struct {
	p     *Platform
	value int
}

func (r register) apply(bits uint32) {
	for pin, b := range r.p.bits {
		if bits&b == 0 {
			continue
		}
		// Best-effort: a HUB75 chain runs at a refresh rate where retrying a
		// failed write would already have missed its deadline.
		_ = r.p.line(pin).SetValue(r.value)
	}
}

type setRegister struct{ p *Platform }

func (r setRegister) Set(bits uint32) { (register{p: r.p, value: 1}).apply(bits) }

type clearRegister struct{ p *Platform }

func (r clearRegister) Clear(bits uint32) { (register{p: r.p, value: 0}).apply(bits) }

// Port returns the same identifier for every bound pin: gpiocdev has no
// notion of a shared hardware port, so this package fabricates one virtual
// port spanning every pin the caller binds, satisfying core's same-port
// invariant by construction.
func (p *Platform) Port(pin arch.Pin) uintptr { return 1 }

func (p *Platform) BitMask(pin arch.Pin) uint32 {
	b, ok := p.bits[pin]
	if !ok {
		panic(fmt.Sprintf("archlinux: pin %d never bound", pin))
	}
	return b
}

func (p *Platform) ByteOffset(pin arch.Pin) uint8 {
	bit := p.BitMask(pin)
	for i := uint8(0); i < 4; i++ {
		if bit&(uint32(0xFF)<<(8*i)) != 0 {
			return i
		}
	}
	return 0
}

func (p *Platform) WordOffset(pin arch.Pin) uint8 {
	if p.BitMask(pin)&0xFFFF0000 != 0 {
		return 1
	}
	return 0
}

func (p *Platform) SetRegister(pin arch.Pin) arch.Register   { return setRegister{p} }
func (p *Platform) ClearRegister(pin arch.Pin) arch.Register { return clearRegister{p} }

// ToggleRegisterFor always reports no capability: a character-device line
// offers no atomic read-modify-write, so there is nothing to toggle.
func (p *Platform) ToggleRegisterFor(pin arch.Pin) (arch.ToggleRegister, bool) { return nil, false }

func (p *Platform) PinOutput(pin arch.Pin) { p.out[pin] = true }
func (p *Platform) PinHigh(pin arch.Pin)   { _ = p.line(pin).SetValue(1) }
func (p *Platform) PinLow(pin arch.Pin)    { _ = p.line(pin).SetValue(0) }
func (p *Platform) PinSet(pin arch.Pin, high bool) {
	if high {
		p.PinHigh(pin)
	} else {
		p.PinLow(pin)
	}
}

func (p *Platform) DelayMicroseconds(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

func (p *Platform) DefaultTimer() arch.Timer { return &p.tmr }
func (p *Platform) TimerFreq() uint32        { return p.timerFreq }
func (p *Platform) MinMinPeriod() uint32     { return p.minMinPeriod }
func (p *Platform) ChunkSize() int           { return p.chunkSize }

// Strict32BitIO is always true here too: see DESIGN.md.
func (p *Platform) Strict32BitIO() bool { return true }

func (p *Platform) ClockHoldLow() {
	if p.holdLow > 0 {
		time.Sleep(p.holdLow)
	}
}

func (p *Platform) ClockHoldHigh() {
	if p.holdHigh > 0 {
		time.Sleep(p.holdHigh)
	}
}

// swTimer measures elapsed wall-clock time in TimerFreq ticks, standing in
// for a hardware counter that Linux does not expose to user space.
type swTimer struct {
	armed time.Time
}

func (t *swTimer) Init() { t.armed = time.Time{} }
func (t *swTimer) Start(ticks uint32) { t.armed = time.Now() }
func (t *swTimer) Stop() uint32 {
	if t.armed.IsZero() {
		return 0
	}
	return uint32(time.Since(t.armed).Nanoseconds())
}
