// Command hub75view drives a HUB75 chain and displays its framebuffer in a
// window, useful for exercising package core without real panel hardware.
package main

import (
	"log/slog"
	"os"
	"time"

	getopt "github.com/pborman/getopt/v2"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ardnew/hub75/arch"
	"github.com/ardnew/hub75/archlinux"
	"github.com/ardnew/hub75/archsim"
	"github.com/ardnew/hub75/core"
	"github.com/ardnew/hub75/visual"
)

var log *slog.Logger

func main() {
	optWidth := getopt.IntLong("width", 'w', 64, "panel width in columns")
	optAddrLines := getopt.IntLong("addr-lines", 'a', 4, "number of row address lines")
	optPlanes := getopt.IntLong("planes", 'p', 6, "bitplane count (color depth)")
	optParallel := getopt.IntLong("parallel", 0, 1, "number of chained RGB triples")
	optDouble := getopt.BoolLong("double-buffer", 'd', "enable double buffering")
	optLinux := getopt.BoolLong("linux", 0, "drive real GPIO via /dev/gpiochipN instead of the simulator")
	optChip := getopt.StringLong("gpiochip", 0, "gpiochip0", "gpiochip device name, with --linux")
	optLogLevel := getopt.StringLong("log-level", 0, "info", "debug, info, warn, or error")
	getopt.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*optLogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	platform, cleanup, pins := buildPlatform(*optLinux, *optChip, *optAddrLines, *optParallel)
	defer cleanup()

	engine := core.New(platform)
	err := engine.Init(
		*optWidth, *optPlanes, *optParallel,
		pins.rgb, pins.addr,
		pins.clock, pins.latch, pins.oe,
		*optDouble, nil,
	)
	if err != nil {
		log.Error("init failed", "error", err)
		os.Exit(1)
	}
	if err := engine.Begin(); err != nil {
		log.Error("begin failed", "error", err)
		os.Exit(1)
	}
	defer engine.Free()

	log.Info("panel configured",
		"width", engine.Width(),
		"rowPairs", engine.NumRowPairs(),
		"planes", engine.NumPlanes(),
		"elementWidth", engine.ElementWidth(),
	)

	go scanLoop(engine)
	go animate(engine)

	viewer := visual.New(engine, "hub75view")
	if err := ebiten.RunGame(viewer); err != nil {
		log.Error("viewer exited", "error", err)
		os.Exit(1)
	}
}

// scanLoop stands in for the interrupt a real target would take on a
// hardware timer, calling RowHandler back-to-back; it does not wait out the
// period each call arms on the bound Platform's timer.
func scanLoop(engine *core.Core) {
	for {
		engine.RowHandler()
	}
}

// animate is a minimal test-pattern plotter driving a bouncing pixel
// across the active buffer, enough to confirm the chain and layout are
// correct without pulling in a real plotting library.
func animate(engine *core.Core) {
	x, y := 0, 0
	dx, dy := 1, 1
	plane := engine.NumPlanes() - 1
	for {
		buf := engine.ActiveBuffer()
		for row := 0; row < engine.NumRowPairs(); row++ {
			for col := 0; col < engine.Width(); col++ {
				for p := 0; p < engine.NumPlanes(); p++ {
					engine.SetElement(int(buf), row, p, col, 0)
				}
			}
		}
		row, col := y%engine.NumRowPairs(), x%engine.Width()
		mask := engine.RGBMask()
		engine.SetElement(int(buf), row, plane, col, mask[0]|mask[1]|mask[2])

		x += dx
		y += dy
		if x <= 0 || x >= engine.Width()-1 {
			dx = -dx
		}
		if y <= 0 || y >= engine.NumRowPairs()-1 {
			dy = -dy
		}
		engine.RequestSwap()
		time.Sleep(40 * time.Millisecond)
	}
}

type pinSet struct {
	rgb, addr        []arch.Pin
	clock, latch, oe arch.Pin
}

// buildPlatform wires either archsim (default) or archlinux (--linux) with
// enough pins for parallel chains of RGB triples and the requested number
// of address lines. The returned cleanup func releases any real GPIO lines.
func buildPlatform(useLinux bool, chip string, addrLines, parallel int) (arch.Platform, func(), pinSet) {
	need := parallel * 6
	rgb := make([]arch.Pin, need)
	for i := range rgb {
		rgb[i] = arch.Pin(i)
	}
	clock := arch.Pin(need)
	latch := arch.Pin(need + 1)
	oe := arch.Pin(need + 2)
	addr := make([]arch.Pin, addrLines)
	for i := range addr {
		addr[i] = arch.Pin(need + 3 + i)
	}
	pins := pinSet{rgb: rgb, addr: addr, clock: clock, latch: latch, oe: oe}

	if !useLinux {
		p := archsim.New(2, true, archsim.WithChunkSize(8))
		for i, pin := range rgb {
			p.Bind(pin, 0, uint32(i))
		}
		p.Bind(clock, 0, uint32(need))
		p.Bind(latch, 1, 0)
		p.Bind(oe, 1, 1)
		for i, pin := range addr {
			p.Bind(pin, 1, uint32(2+i))
		}
		return p, func() {}, pins
	}

	p := archlinux.New(archlinux.WithChip(chip))
	offset := 2
	bindOrDie := func(pin arch.Pin, bit int) {
		if err := p.Bind(pin, offset, bit); err != nil {
			log.Error("bind failed", "pin", pin, "offset", offset, "error", err)
			os.Exit(1)
		}
		offset++
	}
	for i, pin := range rgb {
		bindOrDie(pin, i)
	}
	bindOrDie(clock, need)
	bindOrDie(latch, need+1)
	bindOrDie(oe, need+2)
	for i, pin := range addr {
		bindOrDie(pin, need+3+i)
	}
	return p, func() { _ = p.Close() }, pins
}

