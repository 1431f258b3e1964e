// Package visual renders a running core.Core's framebuffer to screen with
// ebiten, standing in for the physical LED panel during development.
package visual

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ardnew/hub75/core"
)

// Viewer implements ebiten.Game over a *core.Core, decoding its
// binary-coded-modulation bitplanes back into RGB pixels every Draw.
type Viewer struct {
	engine *core.Core
	title  string
}

// New returns a Viewer over engine and sizes the ebiten window to the
// panel's native resolution (scaled up, since most panels are a few dozen
// pixels tall).
func New(engine *core.Core, title string) *Viewer {
	v := &Viewer{engine: engine, title: title}
	w, h := v.Layout(0, 0)
	ebiten.SetWindowSize(w*8, h*8)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return v
}

// Layout returns the panel's native resolution: Width columns by twice
// NumRowPairs rows (each row pair addresses an upper and lower half
// simultaneously), times Parallel chained panels stacked vertically.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.engine.Width(), 2 * v.engine.NumRowPairs() * v.engine.Parallel()
}

// Update is a no-op: the engine advances on its own goroutine via
// core.Core.RowHandler, not in step with ebiten's draw loop.
func (v *Viewer) Update() error { return nil }

// Draw reconstructs one RGB frame from the active buffer's bitplanes and
// blits it to screen.
func (v *Viewer) Draw(screen *ebiten.Image) {
	c := v.engine
	active := int(c.ActiveBuffer())
	maxVal := (uint32(1) << uint(c.NumPlanes())) - 1
	if maxVal == 0 {
		maxVal = 1
	}
	mask := c.RGBMask()

	for lane := 0; lane < c.Parallel(); lane++ {
		base := lane * 6
		for row := 0; row < c.NumRowPairs(); row++ {
			for col := 0; col < c.Width(); col++ {
				var r0, g0, b0, r1, g1, b1 uint32
				for plane := 0; plane < c.NumPlanes(); plane++ {
					elem := c.Element(active, row, plane, col)
					weight := uint32(1) << uint(plane)
					if elem&mask[base+0] != 0 {
						r0 |= weight
					}
					if elem&mask[base+1] != 0 {
						g0 |= weight
					}
					if elem&mask[base+2] != 0 {
						b0 |= weight
					}
					if elem&mask[base+3] != 0 {
						r1 |= weight
					}
					if elem&mask[base+4] != 0 {
						g1 |= weight
					}
					if elem&mask[base+5] != 0 {
						b1 |= weight
					}
				}
				y0 := lane*2*c.NumRowPairs() + row
				y1 := y0 + c.NumRowPairs()
				screen.Set(col, y0, scaledRGB(r0, g0, b0, maxVal))
				screen.Set(col, y1, scaledRGB(r1, g1, b1, maxVal))
			}
		}
	}
}

func scaledRGB(r, g, b, maxVal uint32) color.RGBA {
	return color.RGBA{
		R: uint8(r * 255 / maxVal),
		G: uint8(g * 255 / maxVal),
		B: uint8(b * 255 / maxVal),
		A: 255,
	}
}
