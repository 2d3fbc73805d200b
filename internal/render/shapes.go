package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// pen rasterizes anti-aliased strokes onto a fixed-size canvas.
type pen struct {
	dst  draw.Image
	rast *vector.Rasterizer
	w, h float64
}

func newPen(dst draw.Image) *pen {
	b := dst.Bounds()
	return &pen{
		dst:  dst,
		rast: vector.NewRasterizer(b.Dx(), b.Dy()),
		w:    float64(b.Dx()),
		h:    float64(b.Dy()),
	}
}

func (p *pen) clamp(x, y float64) (float32, float32) {
	return float32(math.Max(0, math.Min(p.w, x))), float32(math.Max(0, math.Min(p.h, y)))
}

func (p *pen) moveTo(x, y float64) { p.rast.MoveTo(p.clamp(x, y)) }
func (p *pen) lineTo(x, y float64) { p.rast.LineTo(p.clamp(x, y)) }

func (p *pen) fill(c color.Color) {
	b := p.dst.Bounds()
	p.rast.Draw(p.dst, b, image.NewUniform(c), image.Point{})
	p.rast.Reset(b.Dx(), b.Dy())
}

// line strokes a segment of the given width as a thin quad.
func (p *pen) line(x0, y0, x1, y1, width float64, c color.Color) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	p.moveTo(x0+nx, y0+ny)
	p.lineTo(x1+nx, y1+ny)
	p.lineTo(x1-nx, y1-ny)
	p.lineTo(x0-nx, y0-ny)
	p.rast.ClosePath()
	p.fill(c)
}

// ring strokes a circle outline. The inner contour winds the opposite way so
// the rasterizer leaves the disc interior empty.
func (p *pen) ring(cx, cy, radius, width float64, c color.Color) {
	const segments = 96
	outer, inner := radius+width/2, math.Max(0, radius-width/2)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x, y := cx+outer*math.Cos(a), cy+outer*math.Sin(a)
		if i == 0 {
			p.moveTo(x, y)
		} else {
			p.lineTo(x, y)
		}
	}
	p.rast.ClosePath()
	if inner > 0 {
		for i := segments; i >= 0; i-- {
			a := 2 * math.Pi * float64(i) / segments
			x, y := cx+inner*math.Cos(a), cy+inner*math.Sin(a)
			if i == segments {
				p.moveTo(x, y)
			} else {
				p.lineTo(x, y)
			}
		}
		p.rast.ClosePath()
	}
	p.fill(c)
}
