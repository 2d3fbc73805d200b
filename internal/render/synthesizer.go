// Package render draws the transfer confirmation image for a post.
//
// The styled image is built in independent stages (background, noise strokes,
// binary glyph texture, rings, glowing label, scanlines). If any stage fails or
// panics, the partial canvas is dropped and a minimal fallback image is
// rendered instead, so Render always returns a usable PNG.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math/rand/v2"
	"runtime/debug"

	"TransferCast/internal/model"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
	Filename      = "tx.png"

	noiseStrokes = 15
	binaryGlyphs = 300
	glyphSize    = 12
	labelSize    = 220
	labelLift    = 20
	scanlineStep = 3
)

var (
	backgroundColor = color.RGBA{R: 10, G: 15, B: 20, A: 255}
	shadowColor     = color.RGBA{G: 80, A: 255}
	labelColor      = color.RGBA{G: 255, B: 120, A: 255}
	scanlineColor   = color.NRGBA{G: 10, A: 30}
	shadowOffsets   = []image.Point{{X: -2, Y: -2}, {X: 2, Y: 2}, {X: -1, Y: 1}, {X: 1, Y: -1}}
)

// Synthesizer renders artifacts. It is not safe for concurrent use because it
// shares one random source across renders.
type Synthesizer struct {
	Width  int
	Height int
	Faces  FaceProvider
	rnd    *rand.Rand
}

// NewSynthesizer creates a Synthesizer. Non-positive sizes fall back to 1024x512.
func NewSynthesizer(width, height int, faces FaceProvider, rnd *rand.Rand) *Synthesizer {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &Synthesizer{Width: width, Height: height, Faces: faces, rnd: rnd}
}

// Label is the text printed on the image.
func Label(amount int64) string {
	return fmt.Sprintf("+%d$", amount)
}

// Render draws the image for amount. It never fails.
func (s *Synthesizer) Render(amount int64) model.Artifact {
	label := Label(amount)
	data, err := s.renderStyled(label)
	if err == nil {
		return model.Artifact{Bytes: data, Format: "png", Filename: Filename}
	}
	log.Printf("[WARN] render %q: %v, using fallback image", label, err)
	return model.Artifact{Bytes: s.renderFallback(label), Format: "png", Filename: Filename, Fallback: true}
}

// canvas is the per-render drawing state.
type canvas struct {
	img   *image.RGBA
	pen   *pen
	label string
}

type stage struct {
	name string
	draw func(*Synthesizer, *canvas) error
}

var pipeline = []stage{
	{"background", (*Synthesizer).drawBackground},
	{"noise", (*Synthesizer).drawNoise},
	{"binary texture", (*Synthesizer).drawBinaryTexture},
	{"rings", (*Synthesizer).drawRings},
	{"label", (*Synthesizer).drawLabel},
	{"scanlines", (*Synthesizer).drawScanlines},
}

func (s *Synthesizer) renderStyled(label string) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	c := &canvas{img: img, pen: newPen(img), label: label}
	for _, st := range pipeline {
		if err := st.draw(s, c); err != nil {
			return nil, fmt.Errorf("%s stage: %w", st.name, err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Synthesizer) drawBackground(c *canvas) error {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	return nil
}

func (s *Synthesizer) drawNoise(c *canvas) error {
	for i := 0; i < noiseStrokes; i++ {
		x0, y0 := s.rnd.IntN(s.Width+1), s.rnd.IntN(s.Height+1)
		x1, y1 := s.rnd.IntN(s.Width+1), s.rnd.IntN(s.Height+1)
		col := color.RGBA{G: uint8(80 + s.rnd.IntN(41)), A: 255}
		c.pen.line(float64(x0), float64(y0), float64(x1), float64(y1), 1, col)
	}
	return nil
}

func (s *Synthesizer) drawBinaryTexture(c *canvas) error {
	face, err := s.face(glyphSize)
	if err != nil {
		return err
	}
	defer face.Close()

	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: c.img, Face: face}
	for i := 0; i < binaryGlyphs; i++ {
		x, y := s.rnd.IntN(s.Width+1), s.rnd.IntN(s.Height+1)
		glyph := "0"
		if s.rnd.IntN(2) == 1 {
			glyph = "1"
		}
		d.Src = image.NewUniform(color.RGBA{G: uint8(50 + s.rnd.IntN(51)), A: 255})
		d.Dot = fixed.P(x, y+ascent)
		d.DrawString(glyph)
	}
	return nil
}

// drawRings strokes concentric outlines from radius 50 down to 5, alternating
// between a bright and a dim band.
func (s *Synthesizer) drawRings(c *canvas) error {
	cx, cy := float64(s.Width/2), float64(s.Height/2)
	for i, r := 0, 50; r > 0; i, r = i+1, r-5 {
		g := 100 + s.rnd.IntN(26)
		if i%2 == 0 {
			g += 25
		}
		c.pen.ring(cx, cy, float64(r), 1, color.RGBA{G: uint8(g), A: 255})
	}
	return nil
}

func (s *Synthesizer) drawLabel(c *canvas) error {
	face, err := s.face(labelSize)
	if err != nil {
		return err
	}
	defer face.Close()

	m := face.Metrics()
	textW := font.MeasureString(face, c.label).Ceil()
	textH := (m.Ascent + m.Descent).Ceil()
	x := (s.Width - textW) / 2
	y := (s.Height-textH)/2 - labelLift + m.Ascent.Ceil()

	d := &font.Drawer{Dst: c.img, Face: face}
	text := func(dx, dy int, col color.Color) {
		d.Src = image.NewUniform(col)
		d.Dot = fixed.P(x+dx, y+dy)
		d.DrawString(c.label)
	}

	// inner glow
	for pass := 2; pass <= 20; pass += 2 {
		text(0, 0, color.RGBA{G: uint8(25 + pass*6), A: 255})
	}
	for _, off := range shadowOffsets {
		text(off.X, off.Y, shadowColor)
	}
	text(0, 0, labelColor)
	return nil
}

func (s *Synthesizer) drawScanlines(c *canvas) error {
	b := c.img.Bounds()
	overlay := image.NewNRGBA(b)
	line := image.NewUniform(scanlineColor)
	for y := b.Min.Y; y < b.Max.Y; y += scanlineStep {
		draw.Draw(overlay, image.Rect(b.Min.X, y, b.Max.X, y+1), line, image.Point{}, draw.Src)
	}
	draw.Draw(c.img, b, overlay, b.Min, draw.Over)
	return nil
}

func (s *Synthesizer) face(size float64) (font.Face, error) {
	if s.Faces == nil {
		return nil, fmt.Errorf("no face provider")
	}
	face, err := s.Faces.Face(size)
	if err != nil {
		return nil, fmt.Errorf("load %.0fpt face: %w", size, err)
	}
	return face, nil
}

// renderFallback draws the label in the built-in bitmap font on black.
func (s *Synthesizer) renderFallback(label string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	m := face.Metrics()
	textW := font.MeasureString(face, label).Ceil()
	textH := (m.Ascent + m.Descent).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P((s.Width-textW)/2, (s.Height-textH)/2+m.Ascent.Ceil()),
	}
	d.DrawString(label)

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		log.Printf("[ERROR] encode fallback png: %v", err)
		return blankPNG()
	}
	return buf.Bytes()
}

func blankPNG() []byte {
	buf := new(bytes.Buffer)
	_ = png.Encode(buf, image.NewGray(image.Rect(0, 0, 1, 1)))
	return buf.Bytes()
}
