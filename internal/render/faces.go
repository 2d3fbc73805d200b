package render

import (
	"errors"
	"fmt"
	"log"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// FaceProvider hands out font faces at a given point size.
type FaceProvider interface {
	Face(size float64) (font.Face, error)
}

// OpenTypeFaces serves faces from one parsed OpenType/TrueType font.
type OpenTypeFaces struct {
	font *opentype.Font
}

// LoadFaces parses the font at path. When path is empty or unusable the
// embedded Go Bold font is used instead.
func LoadFaces(path string) *OpenTypeFaces {
	if path != "" {
		f, err := parseFontFile(path)
		if err == nil {
			log.Printf("[INFO] render font loaded: %s", path)
			return &OpenTypeFaces{font: f}
		}
		log.Printf("[WARN] render font %s: %v, using embedded Go Bold", path, err)
	}
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		log.Printf("[ERROR] parse embedded font: %v", err)
		return &OpenTypeFaces{}
	}
	return &OpenTypeFaces{font: f}
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// Face returns a new face at size points and 72 DPI, so one point is one pixel.
func (p *OpenTypeFaces) Face(size float64) (font.Face, error) {
	if p == nil || p.font == nil {
		return nil, errors.New("no font loaded")
	}
	return opentype.NewFace(p.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
