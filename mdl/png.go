package mdl

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/doltex/texture"
	"github.com/ericpauley/go-quantize/quantize"
)

// pngName derives the output filename for texture i: the stored name
// lowercased with any ".bmp" suffix stripped, or a positional
// fallback for unnamed entries.
func pngName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("texture_%d", i)
	}
	return strings.TrimSuffix(strings.ToLower(name), ".bmp") + ".png"
}

// ExportPNG writes texture i to dir as an 8-bit PNG, re-quantizing
// the flattened image back down to an adaptive 256 color palette. A
// scale factor above one enlarges the image before quantizing. It
// returns the path written.
func (m *Model) ExportPNG(i int, dir string, scale int) (string, error) {
	img, err := m.Image(i)
	if err != nil {
		return "", err
	}

	img = texture.Scale(img, scale)

	q := quantize.MedianCutQuantizer{}
	b := img.Bounds()
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, texture.PaletteColors), img))
	draw.Draw(pm, b, img, b.Min, draw.Src)

	path := filepath.Join(dir, pngName(m.textures[i].Name, i))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := png.Encode(f, pm); err != nil {
		f.Close()
		return "", err
	}

	return path, f.Close()
}
