package texture

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Scale enlarges m by an integer factor using nearest neighbor
// sampling, keeping the hard pixel edges of the source art. Factors
// below two return m unchanged.
func Scale(m image.Image, factor int) image.Image {
	if factor <= 1 {
		return m
	}
	b := m.Bounds()
	return transform.Resize(m, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor)
}

// ScalePaletted enlarges an indexed image by an integer factor,
// replicating indices so the image keeps its palette and stays 8-bit.
// Factors below two return m unchanged.
func ScalePaletted(m *image.Paletted, factor int) *image.Paletted {
	if factor <= 1 {
		return m
	}
	b := m.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor), m.Palette)
	for y := 0; y < out.Rect.Max.Y; y++ {
		for x := 0; x < out.Rect.Max.X; x++ {
			out.SetColorIndex(x, y, m.ColorIndexAt(b.Min.X+x/factor, b.Min.Y+y/factor))
		}
	}
	return out
}
