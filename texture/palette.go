package texture

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrTruncatedPalette is returned when a color table block is shorter
// than PaletteBytes.
var ErrTruncatedPalette = errors.New("texture: truncated palette data")

// Palette extracts a 256 color palette from a raw color table block.
// Each entry keeps the first three bytes as R, G and B; the fourth
// byte is discarded and the returned colors are fully opaque.
func Palette(b []byte) (color.Palette, error) {
	if len(b) < PaletteBytes {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedPalette, len(b), PaletteBytes)
	}

	p := make(color.Palette, PaletteColors)
	for i := range p {
		q := b[i*paletteEntrySize:]
		p[i] = color.RGBA{q[0], q[1], q[2], 0xff}
	}
	return p, nil
}

// Reformat reorders a raw color table from the GS CLUT bank layout
// into linear index order. Within every 128 byte block the bytes at
// offsets [64, 96) are exchanged with the bytes 32 positions earlier.
// The permutation is its own inverse so applying it twice restores
// the input. The input slice is not modified.
func Reformat(b []byte) []byte {
	p := append(b[:0:0], b...)
	for i := range p {
		if r := i % swizzleBlock; r >= swizzleLo && r < swizzleHi {
			p[i], p[i-swizzleStep] = p[i-swizzleStep], p[i]
		}
	}
	return p
}
