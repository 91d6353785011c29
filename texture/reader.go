package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
)

var (
	// ErrTruncatedPixelData is returned when fewer than width*height
	// index bytes are available.
	ErrTruncatedPixelData = errors.New("texture: truncated pixel data")

	// ErrPaletteIndexOutOfRange is returned by Flatten when a pixel
	// references an entry beyond the end of the palette.
	ErrPaletteIndexOutOfRange = errors.New("texture: palette index out of range")

	errBadDimensions = errors.New("texture: invalid dimensions")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	width, height int
	palette       color.Palette

	image *image.Paletted
}

func (d *decoder) decode() error {
	if d.width <= 0 || d.height <= 0 {
		return fmt.Errorf("%w: %dx%d", errBadDimensions, d.width, d.height)
	}

	// Dimensions come from the file, so size the buffer in 64 bits;
	// the product can exceed the int range.
	need := uint64(d.width) * uint64(d.height)
	if need > math.MaxInt32 {
		return fmt.Errorf("%w: %dx%d", errBadDimensions, d.width, d.height)
	}

	// One byte per pixel, row-major, no packing.
	buf := make([]byte, int(need))
	if err := readFull(d.r, buf); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return fmt.Errorf("%w: need %d bytes", ErrTruncatedPixelData, len(buf))
	}

	d.image = image.NewPaletted(image.Rect(0, 0, d.width, d.height), d.palette)
	copy(d.image.Pix, buf)

	return nil
}

// Decode reads a width by height block of palette indices from r and
// returns it as an indexed image using the supplied palette. The index
// grid and its palette travel together in the returned image.
func Decode(r io.Reader, width, height int, p color.Palette) (*image.Paletted, error) {
	d := decoder{r: r, width: width, height: height, palette: p}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.image, nil
}

// Flatten resolves every index of m through its palette and returns
// the result as a true-color image. An index beyond the palette is an
// error rather than being wrapped around.
func Flatten(m *image.Paletted) (*image.RGBA, error) {
	b := m.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := m.ColorIndexAt(x, y)
			if int(i) >= len(m.Palette) {
				return nil, fmt.Errorf("%w: index %d at (%d, %d), palette has %d entries",
					ErrPaletteIndexOutOfRange, i, x, y, len(m.Palette))
			}
			out.Set(x, y, m.Palette[i])
		}
	}
	return out, nil
}
