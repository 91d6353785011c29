package mdl

import (
	"encoding/binary"
	"image/color"
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"

	"github.com/bodgit/doltex/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTextureIndex     = 0x100
	testTextureDataIndex = 0x200
)

// buildModel assembles a minimal container holding the given textures
// back to back at testTextureDataIndex.
func buildModel(t *testing.T, textures []Texture, pix [][]byte) []byte {
	t.Helper()

	size := testTextureDataIndex
	for i := range textures {
		size += textureDataPad + texture.PaletteBytes + len(pix[i])
	}
	data := make([]byte, size)

	binary.LittleEndian.PutUint32(data[0:], 0x54534449) // "IDST"
	binary.LittleEndian.PutUint32(data[4:], 10)
	copy(data[8:], "test.dol")
	binary.LittleEndian.PutUint32(data[76:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(data[80:], math.Float32bits(-2))
	binary.LittleEndian.PutUint32(data[84:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(data[180:], uint32(len(textures)))
	binary.LittleEndian.PutUint32(data[184:], testTextureIndex)
	binary.LittleEndian.PutUint32(data[188:], testTextureDataIndex)

	offset := testTextureDataIndex + textureDataPad
	for i, tex := range textures {
		base := testTextureIndex + i*textureStride
		copy(data[base:], tex.Name)
		binary.LittleEndian.PutUint32(data[base+64:], tex.Flags)
		binary.LittleEndian.PutUint32(data[base+68:], uint32(tex.Width))
		binary.LittleEndian.PutUint32(data[base+72:], uint32(tex.Height))

		// Identity color table; entries below 8 within each bank
		// block are unaffected by the CLUT reordering.
		for j := 0; j < texture.PaletteColors; j++ {
			data[offset+j*4+0] = byte(j)
			data[offset+j*4+1] = byte(j)
			data[offset+j*4+2] = byte(j)
		}
		copy(data[offset+texture.PaletteBytes:], pix[i])

		offset += texture.PaletteBytes + textureDataPad + len(pix[i])
	}

	return data
}

func TestParseHeader(t *testing.T) {
	data := buildModel(t, []Texture{{Name: "A.BMP", Width: 2, Height: 2}}, [][]byte{make([]byte, 4)})

	m, err := Parse(data)
	require.NoError(t, err)

	fields := m.Header().Fields()
	require.Len(t, fields, len(headerFields))
	assert.Equal(t, HeaderField{"version", "10"}, fields[1])
	assert.Equal(t, HeaderField{"name", "test.dol"}, fields[2])
	assert.Equal(t, HeaderField{"eyeposition", "1.50,-2.00,0.25"}, fields[4])

	v, ok := m.Header().Uint32("numtextures")
	require.True(t, ok)
	assert.Equal(t, uint32(1), v)
}

func TestParseTruncatedHeader(t *testing.T) {
	_, err := Parse(make([]byte, 100))
	assert.ErrorIs(t, err, ErrTruncatedHeader)
}

func TestParseOutOfRange(t *testing.T) {
	data := buildModel(t, []Texture{{Name: "A.BMP", Width: 2, Height: 2}}, [][]byte{make([]byte, 4)})
	binary.LittleEndian.PutUint32(data[180:], 100000)

	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestTextures(t *testing.T) {
	data := buildModel(t, []Texture{
		{Name: "FIRST.BMP", Flags: FlagChrome | FlagAdditive, Width: 4, Height: 2},
		{Name: "SECOND.BMP", Width: 2, Height: 2},
	}, [][]byte{make([]byte, 8), make([]byte, 4)})

	m, err := Parse(data)
	require.NoError(t, err)

	textures := m.Textures()
	require.Len(t, textures, 2)

	assert.Equal(t, "FIRST.BMP", textures[0].Name)
	assert.Equal(t, 4, textures[0].Width)
	assert.Equal(t, 2, textures[0].Height)
	assert.Equal(t, []string{"chrome", "additive"}, FlagNames(textures[0].Flags))
	assert.Equal(t, testTextureDataIndex+textureDataPad, textures[0].Offset)

	// The second blob starts after the first one's color table, pad
	// and pixels.
	assert.Equal(t, textures[0].Offset+texture.PaletteBytes+textureDataPad+8, textures[1].Offset)
}

func TestImage(t *testing.T) {
	pix := []byte{1, 2, 3, 4}
	data := buildModel(t, []Texture{{Name: "A.BMP", Width: 2, Height: 2}}, [][]byte{pix})

	m, err := Parse(data)
	require.NoError(t, err)

	img, err := m.Image(0)
	require.NoError(t, err)

	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, color.RGBA{1, 1, 1, 255}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)})
}

func TestImageOutOfRange(t *testing.T) {
	data := buildModel(t, []Texture{{Name: "A.BMP", Width: 2, Height: 2}}, [][]byte{make([]byte, 4)})

	m, err := Parse(data)
	require.NoError(t, err)

	_, err = m.Image(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestImageHostileDimensions(t *testing.T) {
	// A texture record declaring the maximum uint32 in both
	// dimensions must fail the bounds check, not allocate for the
	// overflowed product.
	data := buildModel(t, []Texture{{Name: "A.BMP", Width: 2, Height: 2}}, [][]byte{make([]byte, 4)})
	binary.LittleEndian.PutUint32(data[testTextureIndex+68:], 0xffffffff)
	binary.LittleEndian.PutUint32(data[testTextureIndex+72:], 0xffffffff)

	m, err := Parse(data)
	require.NoError(t, err)

	_, err = m.Image(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestImageTruncatedSibling(t *testing.T) {
	// The second texture declares more pixels than the file holds;
	// it fails while the first still decodes.
	data := buildModel(t, []Texture{
		{Name: "GOOD.BMP", Width: 2, Height: 2},
		{Name: "BAD.BMP", Width: 64, Height: 64},
	}, [][]byte{make([]byte, 4), make([]byte, 16)})

	m, err := Parse(data)
	require.NoError(t, err)

	_, err = m.Image(0)
	assert.NoError(t, err)

	_, err = m.Image(1)
	assert.ErrorIs(t, err, texture.ErrTruncatedPixelData)
}

func TestPngName(t *testing.T) {
	assert.Equal(t, "crate.png", pngName("CRATE.BMP", 0))
	assert.Equal(t, "glass.png", pngName("glass", 3))
	assert.Equal(t, "texture_3.png", pngName("", 3))
}

func TestExportPNG(t *testing.T) {
	data := buildModel(t, []Texture{{Name: "A.BMP", Width: 2, Height: 2}}, [][]byte{{1, 2, 3, 4}})

	dir := t.TempDir()
	file := filepath.Join(dir, "model.dol")
	require.NoError(t, ioutil.WriteFile(file, data, 0644))

	m, err := Load(file)
	require.NoError(t, err)

	path, err := m.ExportPNG(0, dir, 2)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a.png"), path)
	assert.FileExists(t, path)
}
