/*
Package mdl implements a reader for the PS2 StudioModel container
(.DOL) and its embedded texture table.

The container starts with a fixed-layout header of little-endian
fields. Three of them drive texture extraction: numtextures counts the
entries of an 80 byte stride record array at textureindex, and
texturedataindex locates the blob holding each texture's 1024 byte
color table followed by its pixel indices. Color tables are stored in
the GS CLUT bank layout and are reordered on decode.
*/
package mdl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io/ioutil"
	"math"
	"strconv"

	"github.com/bodgit/doltex/texture"
)

var (
	// ErrTruncatedHeader is returned when a header field's byte range
	// extends past the end of the buffer.
	ErrTruncatedHeader = errors.New("mdl: truncated header")

	// ErrOutOfRange is returned when a declared count or offset points
	// outside the buffer.
	ErrOutOfRange = errors.New("mdl: offset out of range")
)

type fieldKind int

const (
	kindUint32 fieldKind = iota
	kindVector
	kindString
)

func (k fieldKind) size() int {
	switch k {
	case kindVector:
		return 12
	case kindString:
		return nameLen
	default:
		return 4
	}
}

type field struct {
	name   string
	offset int
	kind   fieldKind
}

const nameLen = 64

// headerFields mirrors the studiohdr_t layout. Decode rules are data
// driven: unsigned 32-bit little-endian, three little-endian float32s
// rendered "x,y,z", or a NUL-terminated string of nameLen bytes.
var headerFields = []field{
	{"id", 0, kindUint32},
	{"version", 4, kindUint32},
	{"name", 8, kindString},
	{"length", 72, kindUint32},
	{"eyeposition", 76, kindVector},
	{"min", 88, kindVector},
	{"max", 100, kindVector},
	{"bbmin", 112, kindVector},
	{"bbmax", 124, kindVector},
	{"flags", 136, kindUint32},
	{"numbones", 140, kindUint32},
	{"boneindex", 144, kindUint32},
	{"numbonecontrollers", 148, kindUint32},
	{"bonecontrollerindex", 152, kindUint32},
	{"numhitboxes", 156, kindUint32},
	{"hitboxindex", 160, kindUint32},
	{"numseq", 164, kindUint32},
	{"seqindex", 168, kindUint32},
	{"numseqgroups", 172, kindUint32},
	{"seqgroupindex", 176, kindUint32},
	{"numtextures", 180, kindUint32},
	{"textureindex", 184, kindUint32},
	{"texturedataindex", 188, kindUint32},
	{"numskinref", 192, kindUint32},
	{"numskinfamilies", 196, kindUint32},
	{"skinindex", 200, kindUint32},
	{"numbodyparts", 204, kindUint32},
	{"bodypartindex", 208, kindUint32},
	{"numattachments", 212, kindUint32},
	{"attachmentindex", 216, kindUint32},
	{"soundtable", 220, kindUint32},
	{"soundindex", 224, kindUint32},
	{"soundgroups", 228, kindUint32},
	{"soundgroupindex", 232, kindUint32},
	{"numtransitions", 236, kindUint32},
	{"transitionindex", 240, kindUint32},
}

const (
	// Stride of one entry in the texture record array.
	textureStride = 80

	// Gap preceding each texture's color table within the data blob.
	textureDataPad = 32
)

// HeaderField is one decoded header entry with its rendered value.
type HeaderField struct {
	Name  string
	Value string
}

// Header holds the decoded container header. Fields preserves layout
// order for display; integer fields are also kept numerically for the
// offsets the texture table needs.
type Header struct {
	fields []HeaderField
	uints  map[string]uint32
}

// Fields returns the decoded header fields in layout order.
func (h *Header) Fields() []HeaderField {
	return h.fields
}

// Uint32 returns the numeric value of an integer header field.
func (h *Header) Uint32(name string) (uint32, bool) {
	v, ok := h.uints[name]
	return v, ok
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func parseHeader(data []byte) (*Header, error) {
	h := &Header{
		uints: make(map[string]uint32),
	}

	for _, f := range headerFields {
		if f.offset+f.kind.size() > len(data) {
			return nil, fmt.Errorf("%w: field %s needs bytes [%d, %d) of %d",
				ErrTruncatedHeader, f.name, f.offset, f.offset+f.kind.size(), len(data))
		}

		var value string
		switch f.kind {
		case kindUint32:
			v := binary.LittleEndian.Uint32(data[f.offset:])
			h.uints[f.name] = v
			value = strconv.FormatUint(uint64(v), 10)
		case kindVector:
			x := math.Float32frombits(binary.LittleEndian.Uint32(data[f.offset:]))
			y := math.Float32frombits(binary.LittleEndian.Uint32(data[f.offset+4:]))
			z := math.Float32frombits(binary.LittleEndian.Uint32(data[f.offset+8:]))
			value = fmt.Sprintf("%.2f,%.2f,%.2f", x, y, z)
		case kindString:
			value = cstring(data[f.offset : f.offset+nameLen])
		}

		h.fields = append(h.fields, HeaderField{f.name, value})
	}

	return h, nil
}

// Texture is one entry of the model's texture table. Offset is the
// absolute position of the texture's color table within the file.
type Texture struct {
	Name   string
	Flags  uint32
	Width  int
	Height int
	Offset int
}

// Model is a parsed container, sharing the underlying buffer with
// every decode without copying it.
type Model struct {
	data     []byte
	header   *Header
	textures []Texture
}

// Parse interprets data as a StudioModel container.
func Parse(data []byte) (*Model, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	num := header.uints["numtextures"]
	index := header.uints["textureindex"]
	dataIndex := header.uints["texturedataindex"]

	if int64(index)+int64(num)*textureStride > int64(len(data)) {
		return nil, fmt.Errorf("%w: %d texture records at %#x exceed %d bytes",
			ErrOutOfRange, num, index, len(data))
	}
	if int64(dataIndex) > int64(len(data)) {
		return nil, fmt.Errorf("%w: texture data at %#x exceeds %d bytes",
			ErrOutOfRange, dataIndex, len(data))
	}

	textures := make([]Texture, 0, num)
	offset := int(dataIndex) + textureDataPad
	for i := 0; i < int(num); i++ {
		base := int(index) + i*textureStride
		t := Texture{
			Name:   cstring(data[base : base+nameLen]),
			Flags:  binary.LittleEndian.Uint32(data[base+64:]),
			Width:  int(binary.LittleEndian.Uint32(data[base+68:])),
			Height: int(binary.LittleEndian.Uint32(data[base+72:])),
			Offset: offset,
		}
		textures = append(textures, t)
		offset += texture.PaletteBytes + textureDataPad + t.Width*t.Height
	}

	return &Model{
		data:     data,
		header:   header,
		textures: textures,
	}, nil
}

// Load reads the file at path into memory and parses it.
func Load(path string) (*Model, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Header returns the decoded container header.
func (m *Model) Header() *Header {
	return m.header
}

// Textures returns the texture table in array order.
func (m *Model) Textures() []Texture {
	return m.textures
}

// Image decodes texture i into a true-color image. The color table is
// reordered from the GS bank layout before the indices are resolved.
// A texture whose declared extent runs past the end of the file fails
// without affecting its siblings.
func (m *Model) Image(i int) (image.Image, error) {
	if i < 0 || i >= len(m.textures) {
		return nil, fmt.Errorf("%w: texture %d of %d", ErrOutOfRange, i, len(m.textures))
	}
	t := m.textures[i]

	if t.Offset < 0 || t.Offset+texture.PaletteBytes > len(m.data) {
		return nil, fmt.Errorf("texture %q: %w: color table at %#x exceeds %d bytes",
			t.Name, ErrOutOfRange, t.Offset, len(m.data))
	}

	// The declared extent must fit in what remains of the file. The
	// product of two uint32 dimensions needs 64 bits.
	avail := len(m.data) - t.Offset - texture.PaletteBytes
	if uint64(t.Width)*uint64(t.Height) > uint64(avail) {
		return nil, fmt.Errorf("texture %q: %w: %dx%d pixels at %#x exceed %d bytes",
			t.Name, ErrOutOfRange, t.Width, t.Height, t.Offset, len(m.data))
	}

	raw := texture.Reformat(m.data[t.Offset : t.Offset+texture.PaletteBytes])
	p, err := texture.Palette(raw)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", t.Name, err)
	}

	pm, err := texture.Decode(bytes.NewReader(m.data[t.Offset+texture.PaletteBytes:]), t.Width, t.Height, p)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", t.Name, err)
	}

	return texture.Flatten(pm)
}
