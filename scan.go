package doltex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/doltex/texture"
	"golang.org/x/image/bmp"
)

// DefaultNamePrefix is the marker preceding texture names in the
// binaries this package was written against. Other builds of the same
// engine use different prefixes so it is a parameter of Scan rather
// than a constant.
var DefaultNamePrefix = []byte("psx_")

// dataSentinel marks the start of a texture data block. The color
// table begins at the sentinel itself; its four bytes double as
// palette entry 0.
var dataSentinel = []byte{0xff, 0xff, 0xff, 0x80}

const (
	// A name runs until three consecutive zero bytes.
	nameTerminator = 3

	// Width and height as uint16 little-endian, stored in the four
	// bytes immediately before the data sentinel.
	sizePatternLen = 4

	// Names with this suffix are embedded sibling filenames, not
	// textures.
	siblingSuffix = ".BMP"
)

// Record describes one texture located by the marker scan. Offsets
// are absolute indices into the scanned buffer. End is the offset of
// the next name marker after the data block, or the buffer length for
// the final record; records carry no explicit length so their extent
// is inferred from the position of the next one.
type Record struct {
	Name       string
	NameOffset int
	DataOffset int
	End        int
	Width      int
	Height     int
}

// Result is the per-record outcome of a decode. A failed record never
// aborts its siblings; callers inspect Err to report partial success.
type Result struct {
	Record
	Image *image.Paletted
	Err   error
}

func findNext(data, pattern []byte, from int) int {
	if from < 0 {
		from = 0
	}
	if from >= len(data) {
		return -1
	}
	i := bytes.Index(data[from:], pattern)
	if i < 0 {
		return -1
	}
	return from + i
}

// readName extends the name starting at off until three consecutive
// zero bytes or the end of the buffer, replacing any embedded NUL
// with an underscore to keep the string filesystem-safe. It returns
// the sanitized name and the offset just past it.
func readName(data []byte, off int) (string, int) {
	end := off
	for end+nameTerminator < len(data) && !isZeroRun(data[end:end+nameTerminator]) {
		end++
	}

	name := append([]byte(nil), data[off:end]...)
	for i, c := range name {
		if c == 0 {
			name[i] = '_'
		}
	}
	return string(name), end
}

func isZeroRun(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Scan enumerates the texture records in data, in offset order. A nil
// or empty prefix scans for DefaultNamePrefix. Exhausting the buffer
// ends the enumeration; it is not an error, so a buffer with no
// markers yields zero records.
func Scan(data, prefix []byte) []Record {
	if len(prefix) == 0 {
		prefix = DefaultNamePrefix
	}

	var records []Record

	start := 0
	for start < len(data) {
		nameStart := findNext(data, prefix, start)
		if nameStart < 0 {
			break
		}

		name, nameEnd := readName(data, nameStart)

		if strings.HasSuffix(name, siblingSuffix) {
			// A neighbouring asset's filename, not pixel data.
			start = nameEnd
			continue
		}

		dataStart := findNext(data, dataSentinel, nameEnd)
		if dataStart < 0 {
			break
		}

		rec := Record{
			Name:       name,
			NameOffset: nameStart,
			DataOffset: dataStart,
			End:        len(data),
		}

		if next := findNext(data, prefix, dataStart+len(dataSentinel)); next >= 0 {
			rec.End = next
		}

		if dataStart >= sizePatternLen {
			rec.Width = int(binary.LittleEndian.Uint16(data[dataStart-4:]))
			rec.Height = int(binary.LittleEndian.Uint16(data[dataStart-2:]))
		}

		records = append(records, rec)
		start = nameEnd
	}

	return records
}

// decodeRecord decodes the palette and pixel indices of one record.
// The color table is flat RGBA here; only the fixed-header container
// stores it in the GS bank layout.
func decodeRecord(data []byte, rec Record) (*image.Paletted, error) {
	block := data[rec.DataOffset:rec.End]

	p, err := texture.Palette(block)
	if err != nil {
		return nil, fmt.Errorf("record %q at %#x: %w", rec.Name, rec.DataOffset, err)
	}

	// Reject declared dimensions that exceed the record before
	// allocating for them.
	if int64(rec.Width)*int64(rec.Height) > int64(len(block)-texture.PaletteBytes) {
		return nil, fmt.Errorf("record %q at %#x: %w: %dx%d pixels, %d bytes left",
			rec.Name, rec.DataOffset, texture.ErrTruncatedPixelData,
			rec.Width, rec.Height, len(block)-texture.PaletteBytes)
	}

	m, err := texture.Decode(bytes.NewReader(block[texture.PaletteBytes:]), rec.Width, rec.Height, p)
	if err != nil {
		return nil, fmt.Errorf("record %q at %#x: %w", rec.Name, rec.DataOffset, err)
	}

	return m, nil
}

// Extract scans data for texture records and decodes each one,
// returning one Result per record in discovery order.
func (d *DolTex) Extract(data, prefix []byte) []Result {
	records := Scan(data, prefix)

	results := make([]Result, len(records))
	for i, rec := range records {
		m, err := decodeRecord(data, rec)
		if err != nil {
			d.logger.Printf("%v\n", err)
		}
		results[i] = Result{Record: rec, Image: m, Err: err}
	}

	return results
}

// ExtractFile reads the binary at path and writes one 8-bit indexed
// BMP per decoded texture into dir, named after the sanitized texture
// name. A scale factor above one enlarges each image by replicating
// indices, keeping the output indexed. It returns the number of
// textures saved along with the number discovered; a record that
// fails to decode is skipped, not fatal.
func (d *DolTex) ExtractFile(path, dir string, prefix []byte, scale int) (int, int, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}

	results := d.Extract(data, prefix)

	saved := 0
	for _, res := range results {
		if res.Err != nil {
			continue
		}

		f, err := os.Create(filepath.Join(dir, res.Name+".bmp"))
		if err != nil {
			return saved, len(results), err
		}

		if err := bmp.Encode(f, texture.ScalePaletted(res.Image, scale)); err != nil {
			f.Close()
			return saved, len(results), err
		}

		if err := f.Close(); err != nil {
			return saved, len(results), err
		}

		saved++
	}

	return saved, len(results), nil
}
