/*
Package texture implements a decoder for the 8-bit indexed-color
texture blocks found in PS2-era game binaries.

Each texture is stored as a 1024 byte color table of 256 four-byte
RGBA entries followed by one byte per pixel, where every pixel byte is
an index into the color table. The alpha byte of each entry is unused.

Color tables uploaded to the PS2 Graphics Synthesizer are stored with
two of every four 8-entry banks exchanged. Reformat undoes that
interleave; buffers that were written out linearly need no correction.
*/
package texture

const (
	// PaletteColors is the number of entries in a color table.
	PaletteColors = 256

	paletteEntrySize = 4

	// PaletteBytes is the size of a raw color table block.
	PaletteBytes = PaletteColors * paletteEntrySize

	// GS CLUT bank interleave; offsets are within each repeating
	// 128 byte block of the raw color table.
	swizzleBlock = 0x20 * paletteEntrySize
	swizzleLo    = 0x10 * paletteEntrySize
	swizzleHi    = 0x18 * paletteEntrySize
	swizzleStep  = 0x08 * paletteEntrySize
)
