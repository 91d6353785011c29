/*
Package doltex extracts indexed-color textures from PS2-era game
binaries and StudioModel (.DOL) containers.

Two pipelines share the texture codec. The marker scan locates
texture records inside an undifferentiated binary by their name
prefix and data sentinel and writes them out as indexed BMPs. The
fixed-header pipeline walks the texture table a StudioModel container
declares and exports adaptive 8-bit PNGs.
*/
package doltex

import "log"

// DolTex holds the state shared by one decode session: an optional
// texture catalog and the logger every operation reports through.
type DolTex struct {
	db     *TextureDB
	logger *log.Logger
}

// New returns a session using the given catalog and logger. The
// catalog may be nil for operations that do not record textures.
func New(db *TextureDB, logger *log.Logger) *DolTex {
	return &DolTex{
		db:     db,
		logger: logger,
	}
}
