package doltex

import (
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/doltex/mdl"
)

// Info parses the container at path and writes its header fields and
// texture table to w.
func (d *DolTex) Info(path string, w io.Writer) error {
	m, err := mdl.Load(path)
	if err != nil {
		return err
	}

	for _, f := range m.Header().Fields() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value); err != nil {
			return err
		}
	}

	for i, t := range m.Textures() {
		flags := ""
		if names := mdl.FlagNames(t.Flags); len(names) > 0 {
			flags = " " + strings.Join(names, ",")
		}
		if _, err := fmt.Fprintf(w, "%d: %s %dx%d %#x%s\n", i, t.Name, t.Width, t.Height, t.Offset, flags); err != nil {
			return err
		}
	}

	return nil
}

// Export writes texture index of the container at path to dir as an
// 8-bit PNG.
func (d *DolTex) Export(path string, index int, dir string, scale int) (string, error) {
	m, err := mdl.Load(path)
	if err != nil {
		return "", err
	}
	return m.ExportPNG(index, dir, scale)
}

// ExportAll writes every texture of the container at path to dir,
// skipping any that fail to decode. It returns the number saved along
// with the number declared so callers can report partial success.
func (d *DolTex) ExportAll(path, dir string, scale int) (int, int, error) {
	m, err := mdl.Load(path)
	if err != nil {
		return 0, 0, err
	}

	total := len(m.Textures())
	saved := 0
	for i := 0; i < total; i++ {
		if _, err := m.ExportPNG(i, dir, scale); err != nil {
			d.logger.Printf("%v\n", err)
			continue
		}
		saved++
	}

	return saved, total, nil
}
