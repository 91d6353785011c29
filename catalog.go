package doltex

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"hash/crc32"
	"io/ioutil"
	"path/filepath"
)

// recordCRC identifies a texture by its raw record bytes, sentinel
// through end of record, rendered the same way the catalog stores it.
func recordCRC(b []byte) string {
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE(b))
}

// Catalog scans the binary at path and records every discovered
// texture in the session's catalog, returning the number of new
// entries.
func (d *DolTex) Catalog(path string, prefix []byte) (int, error) {
	if d.db == nil {
		return 0, errors.New("no catalog database")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	data, err := ioutil.ReadFile(abs)
	if err != nil {
		return 0, err
	}

	file, err := d.db.addFile(abs, fmt.Sprintf("%X", sha1.Sum(data)))
	if err != nil {
		return 0, err
	}

	added := 0
	for _, rec := range Scan(data, prefix) {
		ok, err := d.db.addTexture(file, rec, recordCRC(data[rec.DataOffset:rec.End]))
		if err != nil {
			return added, err
		}
		if ok {
			added++
		} else {
			d.logger.Printf("Already cataloged \"%s\" at %#x\n", rec.Name, rec.DataOffset)
		}
	}

	return added, nil
}
