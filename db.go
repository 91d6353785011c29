package doltex

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// TextureDB is a sqlite-backed catalog of textures discovered across
// scanned binaries, keyed by the CRC of each record's raw bytes so
// the same texture embedded in several builds is stored once per
// file.
type TextureDB struct {
	db *sql.DB
}

// OpenDB opens or creates the catalog at file.
func OpenDB(file string) (*TextureDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS file (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS texture (id INTEGER PRIMARY KEY NOT NULL, file_id INTEGER NOT NULL, name TEXT NOT NULL, offset INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, crc TEXT NOT NULL, FOREIGN KEY(file_id) REFERENCES file(id))"); err != nil {
		return nil, err
	}

	return &TextureDB{
		db: db,
	}, nil
}

// Close closes the catalog.
func (db *TextureDB) Close() error {
	return db.db.Close()
}

func (db *TextureDB) addFile(path, sha string) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM file WHERE path = ?", path).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO file (path, sha1) VALUES (?, ?)", path, sha)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		if _, err := db.db.Exec("UPDATE file SET sha1 = ? WHERE id = ?", sha, id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, err
	}
}

// addTexture records one discovered texture, reporting whether it was
// new for this file.
func (db *TextureDB) addTexture(file int64, rec Record, crc string) (bool, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM texture WHERE file_id = ? AND crc = ?", file, crc).Scan(&id); err {
	case sql.ErrNoRows:
		if _, err := db.db.Exec("INSERT INTO texture (file_id, name, offset, width, height, crc) VALUES (?, ?, ?, ?, ?, ?)",
			file, rec.Name, rec.DataOffset, rec.Width, rec.Height, crc); err != nil {
			return false, err
		}
		return true, nil
	case nil:
		return false, nil
	default:
		return false, err
	}
}

// CatalogEntry is one cataloged texture with the file it came from.
type CatalogEntry struct {
	Path   string
	Name   string
	Offset int
	Width  int
	Height int
}

// FindTextureByCRC looks up a texture by the CRC of its record bytes.
// It returns nil without error when the catalog has no match.
func (db *TextureDB) FindTextureByCRC(crc string) (*CatalogEntry, error) {
	e := &CatalogEntry{}
	switch err := db.db.QueryRow("SELECT f.path, t.name, t.offset, t.width, t.height FROM texture AS t JOIN file AS f ON t.file_id = f.id WHERE t.crc = ?", crc).Scan(&e.Path, &e.Name, &e.Offset, &e.Width, &e.Height); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}
