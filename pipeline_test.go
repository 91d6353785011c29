package doltex

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	var buf []byte
	buf = appendRecord(buf, "psx_one", 2, 2, 1)

	dir := t.TempDir()
	sub := filepath.Join(dir, "models")
	require.NoError(t, os.Mkdir(sub, 0755))

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.dol"), buf, 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(sub, "b.DOL"), buf, 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(sub, "notes.txt"), []byte("skip me"), 0644))

	d := New(nil, testLogger())

	require.NoError(t, d.Batch(dir))

	assert.FileExists(t, filepath.Join(dir, "psx_one.bmp"))
	assert.FileExists(t, filepath.Join(sub, "psx_one.bmp"))
}
