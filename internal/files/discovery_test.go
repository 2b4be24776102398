package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	touch(t, dir, "b.xlsx", base.Add(2*time.Minute))
	touch(t, dir, "a.XLSX", base.Add(time.Minute))
	touch(t, dir, "macro.xlsm", base)
	touch(t, dir, "notes.txt", base)
	touch(t, dir, "~$b.xlsx", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	d := NewDiscovery(dir)
	found, err := d.FindWorkbooks(".")
	require.NoError(t, err)

	require.Len(t, found, 3)
	// Oldest first.
	assert.Equal(t, "macro.xlsm", found[0].Name)
	assert.Equal(t, "a.XLSX", found[1].Name)
	assert.Equal(t, "b.xlsx", found[2].Name)
}

func TestFindWorkbooks_MissingDir(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.FindWorkbooks("nope")
	assert.Error(t, err)
}

func TestFindWorkbooks_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "plan.xlsx", time.Now())

	d := NewDiscovery("/unrelated")
	found, err := d.FindWorkbooks(dir)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
