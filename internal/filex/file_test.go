package filex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "content", "images")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	again, err := EnsureDir(want)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEnsureDir_FailsWhenFileInTheWay(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "images")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(blocker)
	require.Error(t, err)
}

func TestWriteNew_WritesAndRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")

	require.NoError(t, WriteNew(path, []byte("first"), 0o640))

	err := WriteNew(path, []byte("second"), 0o640)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(b), "existing file must be left intact")
}

func TestWriteNew_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "a.jpg")
	err := WriteNew(path, []byte("x"), 0o640)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrExists))
}

func TestWriteFileAtomic_ReplacesContentAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"v":1}`), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"v":2}`), 0o600))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "ledger.json", entries[0].Name())
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "l.json"), []byte("x"), 0o600)
	require.Error(t, err)
}

func TestReadFileIfExists(t *testing.T) {
	dir := t.TempDir()

	b, ok, err := ReadFileIfExists(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, b)

	path := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o600))
	b, ok, err = ReadFileIfExists(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", string(b))
}
