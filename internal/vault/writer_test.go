package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmgvault/internal/logging"
)

func TestReadExisting_Missing(t *testing.T) {
	data, err := ReadExisting(filepath.Join(t.TempDir(), "nope.md"))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestReadExisting_EmptyFileIsNotMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	data, err := ReadExisting(path)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestWriteAtomic_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "a.md")
	require.NoError(t, WriteAtomic(path, []byte("one"), 0644))
	require.NoError(t, WriteAtomic(path, []byte("two"), 0644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteNote_PreservesUserContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.md")
	fresh := note("# N\n", "", "\n")

	res, err := WriteNote(path, fresh, false)
	require.NoError(t, err)
	assert.True(t, res.Created)

	edited := note("# N\n", "mine", "\n")
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))

	res, err = WriteNote(path, note("# N v2\n", "", "\n"), false)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, note("# N v2\n", "mine", "\n"), string(got))
	assert.Equal(t, Hash(got), res.Hash)
}

func TestWriteNote_SkipUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.md")
	fresh := note("# N\n", "", "")
	_, err := WriteNote(path, fresh, true)
	require.NoError(t, err)

	before, err := os.Stat(path)
	require.NoError(t, err)

	res, err := WriteNote(path, fresh, true)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, res.Created)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"a":1}`), 0644))

	hash, err := CopyFile(src, filepath.Join(dir, "out", "copy.json"))
	require.NoError(t, err)
	assert.Equal(t, Hash([]byte(`{"a":1}`)), hash)

	_, err = CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "x"))
	assert.Error(t, err)
}

func TestWriteNote_DamagedExistingLogsWarning(t *testing.T) {
	logs := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, logging.Initialize(logs, logging.Options{DebugMode: true, Level: "warn"}))
	t.Cleanup(func() {
		logging.CloseAll()
		_ = logging.Initialize(logs, logging.Options{})
	})

	path := filepath.Join(t.TempDir(), "N.md")
	require.NoError(t, os.WriteFile(path, []byte("markers deleted by hand"), 0644))
	res, err := WriteNote(path, note("# N\n", "", ""), true)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	logging.CloseAll()

	matches, err := filepath.Glob(filepath.Join(logs, "*_vault.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "custom region markers not found")
}
