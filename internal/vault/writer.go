package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fmgvault/internal/logging"
)

// ReadExisting returns the current contents of path, or nil when it does not exist.
func ReadExisting(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// WriteAtomic replaces path with data through a temporary file in the same
// directory, so readers never observe a partial note.
func WriteAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// WriteResult describes one note write.
type WriteResult struct {
	Path    string
	Hash    string
	Bytes   int
	Changed bool
	Created bool
}

// Hash returns the hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteNote merges fresh with whatever sits at path and writes the result.
// With skipUnchanged, a byte-identical note is left untouched.
func WriteNote(path, fresh string, skipUnchanged bool) (WriteResult, error) {
	existing, err := ReadExisting(path)
	if err != nil {
		return WriteResult{Path: path}, err
	}
	if existing != nil {
		if _, perr := ParseDocument(string(existing)); perr != nil {
			logging.VaultWarn("%s: custom region markers not found, existing content replaced", path)
		}
	}
	merged, err := Merge(existing, fresh)
	if err != nil {
		return WriteResult{Path: path}, fmt.Errorf("%s: %w", path, err)
	}
	out := []byte(merged)
	res := WriteResult{
		Path:    path,
		Hash:    Hash(out),
		Bytes:   len(out),
		Created: existing == nil,
		Changed: !bytes.Equal(existing, out),
	}
	if skipUnchanged && !res.Changed && !res.Created {
		return res, nil
	}
	if err := WriteAtomic(path, out, 0644); err != nil {
		logging.VaultError("%v", err)
		return res, err
	}
	return res, nil
}

// CopyFile copies src to dst atomically and returns the hash of the copy.
func CopyFile(src, dst string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := WriteAtomic(dst, data, 0644); err != nil {
		return "", err
	}
	return Hash(data), nil
}
