package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// PartialSuffix marks an artifact that is still being written.
const PartialSuffix = ".partial"

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Fingerprint returns the size and hex SHA256 digest of path.
func Fingerprint(path string) (int64, string, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer in.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, in)
	if err != nil {
		return 0, "", fmt.Errorf("hash %s: %w", path, err)
	}
	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Size returns the byte size of path.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// WriteAtomic runs write against path+".partial" and renames it over path
// once write and close succeed. The partial file is removed on failure.
func WriteAtomic(path string, write func(partial string) error) error {
	partial := path + PartialSuffix
	_ = os.Remove(partial)
	if err := write(partial); err != nil {
		_ = os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

// RemoveArtifact deletes path together with tool companion files that share
// its name as a prefix (path.index, path.dbtype, path_h, path.partial, ...).
// Missing files are not an error.
func RemoveArtifact(path string) ([]string, error) {
	matches, err := filepath.Glob(path + "*")
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, match := range matches {
		if match != path && !isCompanion(path, match) {
			continue
		}
		if err := os.RemoveAll(match); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", match, err)
		}
		removed = append(removed, match)
	}
	return removed, nil
}

func isCompanion(base, candidate string) bool {
	if len(candidate) <= len(base) {
		return false
	}
	switch candidate[len(base)] {
	case '.', '_':
		return true
	}
	return false
}
