// Package download writes exported summaries to disk the way a browser
// download would: server names are sanitized and never overwrite.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadFilename is returned when nothing usable is left after sanitizing
var ErrBadFilename = errors.New("unusable filename")

// DefaultDir returns ~/Downloads, falling back to the working directory
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Sanitize strips directories and characters that are unsafe on common
// filesystems from a server provided filename
func Sanitize(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	return name, nil
}

// WriteFile writes data to path through a temp file and rename
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".rinktally-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// UniquePath returns dir/name, or dir/"name (n).ext" when taken
func UniquePath(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
	}
}

// DirSaver saves every export into one directory without prompting
type DirSaver struct {
	Dir string
}

// Save writes data under a sanitized, non-clashing name
func (s DirSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	name, err := Sanitize(filename)
	if err != nil {
		return "", err
	}

	dir := s.Dir
	if dir == "" {
		dir = DefaultDir()
	}

	path := UniquePath(dir, name)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
