package fsutil

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrIntMissing = errors.New("integer file missing")
	ErrIntCorrupt = errors.New("integer file corrupt")
)

// ReadUint reads a single decimal integer from path. A trailing newline is
// optional. A missing file is ErrIntMissing and unparsable content is
// ErrIntCorrupt; neither is ever defaulted to zero.
func ReadUint(path string) (uint, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrIntMissing, path)
		}
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	text := strings.TrimSpace(string(blob))
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q", ErrIntCorrupt, path, text)
	}
	return uint(v), nil
}

// WriteUint replaces the content of path with v.
func WriteUint(path string, v uint) error {
	return AtomicWrite(path, []byte(strconv.FormatUint(uint64(v), 10)+"\n"), 0o644)
}

// UpdateUint stores (current+1) mod limit into path and returns the stored value.
func UpdateUint(path string, current, limit uint) (uint, error) {
	if limit == 0 {
		return 0, fmt.Errorf("update %s: limit must be positive", path)
	}
	next := (current + 1) % limit
	if err := WriteUint(path, next); err != nil {
		return 0, err
	}
	return next, nil
}
