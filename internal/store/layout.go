package store

import (
	"errors"
	"fmt"
	"os"

	"crashprobe/internal/fsutil"
)

// EnsureLayout creates outdir and zero-valued counter files that do not
// exist yet. Existing counters are never touched. It returns the names of
// counters it created.
func EnsureLayout(outdir string) ([]string, error) {
	if outdir == "" {
		return nil, errors.New("DOC_LAYOUT: empty outdir")
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("DOC_LAYOUT: %w", err)
	}
	var created []string
	for _, name := range CounterFiles() {
		path := CounterPath(outdir, name)
		if fsutil.Exists(path) {
			continue
		}
		if err := fsutil.WriteUint(path, 0); err != nil {
			return created, fmt.Errorf("DOC_LAYOUT: init %s: %w", name, err)
		}
		created = append(created, name)
	}
	return created, nil
}
