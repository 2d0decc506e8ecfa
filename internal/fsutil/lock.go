package fsutil

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileLock is an advisory flock(2) held on a sidecar lock file.
type FileLock struct {
	f *os.File
}

// Lock blocks until an exclusive advisory lock on path+".lock" is held.
// Only cooperating processes that take the same lock are serialized.
func Lock(path string) (*FileLock, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock %s: %w", f.Name(), err)
	}
	return &FileLock{f: f}, nil
}

func (l *FileLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	defer l.f.Close()
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
