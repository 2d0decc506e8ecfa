package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadUint(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		want    uint
		wantErr error
	}{
		{name: "plain", content: "7", want: 7},
		{name: "newline", content: "42\n", want: 42},
		{name: "garbage", content: "abc", wantErr: ErrIntCorrupt},
		{name: "negative", content: "-1", wantErr: ErrIntCorrupt},
		{name: "empty", content: "", wantErr: ErrIntCorrupt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("seed: %v", err)
			}
			got, err := ReadUint(path)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadUint: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadUint_Missing(t *testing.T) {
	_, err := ReadUint(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrIntMissing) {
		t.Fatalf("err = %v, want ErrIntMissing", err)
	}
}

func TestUpdateUintWraps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	next, err := UpdateUint(path, 9, 10)
	if err != nil {
		t.Fatalf("UpdateUint: %v", err)
	}
	if next != 0 {
		t.Fatalf("next = %d, want 0", next)
	}
	got, err := ReadUint(path)
	if err != nil || got != 0 {
		t.Fatalf("persisted = %d, %v; want 0", got, err)
	}
	if _, err := UpdateUint(path, 1, 0); err == nil {
		t.Fatalf("expected error for zero limit")
	}
}

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	l, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	// lock is reacquirable after release
	l, err = Lock(path)
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	_ = l.Unlock()
	var nilLock *FileLock
	if err := nilLock.Unlock(); err != nil {
		t.Fatalf("nil unlock: %v", err)
	}
}
