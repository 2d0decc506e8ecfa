// Package reboot tells whether the device rebooted since the last check by
// comparing the kernel boot id with the copy persisted under the crashlog
// outdir.
package reboot

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"crashprobe/internal/config"
	"crashprobe/internal/fsutil"
	"crashprobe/internal/store"
)

type Reason int

const (
	ReasonNoSender Reason = iota + 1
	ReasonBootIDUnreadable
	ReasonRecordUnreadable
)

func (r Reason) String() string {
	switch r {
	case ReasonNoSender:
		return "sender not configured"
	case ReasonBootIDUnreadable:
		return "boot id unreadable"
	case ReasonRecordUnreadable:
		return "boot id record unreadable"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// CheckError says why a check could not be completed. HasRebooted turns every
// CheckError into "rebooted".
type CheckError struct {
	Reason Reason
	Path   string
	Err    error
}

func (e *CheckError) Error() string {
	msg := e.Reason.String()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CheckError) Unwrap() error { return e.Err }

type Registry interface {
	Lookup(name string) (outdir, maxdirs string, ok bool)
}

type Detector struct {
	Registry Registry
	// BootIDPath defaults to config.DefaultBootIDPath.
	BootIDPath string
	Logger     *slog.Logger
}

// HasRebooted reports whether the kernel boot id differs from the recorded
// one. It fails open: any error counts as a reboot, so a real reboot is never
// missed at the cost of an occasional re-baseline.
func (d *Detector) HasRebooted() bool {
	changed, err := d.Check()
	if err != nil {
		d.logger().Warn("boot id check failed, assuming reboot", "error", err)
		return true
	}
	return changed
}

// Check compares the current boot id with the record and rewrites the record
// when they differ or no record exists yet.
func (d *Detector) Check() (bool, error) {
	if d.Registry == nil {
		return true, &CheckError{Reason: ReasonNoSender}
	}
	outdir, _, ok := d.Registry.Lookup(config.SenderCrashlog)
	if !ok {
		return true, &CheckError{Reason: ReasonNoSender}
	}

	src := d.bootIDPath()
	current, err := fsutil.ReadFile(src)
	if err != nil {
		return true, &CheckError{Reason: ReasonBootIDUnreadable, Path: src, Err: err}
	}
	if len(current) == 0 {
		return true, &CheckError{Reason: ReasonBootIDUnreadable, Path: src, Err: errors.New("empty")}
	}

	recordPath := store.BootIDRecordPath(outdir)
	if fsutil.Exists(recordPath) {
		previous, err := fsutil.ReadFile(recordPath)
		if err != nil || len(previous) == 0 {
			if err == nil {
				err = errors.New("empty")
			}
			// The record is left untouched for inspection.
			return true, &CheckError{Reason: ReasonRecordUnreadable, Path: recordPath, Err: err}
		}
		if bytes.Equal(previous, current) {
			return false, nil
		}
	}

	if err := fsutil.Overwrite(recordPath, current); err != nil {
		d.logger().Error("persist boot id", "path", recordPath, "error", err)
	}
	return true, nil
}

func (d *Detector) bootIDPath() string {
	if d.BootIDPath != "" {
		return d.BootIDPath
	}
	return config.DefaultBootIDPath
}

func (d *Detector) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// IsCheckError reports whether err came from an incomplete check.
func IsCheckError(err error) bool {
	var ce *CheckError
	return errors.As(err, &ce)
}

