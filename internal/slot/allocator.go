// Package slot reserves numbered storage slots per log category and creates
// the slot directories that event artifacts are written into.
//
// Each category keeps a counter file under the crashlog sender's outdir. A
// reservation returns the stored value and persists (value+1) mod maxdirs, so
// indices cycle through [0, maxdirs). Old slots are reused once the ring wraps;
// cleaning them up is the caller's job.
//
// The read/update pair is serialized with an advisory flock on a sidecar
// <counter>.lock file. Writers that do not take that lock are not protected.
package slot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"crashprobe/internal/config"
	"crashprobe/internal/fsutil"
	"crashprobe/internal/store"
)

var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrConfigMissing      = errors.New("sender config missing")
	ErrCounterFileMissing = errors.New("counter file missing")
	ErrCounterCorrupt     = errors.New("counter file corrupt")
	ErrLimitInvalid       = errors.New("invalid slot limit")
	ErrAllocation         = errors.New("slot allocation failed")
	ErrDirCreate          = errors.New("slot directory create failed")
)

// AlertDirCreate is the history event raised when a slot directory cannot
// be created.
const AlertDirCreate = "DIR CREATE"

type Registry interface {
	Lookup(name string) (outdir, maxdirs string, ok bool)
}

type Alerter interface {
	RaiseInfoError(kind string) error
}

type Reservation struct {
	Root  string
	Index uint
}

type Allocator struct {
	Registry Registry
	Alerts   Alerter
	Logger   *slog.Logger
	// Sender defaults to the crashlog sender.
	Sender string
}

func (a *Allocator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Allocator) sender() string {
	if a.Sender != "" {
		return a.Sender
	}
	return config.SenderCrashlog
}

// Reserve hands out the next slot index for cat and advances its counter.
func (a *Allocator) Reserve(cat Category) (Reservation, error) {
	meta, ok := categories[cat]
	if !ok {
		a.logger().Warn("invalid log category", "category", int(cat))
		return Reservation{}, fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
	}
	if a.Registry == nil {
		return Reservation{}, fmt.Errorf("%w: no registry", ErrConfigMissing)
	}
	outdir, rawMax, ok := a.Registry.Lookup(a.sender())
	if !ok {
		return Reservation{}, fmt.Errorf("%w: sender %q", ErrConfigMissing, a.sender())
	}

	counter := store.CounterPath(outdir, meta.counter)
	if !fsutil.Exists(counter) {
		a.logger().Error("counter file missing", "category", cat.String(), "path", counter)
		return Reservation{}, fmt.Errorf("%w: %s", ErrCounterFileMissing, counter)
	}
	lock, err := fsutil.Lock(counter)
	if err != nil {
		return Reservation{}, fmt.Errorf("lock %s: %w", counter, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			a.logger().Warn("release counter lock", "path", counter, "error", err)
		}
	}()

	current, err := fsutil.ReadUint(counter)
	if err != nil {
		a.logger().Error("read counter", "category", cat.String(), "path", counter, "error", err)
		switch {
		case errors.Is(err, fsutil.ErrIntMissing):
			return Reservation{}, fmt.Errorf("%w: %w", ErrCounterFileMissing, err)
		case errors.Is(err, fsutil.ErrIntCorrupt):
			return Reservation{}, fmt.Errorf("%w: %w", ErrCounterCorrupt, err)
		}
		return Reservation{}, err
	}

	maxdirs, err := parseLimit(rawMax)
	if err != nil {
		a.logger().Error("parse maxcrashdirs", "sender", a.sender(), "value", rawMax)
		return Reservation{}, err
	}
	index := current
	if current >= maxdirs {
		// The limit was lowered under a stored counter. Wrap it back into
		// the ring; the write below brings the file in range as well.
		index = current % maxdirs
		a.logger().Warn("counter beyond limit, wrapping", "path", counter, "value", current, "maxdirs", maxdirs, "index", index)
	}

	if _, err := fsutil.UpdateUint(counter, index, maxdirs); err != nil {
		a.logger().Error("update counter", "path", counter, "error", err)
		return Reservation{}, fmt.Errorf("update %s: %w", counter, err)
	}
	return Reservation{Root: store.SlotRoot(outdir, meta.prefix), Index: index}, nil
}

// CreateDir reserves a slot for cat and creates <root><index>_<eventID>.
// A failed mkdir also raises a DIR CREATE history alert.
func (a *Allocator) CreateDir(cat Category, eventID string) (string, error) {
	res, err := a.Reserve(cat)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	p, err := NewPath(res.Root, res.Index, eventID)
	if err != nil {
		a.logger().Error("construct slot path", "root", res.Root, "index", res.Index, "error", err)
		a.alert()
		return "", fmt.Errorf("%w: %w", ErrDirCreate, err)
	}
	dir := p.String()
	if err := os.Mkdir(dir, 0o777); err != nil {
		a.logger().Error("cannot create slot dir", "path", dir, "error", err)
		a.alert()
		return "", fmt.Errorf("%w: %w", ErrDirCreate, err)
	}
	return dir, nil
}

func (a *Allocator) alert() {
	if a.Alerts == nil {
		return
	}
	if err := a.Alerts.RaiseInfoError(AlertDirCreate); err != nil {
		a.logger().Warn("raise history alert", "event", AlertDirCreate, "error", err)
	}
}

func parseLimit(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q", ErrLimitInvalid, raw)
	}
	return uint(v), nil
}
