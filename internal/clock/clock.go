// Package clock reads boot-time uptime and local wall-clock time and renders
// them in the fixed-width forms used by crash records.
package clock

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

var ErrClockUnavailable = errors.New("clock unavailable")

// DateTimeLayout renders as YYYY-MM-DD/HH:MM:SS followed by two spaces.
const DateTimeLayout = "2006-01-02/15:04:05  "

type Options struct {
	// Boottime returns time elapsed since boot. Defaults to CLOCK_BOOTTIME.
	Boottime func() (time.Duration, error)
	// Now returns wall-clock time. Defaults to time.Now.
	Now func() time.Time
	// Location used for local time. Defaults to time.Local.
	Location *time.Location
}

type Clock struct {
	boottime func() (time.Duration, error)
	now      func() time.Time
	loc      *time.Location
}

func New(opts Options) *Clock {
	c := &Clock{boottime: opts.Boottime, now: opts.Now, loc: opts.Location}
	if c.boottime == nil {
		c.boottime = Boottime
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	return c
}

// Boottime reads CLOCK_BOOTTIME, which keeps counting across suspend and is
// not affected by wall-clock adjustments.
func Boottime() (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return 0, fmt.Errorf("%w: CLOCK_BOOTTIME: %v", ErrClockUnavailable, err)
	}
	return time.Duration(ts.Nano()), nil
}

// UptimeNS returns nanoseconds since boot.
func (c *Clock) UptimeNS() (int64, error) {
	d, err := c.boottime()
	if err != nil {
		if errors.Is(err, ErrClockUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrClockUnavailable, err)
	}
	return int64(d), nil
}

// UptimeString renders uptime as HHHH:MM:SS and also returns the hour count.
// It is best-effort: a clock failure yields "" and 0.
func (c *Clock) UptimeString() (string, int) {
	ns, err := c.UptimeNS()
	if err != nil {
		return "", 0
	}
	total := int(ns / int64(time.Second))
	seconds := total % 60
	total /= 60
	minutes := total % 60
	hours := total / 60
	return fmt.Sprintf("%04d:%02d:%02d", hours, minutes, seconds), hours
}

// LocalDateTime renders the current local time using DateTimeLayout.
func (c *Clock) LocalDateTime() (string, error) {
	if c.loc == nil {
		return "", fmt.Errorf("%w: no local time zone", ErrClockUnavailable)
	}
	t := c.now()
	if t.IsZero() {
		return "", fmt.Errorf("%w: wall clock unset", ErrClockUnavailable)
	}
	return t.In(c.loc).Format(DateTimeLayout), nil
}
