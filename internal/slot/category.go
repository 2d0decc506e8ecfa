package slot

import (
	"fmt"
	"strings"

	"crashprobe/internal/store"
)

// Category is one of the log kinds, each with its own rotation counter.
type Category int

const (
	Crash Category = iota + 1
	Stats
	VMEvent
)

var categories = map[Category]struct {
	name    string
	counter string
	prefix  string
}{
	Crash:   {"crash", store.CrashCounterFile, store.CrashPrefix},
	Stats:   {"stats", store.StatsCounterFile, store.StatsPrefix},
	VMEvent: {"vmevent", store.VMEventCounterFile, store.VMEventPrefix},
}

func (c Category) String() string {
	if m, ok := categories[c]; ok {
		return m.name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func ParseCategory(v string) (Category, error) {
	for c, m := range categories {
		if strings.EqualFold(v, m.name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
}
