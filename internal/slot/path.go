package slot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Path names one slot directory. It renders as <Root><Index>_<EventID>; no
// separator goes between Root and Index, so existing on-disk layouts stay
// readable.
type Path struct {
	Root    string
	Index   uint
	EventID string
}

func NewPath(root string, index uint, eventID string) (Path, error) {
	if root == "" {
		return Path{}, errors.New("slot root is empty")
	}
	if filepath.Clean(root) != root || strings.HasSuffix(root, string(filepath.Separator)) {
		return Path{}, fmt.Errorf("slot root %q is not clean", root)
	}
	if eventID == "" {
		return Path{}, errors.New("event id is empty")
	}
	if strings.ContainsAny(eventID, "/\x00") || eventID == "." || eventID == ".." {
		return Path{}, fmt.Errorf("event id %q is not a valid path segment", eventID)
	}
	return Path{Root: root, Index: index, EventID: eventID}, nil
}

func (p Path) String() string {
	var b strings.Builder
	b.Grow(len(p.Root) + len(p.EventID) + 12)
	b.WriteString(p.Root)
	b.WriteString(strconv.FormatUint(uint64(p.Index), 10))
	b.WriteByte('_')
	b.WriteString(p.EventID)
	return b.String()
}
