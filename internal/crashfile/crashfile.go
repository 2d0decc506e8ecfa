// Package crashfile renders the key/value "crashfile" record stored in every
// slot directory and reads it back.
//
// A record is one KEY=value line per field in a fixed order:
//
//	EVENT, ID, DEVICEID, DATE, UPTIME, BUILD, TYPE, [DATA0], [DATA1], [DATA2]
//
// followed by a literal _END line.
package crashfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"crashprobe/internal/config"
	"crashprobe/internal/fsutil"
	"crashprobe/internal/store"
)

const endMarker = "_END"

var (
	ErrTimeUnavailable = errors.New("local time unavailable")
	ErrWrite           = errors.New("crashfile write failed")
	ErrMalformed       = errors.New("malformed crashfile")
)

type Field struct {
	Key   string
	Value string
}

// Record holds the caller-supplied part of a crashfile. A nil Data entry is
// omitted from the output; an empty string is written as an empty value.
type Record struct {
	Event string
	ID    string
	Type  string
	Data  [3]*string
}

// Clock is what the writer needs from the clock service.
type Clock interface {
	LocalDateTime() (string, error)
	UptimeString() (string, int)
}

type Writer struct {
	build  config.BuildContext
	clock  Clock
	logger *slog.Logger
}

func NewWriter(build config.BuildContext, clock Clock, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{build: build, clock: clock, logger: logger}
}

// Write replaces <dir>/crashfile with the rendered record. A missing uptime
// leaves UPTIME empty; a missing wall clock aborts before anything is written.
func (w *Writer) Write(dir string, rec Record) error {
	date, err := w.clock.LocalDateTime()
	if err != nil {
		w.logger.Error("format local time", "dir", dir, "error", err)
		return fmt.Errorf("%w: %w", ErrTimeUnavailable, err)
	}
	uptime, _ := w.clock.UptimeString()

	path := filepath.Join(dir, store.CrashFileName)
	if err := fsutil.Overwrite(path, Encode(w.Fields(rec, date, uptime))); err != nil {
		w.logger.Error("new crashfile failed", "path", path, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

// Fields lays out rec in crashfile order.
func (w *Writer) Fields(rec Record, date, uptime string) []Field {
	fields := []Field{
		{"EVENT", rec.Event},
		{"ID", rec.ID},
		{"DEVICEID", w.build.DeviceUUID},
		{"DATE", date},
		{"UPTIME", uptime},
		{"BUILD", w.build.Version},
		{"TYPE", rec.Type},
	}
	for i, d := range rec.Data {
		if d != nil {
			fields = append(fields, Field{fmt.Sprintf("DATA%d", i), *d})
		}
	}
	return fields
}

func Encode(fields []Field) []byte {
	n := len(endMarker) + 1
	for _, f := range fields {
		n += len(f.Key) + len(f.Value) + 2
	}
	var buf bytes.Buffer
	buf.Grow(n)
	for _, f := range fields {
		buf.WriteString(f.Key)
		buf.WriteByte('=')
		buf.WriteString(f.Value)
		buf.WriteByte('\n')
	}
	buf.WriteString(endMarker)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Read parses <dir>/crashfile. Values are returned verbatim, including the
// trailing spaces of DATE.
func Read(dir string) ([]Field, error) {
	blob, err := fsutil.ReadFile(filepath.Join(dir, store.CrashFileName))
	if err != nil {
		return nil, err
	}
	return Decode(blob)
}

func Decode(blob []byte) ([]Field, error) {
	var fields []Field
	sc := bufio.NewScanner(bytes.NewReader(blob))
	for sc.Scan() {
		line := sc.Text()
		if line == endMarker {
			return fields, nil
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: line %q", ErrMalformed, line)
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: missing %s", ErrMalformed, endMarker)
}

// Lookup returns the value of key in fields.
func Lookup(fields []Field, key string) (string, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
