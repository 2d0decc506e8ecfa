// Package eventid derives hexadecimal event identifiers from a SHA-256 digest
// of the build identity, the current boot-time uptime and caller seeds.
//
// Identifiers are unique in practice, not by construction: two calls with the
// same seed inside the same uptime nanosecond collide. Collisions are neither
// detected nor retried.
package eventid

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"crashprobe/internal/config"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrHash         = errors.New("hash error")
)

type Size int

const (
	Short Size = iota + 1
	Long
)

// Len returns the identifier length in hex characters, or 0 for an unknown size.
func (s Size) Len() int {
	switch s {
	case Short:
		return 20
	case Long:
		return 32
	}
	return 0
}

func (s Size) String() string {
	switch s {
	case Short:
		return "short"
	case Long:
		return "long"
	}
	return "size(" + strconv.Itoa(int(s)) + ")"
}

func ParseSize(v string) (Size, error) {
	switch v {
	case "short", "":
		return Short, nil
	case "long":
		return Long, nil
	}
	return 0, fmt.Errorf("%w: unknown id size %q", ErrInvalidInput, v)
}

// Uptime is the clock dependency of the generator.
type Uptime interface {
	UptimeNS() (int64, error)
}

type Generator struct {
	build config.BuildContext
	clock Uptime
}

func NewGenerator(build config.BuildContext, clock Uptime) *Generator {
	return &Generator{build: build, clock: clock}
}

// Generate returns an identifier of size.Len() lowercase hex characters.
// seed2 is optional; an empty value means absent.
func (g *Generator) Generate(seed1, seed2 string, size Size) (string, error) {
	if seed1 == "" {
		return "", fmt.Errorf("%w: seed1 is required", ErrInvalidInput)
	}
	n := size.Len()
	if n == 0 {
		return "", fmt.Errorf("%w: unsupported id size %s", ErrInvalidInput, size)
	}
	ns, err := g.clock.UptimeNS()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHash, err)
	}

	h := sha256.New()
	h.Write([]byte(g.build.Version))
	h.Write([]byte(g.build.DeviceUUID))
	h.Write([]byte(strconv.FormatInt(ns, 10)))
	h.Write([]byte(seed1))
	h.Write([]byte(seed2))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:n/2]), nil
}
