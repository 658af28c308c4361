// Package ids generates the opaque, prefixed identifiers used across every
// evaluator's record store (spec §6: short three-letter-ish domain prefix
// plus an 8-character UUID-derived suffix).
package ids

import "github.com/google/uuid"

// New returns a new opaque identifier with the given domain prefix, e.g.
// New("bds") -> "bds_3f9a1c2d". Collisions are not expected (128-bit UUID
// source) and are not handled, per spec §3.
func New(prefix string) string {
	raw := uuid.New().String()
	suffix := raw[:8]
	return prefix + "_" + suffix
}

// NewWithSource is like New but draws randomness from a caller-supplied
// UUID generator function, so tests can assert on generated ids without
// relying on the global random source.
func NewWithSource(prefix string, gen func() uuid.UUID) string {
	raw := gen().String()
	return prefix + "_" + raw[:8]
}
