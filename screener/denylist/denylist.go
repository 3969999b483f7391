// Package denylist owns the set of profile-image fingerprints that are
// considered violations on sight.
package denylist

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidFingerprint rejects values that do not look like the
// fixed-length hex encoding of a fingerprint. No mutation happens when an
// Add fails with this error.
var ErrInvalidFingerprint = errors.New("denylist: fingerprint must be 32 hex characters")

type Store interface {
	Contains(ctx context.Context, fp string) (bool, error)
	// Add inserts the fingerprint; returns true if newly inserted, false
	// if it was already present.
	Add(ctx context.Context, fp string) (bool, error)
	// Remove deletes the fingerprint; returns true if it was present.
	Remove(ctx context.Context, fp string) (bool, error)
	// ExportAll returns the canonical persisted form: deduplicated,
	// lexicographically sorted, one fingerprint per line, newline
	// terminated. Empty store exports zero bytes.
	ExportAll(ctx context.Context) ([]byte, error)
}

// Normalize trims whitespace and lowercases a fingerprint value. Applied
// before every store operation.
func Normalize(fp string) string {
	return strings.ToLower(strings.TrimSpace(fp))
}

// Validate checks the normalized form is exactly 32 hex characters.
func Validate(fp string) error {
	if len(fp) != 32 {
		return ErrInvalidFingerprint
	}
	for _, c := range fp {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ErrInvalidFingerprint
		}
	}
	return nil
}
