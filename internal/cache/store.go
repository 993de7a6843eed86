// Package cache provides the expiring, content-addressed caches that let
// repeated analyses skip oracle calls for unchanged inputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Entry is a stored value with its absolute expiry.
type Entry struct {
	Data      []byte
	ExpiresAt time.Time
}

// Store is a byte-level key/value store with per-entry expiry.
// Implementations must be safe for concurrent use and must never return an
// entry at or past its expiry. Concurrent writes to one key: last writer wins.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// ContentKey builds a deterministic key from parts.
func ContentKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// NormalizeText collapses whitespace so formatting-only differences share a key.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TextKey hashes normalized text.
func TextKey(text string) string {
	return ContentKey(NormalizeText(text))
}
