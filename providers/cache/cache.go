// Package cache defines the semantic answer cache used to short-circuit
// repeated questions. Entries are keyed by a hash of the conversation
// context and matched by embedding similarity rather than exact text, so a
// rephrased question can still hit a previously computed answer.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// DefaultThreshold is the minimum cosine similarity for an entry to be
	// considered equivalent to the incoming question.
	DefaultThreshold = 0.95

	// DefaultTTL is how long an entry stays servable after being stored.
	DefaultTTL = time.Hour
)

// Entry is a cached answer together with the embedding of the contextual
// question that produced it.
type Entry struct {
	// Key identifies the entry; see [Key].
	Key string
	// Embedding is the vector of the contextual question at store time.
	Embedding []float32
	// Answer is the final answer text served on a hit.
	Answer string
	// Intent is the classification recorded when the answer was produced.
	Intent string
	// StoredAt is when the entry was written, used for TTL expiry.
	StoredAt time.Time
}

// Store is implemented by semantic cache backends.
type Store interface {
	// Lookup scans stored entries for one whose embedding is similar enough
	// to the given one. It returns nil when nothing matches.
	Lookup(ctx context.Context, embedding []float32) (*Entry, error)

	// Put stores an entry, replacing any existing entry with the same key.
	Put(ctx context.Context, entry Entry) error
}

// Key derives a stable cache key from the contextual question string
// (rendered history plus the current query).
func Key(contextual string) string {
	sum := sha256.Sum256([]byte(contextual))
	return hex.EncodeToString(sum[:])
}
