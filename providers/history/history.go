// Package history persists the per-conversation query records the
// orchestrator reads back on later turns: the feedback node needs the
// previous query and its intent, the metadata fallback needs the last
// topic, and the quiz node needs the last level.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist or is soft-deleted.
var ErrNotFound = errors.New("history: record not found")

// Record is one stored query with the outcome of its turn.
type Record struct {
	ID             string
	UserID         string
	ConversationID string

	Query        string
	RefinedQuery string
	Response     string
	Intent       string

	Topic      string
	Level      string
	NumCourses int

	Timestamp time.Time
	Deleted   bool
}

// Store is implemented by history backends. Deletes are soft: deleted
// records are invisible to every read but stay in storage.
type Store interface {
	// Create stores the record, assigning ID and Timestamp when unset.
	Create(ctx context.Context, record *Record) error

	// Get returns the record with the given ID, or [ErrNotFound].
	Get(ctx context.Context, id string) (*Record, error)

	// Update overwrites the stored record with the same ID, or returns
	// [ErrNotFound].
	Update(ctx context.Context, record *Record) error

	// Delete soft-deletes the record, or returns [ErrNotFound].
	Delete(ctx context.Context, id string) error

	// ByConversation returns the conversation's records in ascending
	// timestamp order.
	ByConversation(ctx context.Context, conversationID string) ([]Record, error)

	// LastIntentQuery returns the most recent record of the conversation
	// whose intent is one of the given ones, or nil when there is none.
	LastIntentQuery(ctx context.Context, conversationID string, intents ...string) (*Record, error)
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}
