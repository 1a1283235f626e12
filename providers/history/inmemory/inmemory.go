// Package inmemory provides a process-local history store, used in tests
// and in the interactive CLI where persistence across runs is not needed.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/saharlajmi1/recmooc4all/providers/history"
)

// Store is a concurrency-safe in-memory [history.Store].
type Store struct {
	mu      sync.RWMutex
	records map[string]history.Record
}

// Ensure Store implements history.Store at compile time.
var _ history.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[string]history.Record)}
}

func (s *Store) Create(_ context.Context, record *history.Record) error {
	if record.ID == "" {
		record.ID = history.NewID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[record.ID] = *record
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*history.Record, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()

	if !ok || record.Deleted {
		return nil, history.ErrNotFound
	}
	found := record
	return &found, nil
}

func (s *Store) Update(_ context.Context, record *history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[record.ID]
	if !ok || stored.Deleted {
		return history.ErrNotFound
	}
	s.records[record.ID] = *record
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.Deleted {
		return history.ErrNotFound
	}
	record.Deleted = true
	s.records[id] = record
	return nil
}

func (s *Store) ByConversation(_ context.Context, conversationID string) ([]history.Record, error) {
	s.mu.RLock()
	records := make([]history.Record, 0)
	for _, record := range s.records {
		if record.ConversationID == conversationID && !record.Deleted {
			records = append(records, record)
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (s *Store) LastIntentQuery(ctx context.Context, conversationID string, intents ...string) (*history.Record, error) {
	records, err := s.ByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(intents))
	for _, intent := range intents {
		wanted[intent] = true
	}

	for i := len(records) - 1; i >= 0; i-- {
		if wanted[records[i].Intent] {
			found := records[i]
			return &found, nil
		}
	}
	return nil, nil
}
