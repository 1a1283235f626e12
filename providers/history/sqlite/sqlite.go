// Package sqlite persists query history in an embedded SQLite database, so
// the feedback and quiz lookups survive process restarts without an
// external database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/saharlajmi1/recmooc4all/providers/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS queries (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	query           TEXT NOT NULL,
	refined_query   TEXT NOT NULL DEFAULT '',
	response        TEXT NOT NULL DEFAULT '',
	intent          TEXT NOT NULL DEFAULT '',
	topic           TEXT NOT NULL DEFAULT '',
	level           TEXT NOT NULL DEFAULT '',
	num_courses     INTEGER NOT NULL DEFAULT 0,
	timestamp       TIMESTAMP NOT NULL,
	is_deleted      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_queries_conversation
	ON queries (conversation_id, timestamp);
`

// Store is a [history.Store] backed by SQLite.
type Store struct {
	db *sql.DB
}

// Ensure Store implements history.Store at compile time.
var _ history.Store = (*Store)(nil)

// Open opens (and if needed creates) the database at dsn and ensures the
// schema exists. A dsn of ":memory:" yields a transient database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, record *history.Record) error {
	if record.ID == "" {
		record.ID = history.NewID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries
			(id, user_id, conversation_id, query, refined_query, response,
			 intent, topic, level, num_courses, timestamp, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		record.ID, record.UserID, record.ConversationID, record.Query,
		record.RefinedQuery, record.Response, record.Intent, record.Topic,
		record.Level, record.NumCourses, record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

const recordColumns = `id, user_id, conversation_id, query, refined_query,
	response, intent, topic, level, num_courses, timestamp, is_deleted`

func scanRecord(row interface{ Scan(...any) error }) (*history.Record, error) {
	var record history.Record
	var deleted int
	err := row.Scan(&record.ID, &record.UserID, &record.ConversationID,
		&record.Query, &record.RefinedQuery, &record.Response, &record.Intent,
		&record.Topic, &record.Level, &record.NumCourses, &record.Timestamp,
		&deleted)
	if err != nil {
		return nil, err
	}
	record.Deleted = deleted != 0
	return &record, nil
}

func (s *Store) Get(ctx context.Context, id string) (*history.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM queries WHERE id = ? AND is_deleted = 0`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read query record: %w", err)
	}
	return record, nil
}

func (s *Store) Update(ctx context.Context, record *history.Record) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE queries SET
			query = ?, refined_query = ?, response = ?, intent = ?,
			topic = ?, level = ?, num_courses = ?
		WHERE id = ? AND is_deleted = 0`,
		record.Query, record.RefinedQuery, record.Response, record.Intent,
		record.Topic, record.Level, record.NumCourses, record.ID)
	if err != nil {
		return fmt.Errorf("failed to update query record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update query record: %w", err)
	}
	if affected == 0 {
		return history.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE queries SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete query record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete query record: %w", err)
	}
	if affected == 0 {
		return history.ErrNotFound
	}
	return nil
}

func (s *Store) ByConversation(ctx context.Context, conversationID string) ([]history.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM queries
		 WHERE conversation_id = ? AND is_deleted = 0
		 ORDER BY timestamp ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []history.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read query record: %w", err)
		}
		records = append(records, *record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list conversation records: %w", err)
	}
	return records, nil
}

func (s *Store) LastIntentQuery(ctx context.Context, conversationID string, intents ...string) (*history.Record, error) {
	if len(intents) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(intents)), ", ")
	args := make([]any, 0, len(intents)+1)
	args = append(args, conversationID)
	for _, intent := range intents {
		args = append(args, intent)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM queries
		 WHERE conversation_id = ? AND intent IN (`+placeholders+`) AND is_deleted = 0
		 ORDER BY timestamp DESC LIMIT 1`, args...)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last intent record: %w", err)
	}
	return record, nil
}
