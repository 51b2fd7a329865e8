// Package sqlite backs the record-store contract with a single SQLite
// documents table. Records are stored as JSON bodies keyed by collection and
// id, which keeps the store schema-free the way the portal's hosted document
// store is. Filtering happens in Go after decoding; collections stay small
// at this team's scale.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/example/team-portal/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
`

// Store is a SQLite-backed document store.
type Store struct {
	db    *sql.DB
	newID func() string

	mu          sync.Mutex
	subscribers map[*subscription]struct{}
	closed      bool
}

// Open connects to the SQLite database at dsn and bootstraps the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent sessions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}

	return &Store{
		db:          db,
		newID:       uuid.NewString,
		subscribers: make(map[*subscription]struct{}),
	}, nil
}

// Close shuts the store down, ending subscriptions and releasing the
// database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for sub := range s.subscribers {
			close(sub.updates)
		}
		s.subscribers = make(map[*subscription]struct{})
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Query loads the collection and returns the records matching the filters.
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter, order *store.Ordering) (store.Snapshot, error) {
	snapshot, err := s.load(ctx, collection, filters)
	if err != nil {
		return nil, err
	}
	store.SortSnapshot(snapshot, order)
	return snapshot, nil
}

// Subscribe registers a live query over the collection. Snapshots are pushed
// through an in-process broadcaster after every mutation, giving the same
// contract as the hosted store's listeners.
func (s *Store) Subscribe(ctx context.Context, collection string, filters []store.Filter) (store.Subscription, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, store.ErrClosed
	}
	s.mu.Unlock()

	initial, err := s.load(ctx, collection, filters)
	if err != nil {
		return nil, err
	}
	store.SortSnapshot(initial, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	sub := &subscription{
		owner:      s,
		collection: collection,
		filters:    filters,
		updates:    make(chan store.Snapshot, 1),
	}
	s.subscribers[sub] = struct{}{}
	sub.deliver(initial)
	return sub, nil
}

// Create inserts a record with a store-assigned id.
func (s *Store) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	id := s.newID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)`,
		collection, id, string(body))
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	s.broadcast(ctx, collection)
	return id, nil
}

// Update merges fields into a record's stored body.
func (s *Store) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	existing, err := s.get(ctx, collection, id)
	if err != nil {
		return err
	}
	for field, value := range fields {
		existing[field] = value
	}
	body, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`,
		string(body), collection, id)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	s.broadcast(ctx, collection)
	return nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	s.broadcast(ctx, collection)
	return nil
}

func (s *Store) get(ctx context.Context, collection, id string) (store.Fields, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	var fields store.Fields
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", collection, id, err)
	}
	return fields, nil
}

func (s *Store) load(ctx context.Context, collection string, filters []store.Filter) (store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	snapshot := make(store.Snapshot, 0)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var fields store.Fields
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w", collection, id, err)
		}
		if store.Matches(fields, filters) {
			snapshot = append(snapshot, store.Doc{ID: id, Fields: fields})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", collection, err)
	}
	return snapshot, nil
}

func (s *Store) broadcast(ctx context.Context, collection string) {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subscribers))
	for sub := range s.subscribers {
		if sub.collection == collection {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		snapshot, err := s.load(ctx, collection, sub.filters)
		if err != nil {
			continue
		}
		store.SortSnapshot(snapshot, nil)

		// Deliver under the lock so a concurrent Close cannot close the
		// channel mid-send.
		s.mu.Lock()
		if _, ok := s.subscribers[sub]; ok {
			sub.deliver(snapshot)
		}
		s.mu.Unlock()
	}
}

type subscription struct {
	owner      *Store
	collection string
	filters    []store.Filter
	updates    chan store.Snapshot
	closeOnce  sync.Once
}

func (s *subscription) Updates() <-chan store.Snapshot { return s.updates }

func (s *subscription) Close() {
	s.closeOnce.Do(func() {
		s.owner.mu.Lock()
		defer s.owner.mu.Unlock()
		if _, ok := s.owner.subscribers[s]; ok {
			delete(s.owner.subscribers, s)
			close(s.updates)
		}
	})
}

func (s *subscription) deliver(snapshot store.Snapshot) {
	for {
		select {
		case s.updates <- snapshot:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
