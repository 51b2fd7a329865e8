// Package memory provides a map-backed store.Store with live subscriptions.
// It backs tests and the portal's zero-setup mode; semantics mirror the
// hosted document store closely enough that the scheduling core cannot tell
// them apart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/example/team-portal/internal/store"
)

// Store is an in-memory document store. The zero value is not usable; call
// New.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]store.Fields
	subscribers map[*subscription]struct{}
	closed      bool
	newID       func() string
}

// Option adjusts store construction.
type Option func(*Store)

// WithIDGenerator overrides the store-assigned id source, used by tests to
// get deterministic ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]store.Fields),
		subscribers: make(map[*subscription]struct{}),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query returns the records of a collection matching the filters, sorted by
// the ordering with record id as tie-break.
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter, order *store.Ordering) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	snapshot := s.snapshotLocked(collection, filters)
	store.SortSnapshot(snapshot, order)
	return snapshot, nil
}

// Subscribe registers a live query. The current snapshot is delivered first;
// every mutation of the collection afterwards delivers a fresh one.
// Intermediate snapshots are coalesced: a slow consumer always sees the
// latest state next.
func (s *Store) Subscribe(ctx context.Context, collection string, filters []store.Filter) (store.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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
	sub.deliver(s.snapshotLocked(collection, filters))
	return sub, nil
}

// Create inserts a record and returns its store-assigned id.
func (s *Store) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", store.ErrClosed
	}
	records, ok := s.collections[collection]
	if !ok {
		records = make(map[string]store.Fields)
		s.collections[collection] = records
	}
	id := s.newID()
	records[id] = cloneFields(fields)
	s.broadcastLocked(collection)
	return id, nil
}

// Update merges fields into an existing record.
func (s *Store) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	records := s.collections[collection]
	existing, ok := records[id]
	if !ok {
		return store.ErrNotFound
	}
	for field, value := range fields {
		existing[field] = cloneValue(value)
	}
	s.broadcastLocked(collection)
	return nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	records := s.collections[collection]
	if _, ok := records[id]; !ok {
		return store.ErrNotFound
	}
	delete(records, id)
	s.broadcastLocked(collection)
	return nil
}

// Close shuts the store down and ends every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subscribers {
		close(sub.updates)
	}
	s.subscribers = make(map[*subscription]struct{})
}

func (s *Store) snapshotLocked(collection string, filters []store.Filter) store.Snapshot {
	records := s.collections[collection]
	snapshot := make(store.Snapshot, 0, len(records))
	for id, fields := range records {
		if store.Matches(fields, filters) {
			snapshot = append(snapshot, store.Doc{ID: id, Fields: cloneFields(fields)})
		}
	}
	return snapshot
}

func (s *Store) broadcastLocked(collection string) {
	for sub := range s.subscribers {
		if sub.collection != collection {
			continue
		}
		snapshot := s.snapshotLocked(collection, sub.filters)
		store.SortSnapshot(snapshot, nil)
		sub.deliver(snapshot)
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

// deliver replaces any pending snapshot so the consumer always reads the
// latest state.
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

func cloneFields(fields store.Fields) store.Fields {
	cloned := make(store.Fields, len(fields))
	for field, value := range fields {
		cloned[field] = cloneValue(value)
	}
	return cloned
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneFields(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
