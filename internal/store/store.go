// Package store defines the document-store contract the scheduling core is
// written against: named collections of JSON-like records with filtered
// queries, live snapshot subscriptions, and per-record mutation.
//
// The portal's original backing service is a hosted document store; nothing
// here promises transactions across records. Implementations must deliver a
// fresh full snapshot to subscribers after every mutation that touches the
// subscribed collection.
package store

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrClosed is returned when the store has been shut down.
	ErrClosed = errors.New("store: closed")
	// ErrUnknownCollection is returned for a collection name outside the
	// portal's schema.
	ErrUnknownCollection = errors.New("store: unknown collection")
)

// Fields is one record's payload. Values are restricted to the JSON value
// set: string, float64, bool, nil, []any and map[string]any.
type Fields = map[string]any

// Doc pairs a store-assigned id with the record payload.
type Doc struct {
	ID     string
	Fields Fields
}

// Snapshot is a point-in-time view of the records matching a query.
type Snapshot []Doc

// Op selects the comparison applied by a filter.
type Op string

const (
	OpEq  Op = "=="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Filter narrows a query to records whose field satisfies the comparison.
// Ordered comparisons apply lexicographically to strings and numerically to
// numbers, which is all the portal needs: ISO dates order correctly as
// strings.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Ordering sorts a snapshot by one field.
type Ordering struct {
	Field      string
	Descending bool
}

// Subscription delivers snapshots until closed. The initial snapshot arrives
// promptly after Subscribe; later ones follow mutations. Implementations may
// coalesce intermediate snapshots but must always deliver the latest state.
type Subscription interface {
	// Updates returns the snapshot channel. It is closed when the
	// subscription ends.
	Updates() <-chan Snapshot
	// Close tears the subscription down. Safe to call more than once.
	Close()
}

// Store is the record-store collaborator contract.
type Store interface {
	Query(ctx context.Context, collection string, filters []Filter, order *Ordering) (Snapshot, error)
	Subscribe(ctx context.Context, collection string, filters []Filter) (Subscription, error)
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Update merges the given fields into the record, leaving absent fields
	// untouched.
	Update(ctx context.Context, collection string, id string, fields Fields) error
	Delete(ctx context.Context, collection string, id string) error
}

// Matches reports whether a record satisfies every filter.
func Matches(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		value, ok := fields[f.Field]
		if !ok {
			return false
		}
		cmp, comparable := compare(value, f.Value)
		if !comparable {
			return false
		}
		switch f.Op {
		case OpEq:
			if cmp != 0 {
				return false
			}
		case OpGte:
			if cmp < 0 {
				return false
			}
		case OpLte:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// SortSnapshot orders docs in place by the ordering field, with the record
// id as a stable tie-break.
func SortSnapshot(snapshot Snapshot, order *Ordering) {
	if order == nil {
		sortDocsBy(snapshot, func(a, b Doc) int {
			return compareStrings(a.ID, b.ID)
		})
		return
	}
	sortDocsBy(snapshot, func(a, b Doc) int {
		av, aok := a.Fields[order.Field]
		bv, bok := b.Fields[order.Field]
		if aok && bok {
			if cmp, comparable := compare(av, bv); comparable && cmp != 0 {
				if order.Descending {
					return -cmp
				}
				return cmp
			}
		} else if aok != bok {
			// Records missing the field sort last.
			if aok {
				return -1
			}
			return 1
		}
		return compareStrings(a.ID, b.ID)
	})
}

func sortDocsBy(snapshot Snapshot, cmp func(a, b Doc) int) {
	sort.SliceStable(snapshot, func(i, j int) bool {
		return cmp(snapshot[i], snapshot[j]) < 0
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compare returns the ordering of two JSON values of the same kind.
func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return compareStrings(av, bv), true
	case float64:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case int:
		af := float64(av)
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bv:
			return -1, true
		case af > bv:
			return 1, true
		default:
			return 0, true
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		// false < true, matching JSON ordering in the hosted store.
		if !av {
			return -1, true
		}
		return 1, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
