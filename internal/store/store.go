// Package store holds the fact collection produced by a refresh and answers
// lookups, kind-filtered queries and ranked searches over it. A Store is
// immutable once built; a refresh builds a new one and swaps it into a
// Holder.
package store

import (
	"sync/atomic"

	"github.com/ziadkadry99/cortex/internal/facts"
)

// Store is a read-only fact collection. All queries are linear scans in
// insertion order.
type Store struct {
	entries []facts.Entry
}

// New returns a store over entries. The slice is not copied and must not be
// modified afterwards.
func New(entries []facts.Entry) *Store {
	if entries == nil {
		entries = []facts.Entry{}
	}
	return &Store{entries: entries}
}

// Entries returns every fact in insertion order.
func (s *Store) Entries() []facts.Entry { return s.entries }

// Len returns the number of facts.
func (s *Store) Len() int { return len(s.entries) }

// ByKind returns the facts of one kind.
func (s *Store) ByKind(kind facts.Kind) []facts.Entry {
	return s.filter(func(e facts.Entry) bool { return e.Kind == kind })
}

func (s *Store) filter(keep func(facts.Entry) bool) []facts.Entry {
	var out []facts.Entry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) first(keep func(facts.Entry) bool) (facts.Entry, bool) {
	for _, e := range s.entries {
		if keep(e) {
			return e, true
		}
	}
	return facts.Entry{}, false
}

// Holder publishes the current store to concurrent readers. Readers never
// observe a partially built store.
type Holder struct {
	cur atomic.Pointer[Store]
}

// NewHolder returns a holder serving s, or an empty store when s is nil.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.Swap(s)
	return h
}

// Load returns the current store. It is never nil.
func (h *Holder) Load() *Store {
	if s := h.cur.Load(); s != nil {
		return s
	}
	return New(nil)
}

// Swap replaces the current store and returns the previous one.
func (h *Holder) Swap(s *Store) *Store {
	if s == nil {
		s = New(nil)
	}
	return h.cur.Swap(s)
}

// At returns the fact at position pos when its id is factID. Positions
// come from indexes built over this store's entries.
func (s *Store) At(pos int, factID string) (facts.Entry, bool) {
	if pos < 0 || pos >= len(s.entries) || s.entries[pos].ID != factID {
		return facts.Entry{}, false
	}
	return s.entries[pos], true
}
