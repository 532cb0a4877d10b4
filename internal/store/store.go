package store

import (
	"sync"

	"github.com/suddernpy/resq/internal/models"
)

// ListingStore holds the authoritative in-memory set of listing records,
// keyed by id with insertion order preserved. It is the single shared
// mutable resource in the sync engine: the snapshot loader seeds it, the
// change feed merges into it, and everything else only reads via All().
//
// A RWMutex serializes writers, so a Merge is atomic from the perspective
// of any reader: All() never observes a partially applied record.
type ListingStore struct {
	mu     sync.RWMutex
	order  []string
	byID   map[string]models.Listing
	seeded bool
}

// New returns an empty, unseeded store.
func New() *ListingStore {
	return &ListingStore{byID: make(map[string]models.Listing)}
}

// Seed replaces the store contents wholesale with the snapshot records and
// marks the store ready. It is meant to be called once at startup; records
// arriving through Merge before the snapshot lands are preserved (the
// snapshot upserts over them rather than dropping them).
func (s *ListingStore) Seed(records []models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	early := s.order // merges that beat the snapshot
	earlyByID := s.byID

	s.order = make([]string, 0, len(records)+len(early))
	s.byID = make(map[string]models.Listing, len(records)+len(early))
	for _, rec := range records {
		if _, ok := s.byID[rec.ID]; !ok {
			s.order = append(s.order, rec.ID)
		}
		s.byID[rec.ID] = rec
	}
	for _, id := range early {
		if _, ok := s.byID[id]; !ok {
			s.order = append(s.order, id)
			s.byID[id] = earlyByID[id]
		}
	}
	s.seeded = true
}

// Merge upserts a record by id. An existing record is replaced in place
// (no duplicate entry, no order churn); a new record is appended. Applying
// the same record twice is a no-op beyond the first application.
func (s *ListingStore) Merge(rec models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.byID[rec.ID] = rec
}

// Remove deletes a record by id. Removing an unknown id is a no-op.
func (s *ListingStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// All returns a copy of the current records in insertion order. The copy
// may be stale by the time it is rendered; consumers recompute derived
// state against the current clock regardless.
func (s *ListingStore) All() []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Get returns a single record by id.
func (s *ListingStore) Get(id string) (models.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok
}

// Len returns the number of records currently held.
func (s *ListingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Ready reports whether the initial snapshot has been applied. An unseeded
// store is distinct from a seeded-but-empty one: the API surfaces the
// former as "listings unavailable", never as an empty list.
func (s *ListingStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}
