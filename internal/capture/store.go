package capture

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxRecords bounds a Store created with a non-positive limit.
const DefaultMaxRecords = 10000

// Store is a bounded in-memory log of captured requests. When full, the
// oldest record is dropped.
type Store struct {
	mu      sync.RWMutex
	records []Record
	max     int
	now     func() time.Time
}

// NewStore creates a store holding at most max records.
func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	return &Store{
		records: make([]Record, 0),
		max:     max,
		now:     time.Now,
	}
}

// Add appends a record, stamping its time if unset.
func (s *Store) Add(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Time.IsZero() {
		rec.Time = s.now()
	}
	if len(s.records) >= s.max {
		n := copy(s.records, s.records[len(s.records)-s.max+1:])
		s.records = s.records[:n]
	}
	s.records = append(s.records, rec)
}

// GetRequests returns a snapshot of the records in capture order.
func (s *Store) GetRequests(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
