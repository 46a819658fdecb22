package transaction

import (
	"time"
)

// Key is the deduplication identity of a record. Two distinct purchases with the same
// date, description and value collapse into one.
type Key struct {
	Date        string
	Description string
	Value       string
}

// Key returns the deduplication identity of the record.
func (t Transaction) Key() Key {
	return Key{
		Date:        t.Date.Format(time.DateTime),
		Description: t.Description,
		Value:       t.Value.String(),
	}
}

// Set is an insertion-ordered, deduplicated collection of records.
// It is the single accumulation point of a batch and is not safe for concurrent use.
type Set struct {
	items []Transaction
	seen  map[Key]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{seen: make(map[Key]struct{})}
}

// Add appends the record unless an identical one is already present.
func (s *Set) Add(tx Transaction) bool {
	k := tx.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, tx)
	return true
}

// AddAll appends every record and returns how many were dropped as duplicates.
func (s *Set) AddAll(txs []Transaction) int {
	dropped := 0
	for _, tx := range txs {
		if !s.Add(tx) {
			dropped++
		}
	}
	return dropped
}

// Len returns the number of distinct records.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns a copy of the records in insertion order.
func (s *Set) Items() []Transaction {
	out := make([]Transaction, len(s.items))
	copy(out, s.items)
	return out
}
