// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package rules

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	// MaxTextLen is the longest rule text a record may carry. The wire
	// format reserves 256 bytes per rule; one byte is the terminator.
	MaxTextLen = 255

	// AllUsers is the uid filter meaning "no specific user" in read
	// requests. It is never a valid record owner.
	AllUsers uint32 = 0xFFFFFFFF

	// LegacyOwner is the owner recorded for rules added through the
	// legacy write-without-uid path. Distinct from AllUsers so the two
	// sentinels cannot collide.
	LegacyOwner uint32 = 0xFFFFFFFE

	// DefaultCapacity bounds the table when no capacity is configured.
	DefaultCapacity = 1024
)

// Rule is a single stored (owner uid, text) pair. Immutable once
// stored; updates replace the record wholesale.
type Rule struct {
	OwnerUID uint32
	Text     string
}

// Validate checks the record invariants: bounded text with no interior
// NUL, and an owner that is not a reserved sentinel.
func (r Rule) Validate() error {
	if len(r.Text) == 0 {
		return fmt.Errorf("%w: empty rule text", ErrInvalidInput)
	}
	if len(r.Text) > MaxTextLen {
		return fmt.Errorf("%w: rule text exceeds %d bytes", ErrInvalidInput, MaxTextLen)
	}
	for i := 0; i < len(r.Text); i++ {
		if r.Text[i] == 0 {
			return fmt.Errorf("%w: rule text contains interior NUL", ErrInvalidInput)
		}
	}
	if r.OwnerUID == AllUsers {
		return fmt.Errorf("%w: uid %d is the all-users sentinel", ErrInvalidInput, r.OwnerUID)
	}
	return nil
}

// Store owns the rule table and the lock that guards it. The table is
// reachable only through Store methods.
type Store struct {
	mu       sync.RWMutex
	table    []Rule
	capacity int
}

// NewStore creates an empty store bounded at the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		table:    make([]Rule, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a validated record to the table. Fails with ErrTableFull
// at capacity; a failed add leaves the table untouched.
func (s *Store) Add(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.table) >= s.capacity {
		return fmt.Errorf("%w: capacity %d reached", ErrTableFull, s.capacity)
	}
	s.table = append(s.table, r)

	log.Debugf("Rule added: uid=%d len=%d total=%d", r.OwnerUID, len(r.Text), len(s.table))
	return nil
}

// Remove deletes the first record matching (uid, text) exactly and
// reports whether one was found. A miss is a no-op, not an error.
func (s *Store) Remove(uid uint32, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.table {
		if r.OwnerUID == uid && r.Text == text {
			s.table = append(s.table[:i], s.table[i+1:]...)
			log.Debugf("Rule removed: uid=%d total=%d", uid, len(s.table))
			return true
		}
	}
	return false
}

// List returns an owned snapshot of the records matching the uid
// filter, in insertion order. AllUsers disables filtering. Later
// mutations never invalidate the returned slice.
func (s *Store) List(uid uint32) []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rule, 0, len(s.table))
	for _, r := range s.table {
		if uid == AllUsers || r.OwnerUID == uid {
			out = append(out, r)
		}
	}
	return out
}

// ContainsMatch reports whether any record owned by uid satisfies the
// predicate. Short-circuits on the first hit; bounded by capacity.
func (s *Store) ContainsMatch(uid uint32, pred func(Rule) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.table {
		if r.OwnerUID == uid && pred(r) {
			return true
		}
	}
	return false
}

// Len returns the current record count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}

// Capacity returns the configured record bound.
func (s *Store) Capacity() int {
	return s.capacity
}
