// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package rules

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anyRule(Rule) bool { return true }

// TestRuleValidate tests record invariant checks
func TestRuleValidate(t *testing.T) {
	testCases := []struct {
		name        string
		rule        Rule
		expectError bool
	}{
		{
			name:        "valid rule",
			rule:        Rule{OwnerUID: 1000, Text: "no-write"},
			expectError: false,
		},
		{
			name:        "max length text",
			rule:        Rule{OwnerUID: 1000, Text: strings.Repeat("a", MaxTextLen)},
			expectError: false,
		},
		{
			name:        "empty text",
			rule:        Rule{OwnerUID: 1000, Text: ""},
			expectError: true,
		},
		{
			name:        "oversized text",
			rule:        Rule{OwnerUID: 1000, Text: strings.Repeat("a", MaxTextLen+1)},
			expectError: true,
		},
		{
			name:        "interior NUL",
			rule:        Rule{OwnerUID: 1000, Text: "no\x00write"},
			expectError: true,
		},
		{
			name:        "all-users sentinel as owner",
			rule:        Rule{OwnerUID: AllUsers, Text: "no-write"},
			expectError: true,
		},
		{
			// The legacy owner is assignable internally; only the
			// boundary codec refuses it from callers.
			name:        "legacy sentinel as owner",
			rule:        Rule{OwnerUID: LegacyOwner, Text: "no-write"},
			expectError: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.expectError {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestStore_AddAndList tests that an added rule comes back exactly
func TestStore_AddAndList(t *testing.T) {
	store := NewStore(16)

	err := store.Add(Rule{OwnerUID: 1000, Text: "no-write"})
	require.NoError(t, err)

	got := store.List(1000)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(1000), got[0].OwnerUID)
	assert.Equal(t, "no-write", got[0].Text)
}

// TestStore_ListFiltering tests uid filtering and insertion order
func TestStore_ListFiltering(t *testing.T) {
	store := NewStore(16)

	require.NoError(t, store.Add(Rule{OwnerUID: 5, Text: "first"}))
	require.NoError(t, store.Add(Rule{OwnerUID: 7, Text: "second"}))
	require.NoError(t, store.Add(Rule{OwnerUID: 5, Text: "third"}))

	all := store.List(AllUsers)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Text)
	assert.Equal(t, "second", all[1].Text)
	assert.Equal(t, "third", all[2].Text)

	only5 := store.List(5)
	require.Len(t, only5, 2)
	assert.Equal(t, "first", only5[0].Text)
	assert.Equal(t, "third", only5[1].Text)
}

// TestStore_ListSnapshot tests that List returns an owned copy
func TestStore_ListSnapshot(t *testing.T) {
	store := NewStore(16)
	require.NoError(t, store.Add(Rule{OwnerUID: 1, Text: "keep"}))

	snap := store.List(AllUsers)
	require.Len(t, snap, 1)

	// Mutating the store must not change the snapshot
	store.Remove(1, "keep")
	require.NoError(t, store.Add(Rule{OwnerUID: 2, Text: "other"}))

	assert.Equal(t, uint32(1), snap[0].OwnerUID)
	assert.Equal(t, "keep", snap[0].Text)
}

// TestStore_RemoveRoundTrip tests add then remove leaves nothing behind
func TestStore_RemoveRoundTrip(t *testing.T) {
	store := NewStore(16)

	require.NoError(t, store.Add(Rule{OwnerUID: 1000, Text: "no-write"}))
	assert.True(t, store.Remove(1000, "no-write"))
	assert.Empty(t, store.List(1000))
	assert.Zero(t, store.Len())
}

// TestStore_RemoveNotFound tests that a miss is a reported no-op
func TestStore_RemoveNotFound(t *testing.T) {
	store := NewStore(16)
	require.NoError(t, store.Add(Rule{OwnerUID: 1000, Text: "no-write"}))

	before := store.List(AllUsers)

	// Same text, wrong uid
	assert.False(t, store.Remove(1001, "no-write"))
	// Same uid, wrong text
	assert.False(t, store.Remove(1000, "no-read"))

	assert.Equal(t, before, store.List(AllUsers))
}

// TestStore_CapacityBoundary tests the Full error at exactly capacity
func TestStore_CapacityBoundary(t *testing.T) {
	const capacity = 8
	store := NewStore(capacity)

	for i := 0; i < capacity; i++ {
		err := store.Add(Rule{OwnerUID: 1000, Text: fmt.Sprintf("rule-%d", i)})
		require.NoError(t, err)
	}

	err := store.Add(Rule{OwnerUID: 1000, Text: "one-too-many"})
	assert.ErrorIs(t, err, ErrTableFull)

	// No partial record visible after the failed add
	got := store.List(1000)
	require.Len(t, got, capacity)
	for _, r := range got {
		assert.NotEqual(t, "one-too-many", r.Text)
	}
}

// TestStore_ContainsMatch tests the enforcement-side membership check
func TestStore_ContainsMatch(t *testing.T) {
	store := NewStore(16)
	require.NoError(t, store.Add(Rule{OwnerUID: 1000, Text: "no-write"}))

	assert.True(t, store.ContainsMatch(1000, anyRule))
	assert.False(t, store.ContainsMatch(1001, anyRule))

	// Predicate is honored, not just ownership
	assert.False(t, store.ContainsMatch(1000, func(Rule) bool { return false }))
}

// TestStore_ConcurrentReadersAndWriter hammers ContainsMatch from many
// goroutines while a writer adds records. Every read must observe a
// consistent pre- or post-add table, never a torn record.
func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	const (
		readers = 8
		writes  = 200
	)
	store := NewStore(writes)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// Any record seen must be complete
				for _, r := range store.List(AllUsers) {
					if r.Text == "" {
						t.Error("observed torn record with empty text")
						return
					}
				}
				store.ContainsMatch(42, anyRule)
			}
		}()
	}

	for i := 0; i < writes; i++ {
		require.NoError(t, store.Add(Rule{OwnerUID: 42, Text: fmt.Sprintf("rule-%d", i)}))
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, writes, store.Len())
	assert.True(t, store.ContainsMatch(42, anyRule))
}

// TestStore_ContainsMatchBoundedAtCapacity verifies the scan stays
// bounded and correct with the table at capacity.
func TestStore_ContainsMatchBoundedAtCapacity(t *testing.T) {
	const capacity = 512
	store := NewStore(capacity)

	for i := 0; i < capacity; i++ {
		require.NoError(t, store.Add(Rule{OwnerUID: uint32(i % 50), Text: fmt.Sprintf("rule-%d", i)}))
	}
	require.ErrorIs(t, store.Add(Rule{OwnerUID: 1, Text: "overflow"}), ErrTableFull)

	calls := 0
	found := store.ContainsMatch(49, func(Rule) bool {
		calls++
		return true
	})
	assert.True(t, found)
	// Short-circuit: the predicate runs once on the first owned record
	assert.Equal(t, 1, calls)

	// Absent uid scans the full table and no further
	calls = 0
	assert.False(t, store.ContainsMatch(9999, func(Rule) bool {
		calls++
		return true
	}))
	assert.Zero(t, calls)
}
