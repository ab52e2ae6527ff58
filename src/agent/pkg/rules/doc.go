// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package rules holds the per-uid security rule table and the store
// that guards it.
//
// A rule is an opaque string bound to the uid it was registered for.
// The table is an ordered, bounded collection: insertion order is
// preserved so dumps are deterministic, and adds beyond the configured
// capacity fail instead of growing without bound.
//
// # Concurrency
//
// All table access goes through a single sync.RWMutex owned by the
// Store. Enforcement-side lookups (ContainsMatch) and dumps (List)
// take the read lock and may run concurrently; administrative writes
// (Add, Remove) take the write lock and are serialized against both
// readers and each other. Nothing is ever done under a lock except
// touching the table: input validation and decoding happen before
// acquisition (see pkg/wire), and List hands back an owned snapshot,
// never a live view.
//
// # Example Usage
//
//	store := rules.NewStore(1024)
//
//	if err := store.Add(rules.Rule{OwnerUID: 1000, Text: "no-write"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	flagged := store.ContainsMatch(1000, func(r rules.Rule) bool { return true })
//
//	for _, r := range store.List(rules.AllUsers) {
//	    fmt.Println(r.OwnerUID, r.Text)
//	}
package rules
