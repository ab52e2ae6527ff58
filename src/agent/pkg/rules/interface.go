// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package rules

// Table defines the store operations consumed by the control protocol
// handler and the admin API. This interface is useful for testing and
// dependency injection.
type Table interface {
	Add(r Rule) error
	Remove(uid uint32, text string) bool
	List(uid uint32) []Rule
	Len() int
	Capacity() int
}

// Matcher is the read-only view the enforcement decision point needs.
type Matcher interface {
	ContainsMatch(uid uint32, pred func(Rule) bool) bool
}

// Ensure Store implements both interfaces
var (
	_ Table   = (*Store)(nil)
	_ Matcher = (*Store)(nil)
)
