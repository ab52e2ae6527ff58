// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package testutil

import (
	"strconv"
	"strings"
)

// ParseFlatDump splits a by-uid dump (one rule text per line) into its
// rule texts.
func ParseFlatDump(dump []byte) []string {
	s := strings.TrimRight(string(dump), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ParsePrettyDump extracts the uid sections of the grouped streaming
// dump, in order of appearance. The returned map holds the rule texts
// per uid.
func ParsePrettyDump(dump []byte) (order []uint32, byUID map[uint32][]string) {
	byUID = make(map[uint32][]string)

	var current uint32
	var inSection bool
	for _, line := range strings.Split(string(dump), "\n") {
		switch {
		case strings.HasPrefix(line, "---- UID: "):
			raw := strings.TrimSuffix(strings.TrimPrefix(line, "---- UID: "), " ----")
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				continue
			}
			current = uint32(v)
			order = append(order, current)
			byUID[current] = nil
			inSection = true
		case line == " ---- ---- ----":
			inSection = false
		case inSection && strings.HasPrefix(line, "Rule "):
			if _, rest, ok := strings.Cut(line, ": "); ok {
				byUID[current] = append(byUID[current], rest)
			}
		}
	}
	return order, byUID
}
