// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package rules

import "errors"

var (
	// ErrInvalidInput marks input rejected at the boundary: oversized or
	// unterminated rule text, an empty rule, or a sentinel uid used as a
	// record owner.
	ErrInvalidInput = errors.New("invalid rule input")

	// ErrTableFull is returned by Add when the table already holds the
	// configured maximum number of records.
	ErrTableFull = errors.New("rule table full")

	// ErrTruncated reports a dump that did not fit its destination
	// buffer. It is a partial-success marker, not a failure: the bytes
	// written up to the last complete record are valid.
	ErrTruncated = errors.New("dump truncated")
)
