// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package wire is the boundary codec between the fixed-layout control
// protocol and internal rule records.
//
// Requests arrive as untrusted byte payloads with a fixed layout:
// a little-endian u32 uid followed by a 256-byte rule buffer whose
// logical length is the position of the first NUL. The codec validates
// and copies everything into owned values before any other component
// sees it; no raw caller buffer crosses this package. All functions
// are pure: no locking, no store access.
package wire
