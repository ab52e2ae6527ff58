package models

import "github.com/lucaxaverius/Rust4Linux/src/agent/pkg/audit"

// AuditListResponse represents a page of recorded decisions
type AuditListResponse struct {
	Entries []audit.Entry `json:"entries"`
	Count   int           `json:"count"`
}
