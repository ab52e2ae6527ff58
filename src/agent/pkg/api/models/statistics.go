package models

// StatisticsResponse represents all agent statistics
type StatisticsResponse struct {
	RuleCount     int    `json:"rule_count"`
	RuleCapacity  int    `json:"rule_capacity"`
	TotalOpens    uint64 `json:"total_opens"`
	DroppedEvents uint64 `json:"dropped_events"`
}

// TableStatsResponse represents rule-table-specific statistics
type TableStatsResponse struct {
	RuleCount    int     `json:"rule_count"`
	RuleCapacity int     `json:"rule_capacity"`
	FillRate     float64 `json:"fill_rate"`
}

// EventStatsResponse represents interception-specific statistics
type EventStatsResponse struct {
	TotalOpens    uint64  `json:"total_opens"`
	DroppedEvents uint64  `json:"dropped_events"`
	DropRate      float64 `json:"drop_rate"`
}
