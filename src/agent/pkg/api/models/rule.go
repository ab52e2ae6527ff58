package models

// RuleRequest represents a rule add/remove request
type RuleRequest struct {
	UID  uint32 `json:"uid"`
	Rule string `json:"rule" binding:"required,max=255"`
}

// RuleResponse represents a rule in API responses
type RuleResponse struct {
	UID  uint32 `json:"uid"`
	Rule string `json:"rule"`
}

// RuleListResponse represents a list of rules
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
	Count int            `json:"count"`
}
