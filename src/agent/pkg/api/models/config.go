package models

// ConfigResponse represents the current daemon configuration
type ConfigResponse struct {
	ControlSocket string `json:"control_socket"`
	MaxRules      int    `json:"max_rules"`
	BPFObject     string `json:"bpf_object,omitempty"`
	AuditDB       string `json:"audit_db,omitempty"`
	LogLevel      string `json:"log_level"`
	StatsInterval int    `json:"stats_interval"`
	APIHost       string `json:"api_host"`
	APIPort       int    `json:"api_port"`
}
