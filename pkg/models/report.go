package models

import "time"

// Report is a user-submitted content or bug report
type Report struct {
	ID        string    `json:"id"` // client-generated idempotency key
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"` // e.g. "content", "bug", "translation"
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AppInfo carries the minimum supported client version and maintenance flags
type AppInfo struct {
	MinimumVersion  string `json:"minimum_version"`
	LatestVersion   string `json:"latest_version"`
	MaintenanceMode bool   `json:"maintenance_mode"`
	Notice          string `json:"notice,omitempty"`
}
