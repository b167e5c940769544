package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "habitual"
	DefaultKeyringUser = "api-token"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// API constants
	APIPathPrefix       = "/api"
	RequestIDHeader     = "X-Request-ID"
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second
	MaxErrorBodyBytes   = 64 << 10
	MaxResponseBytes    = 8 << 20

	// TUIRefreshInterval matches the dashboard auto-refresh cadence
	TUIRefreshInterval = 15 * time.Minute
)

// Session States
const (
	StateDashboard SessionState = iota
	StateHabits
	StatePlanner
)
