package constants

const (
	SettingAPIURL            = "api_url"
	SettingTimezone          = "timezone"
	SettingRetryMax          = "retry_max"
	SettingRequestTimeoutSec = "request_timeout_sec"

	// Default Settings Values
	DefaultAPIURL            = "https://pm-server-my0k.onrender.com"
	DefaultTimezone          = "Local" // Use system local timezone by default
	DefaultRetryMax          = 3
	DefaultRequestTimeoutSec = 15
)
