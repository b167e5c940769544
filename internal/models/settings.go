package models

// Settings represents client-side settings persisted in the local store
type Settings struct {
	APIURL            string `json:"api_url"`             // base URL of the remote service, without the /api suffix
	Timezone          string `json:"timezone"`            // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	RetryMax          int    `json:"retry_max"`           // maximum retries for failed API requests
	RequestTimeoutSec int    `json:"request_timeout_sec"` // per-request timeout in seconds
}
