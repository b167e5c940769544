package models

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingAPIURL:
			settings.APIURL = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingRetryMax:
			if _, err := fmt.Sscanf(value, "%d", &settings.RetryMax); err != nil {
				return Settings{}, fmt.Errorf("parsing retry_max: %w", err)
			}
		case constants.SettingRequestTimeoutSec:
			if _, err := fmt.Sscanf(value, "%d", &settings.RequestTimeoutSec); err != nil {
				return Settings{}, fmt.Errorf("parsing request_timeout_sec: %w", err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingAPIURL:            settings.APIURL,
		constants.SettingTimezone:          settings.Timezone,
		constants.SettingRetryMax:          fmt.Sprintf("%d", settings.RetryMax),
		constants.SettingRequestTimeoutSec: fmt.Sprintf("%d", settings.RequestTimeoutSec),
	}
}

// DefaultSettings returns the settings written to a fresh store.
func DefaultSettings() Settings {
	return Settings{
		APIURL:            constants.DefaultAPIURL,
		Timezone:          constants.DefaultTimezone,
		RetryMax:          constants.DefaultRetryMax,
		RequestTimeoutSec: constants.DefaultRequestTimeoutSec,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// A zero RetryMax is a valid choice and is left alone.
func ApplyDefaultSettings(settings *Settings) {
	if settings.APIURL == "" {
		settings.APIURL = constants.DefaultAPIURL
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.RetryMax < 0 {
		settings.RetryMax = constants.DefaultRetryMax
	}
	if settings.RequestTimeoutSec <= 0 {
		settings.RequestTimeoutSec = constants.DefaultRequestTimeoutSec
	}
}
