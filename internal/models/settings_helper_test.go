package models

import (
	"testing"

	"github.com/julianstephens/habitual/internal/constants"
)

func TestMapToSettings(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]string
		want    Settings
		wantErr bool
	}{
		{
			name: "all keys",
			data: map[string]string{
				constants.SettingAPIURL:            "http://localhost:5000",
				constants.SettingTimezone:          "UTC",
				constants.SettingRetryMax:          "2",
				constants.SettingRequestTimeoutSec: "20",
			},
			want: Settings{APIURL: "http://localhost:5000", Timezone: "UTC", RetryMax: 2, RequestTimeoutSec: 20},
		},
		{
			name: "unknown keys ignored",
			data: map[string]string{"day_start": "07:00", constants.SettingTimezone: "UTC"},
			want: Settings{Timezone: "UTC"},
		},
		{
			name:    "bad retry value",
			data:    map[string]string{constants.SettingRetryMax: "many"},
			wantErr: true,
		},
		{
			name:    "bad timeout value",
			data:    map[string]string{constants.SettingRequestTimeoutSec: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapToSettings(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MapToSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("MapToSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettingsRoundTripThroughMap(t *testing.T) {
	original := Settings{APIURL: "https://example.com", Timezone: "Europe/Berlin", RetryMax: 0, RequestTimeoutSec: 5}

	got, err := MapToSettings(SettingsToMap(original))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if got != original {
		t.Errorf("round trip = %+v, want %+v", got, original)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			name: "empty gets defaults except retry",
			in:   Settings{},
			want: Settings{
				APIURL:            constants.DefaultAPIURL,
				Timezone:          constants.DefaultTimezone,
				RetryMax:          0,
				RequestTimeoutSec: constants.DefaultRequestTimeoutSec,
			},
		},
		{
			name: "negative retry reset",
			in:   Settings{APIURL: "x", Timezone: "UTC", RetryMax: -1, RequestTimeoutSec: 9},
			want: Settings{APIURL: "x", Timezone: "UTC", RetryMax: constants.DefaultRetryMax, RequestTimeoutSec: 9},
		},
		{
			name: "set values kept",
			in:   Settings{APIURL: "x", Timezone: "UTC", RetryMax: 5, RequestTimeoutSec: 60},
			want: Settings{APIURL: "x", Timezone: "UTC", RetryMax: 5, RequestTimeoutSec: 60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			ApplyDefaultSettings(&got)
			if got != tt.want {
				t.Errorf("ApplyDefaultSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if d := DefaultSettings(); d.RetryMax != constants.DefaultRetryMax {
		t.Errorf("DefaultSettings().RetryMax = %d, want %d", d.RetryMax, constants.DefaultRetryMax)
	}
}
