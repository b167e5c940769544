package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseWireTime(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339 millis", in: "2026-10-15T00:00:00.000Z", want: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 offset", in: "2026-10-15T08:15:00-04:00", want: time.Date(2026, 10, 15, 12, 15, 0, 0, time.UTC)},
		{name: "no zone", in: "2026-10-15T08:15:00", want: time.Date(2026, 10, 15, 8, 15, 0, 0, time.UTC)},
		{name: "bare date is utc midnight", in: "2026-10-15", want: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", in: "yesterday", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWireTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWireTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseWireTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompletionEntryUnmarshal(t *testing.T) {
	var entries []CompletionEntry
	data := `[{"date":"2026-10-15T00:00:00.000Z","completed":true},{"date":"2026-10-14","completed":false}]`
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if !entries[0].Completed || entries[1].Completed {
		t.Errorf("completed flags = %v, %v", entries[0].Completed, entries[1].Completed)
	}
	if want := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC); !entries[1].Date.Equal(want) {
		t.Errorf("entries[1].Date = %v, want %v", entries[1].Date, want)
	}

	var bad CompletionEntry
	if err := json.Unmarshal([]byte(`{"date":"soon","completed":true}`), &bad); err == nil {
		t.Error("Unmarshal() expected error for bad date")
	}
}

func TestGoalTypeHasGoal(t *testing.T) {
	tests := []struct {
		goal GoalType
		want bool
	}{
		{goal: "", want: false},
		{goal: GoalNone, want: false},
		{goal: GoalMonthly, want: true},
		{goal: GoalYearly, want: true},
		{goal: GoalCustom, want: true},
		{goal: GoalStreak, want: true},
		{goal: GoalCompletion, want: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.goal), func(t *testing.T) {
			if got := tt.goal.HasGoal(); got != tt.want {
				t.Errorf("HasGoal() = %v, want %v", got, tt.want)
			}
		})
	}
}
