package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekly   Frequency = "weekly"
)

type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeAnytime   TimeOfDay = "anytime"
)

type GoalType string

const (
	GoalNone       GoalType = "none"
	GoalMonthly    GoalType = "monthly"
	GoalYearly     GoalType = "yearly"
	GoalCustom     GoalType = "custom"
	GoalStreak     GoalType = "streak"
	GoalCompletion GoalType = "completion"
)

// HasGoal reports whether the goal type carries a goal at all.
// An empty goal type is treated the same as "none".
func (g GoalType) HasGoal() bool {
	return g != "" && g != GoalNone
}

// CompletionEntry is one day's record in a habit's completion history.
type CompletionEntry struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

func (e *CompletionEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date      string `json:"date"`
		Completed bool   `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseWireTime(raw.Date)
	if err != nil {
		return fmt.Errorf("completion entry: %w", err)
	}
	e.Date = date
	e.Completed = raw.Completed
	return nil
}

// Habit represents a recurring activity tracked by the remote service.
// Streak and completion counters are maintained server-side.
type Habit struct {
	ID                string            `json:"_id,omitempty"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Frequency         Frequency         `json:"frequency,omitempty"`
	TimeOfDay         TimeOfDay         `json:"timeOfDay,omitempty"`
	GoalType          GoalType          `json:"goalType,omitempty"`
	GoalTarget        *int              `json:"goalTarget,omitempty"`
	GoalDate          *time.Time        `json:"goalDate,omitempty"`
	CurrentStreak     int               `json:"currentStreak,omitempty"`
	LongestStreak     int               `json:"longestStreak,omitempty"`
	Completions       int               `json:"completions,omitempty"`
	CompletionHistory []CompletionEntry `json:"completionHistory,omitempty"`
	CreatedAt         *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time        `json:"updatedAt,omitempty"`
}
