package models

import "time"

type TaskType string

const (
	TaskTypeBinary TaskType = "binary"
	TaskTypeCount  TaskType = "count"
	TaskTypeValue  TaskType = "value"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type RepeatFrequency string

const (
	RepeatDaily   RepeatFrequency = "daily"
	RepeatWeekly  RepeatFrequency = "weekly"
	RepeatMonthly RepeatFrequency = "monthly"
)

type RepeatPattern struct {
	Frequency  RepeatFrequency `json:"frequency"`
	Interval   int             `json:"interval"`
	EndDate    *time.Time      `json:"endDate,omitempty"`
	DaysOfWeek []int           `json:"daysOfWeek,omitempty"` // 0=Sunday, 6=Saturday
}

type Reminder struct {
	Enabled      bool       `json:"enabled"`
	ReminderTime *time.Time `json:"reminderTime,omitempty"`
}

// Task is a planner item bound to a single calendar day.
type Task struct {
	ID            string         `json:"_id,omitempty"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Date          string         `json:"date"` // YYYY-MM-DD format
	Type          TaskType       `json:"type"`
	Quantity      *int           `json:"quantity,omitempty"` // required when Type is count
	Value         *float64       `json:"value,omitempty"`    // required when Type is value
	Completed     bool           `json:"completed"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	Priority      Priority       `json:"priority,omitempty"`
	Duration      *int           `json:"duration,omitempty"` // minutes
	Tags          []string       `json:"tags,omitempty"`
	Reminder      *Reminder      `json:"reminder,omitempty"`
	IsRecurring   bool           `json:"isRecurring"`
	RepeatPattern *RepeatPattern `json:"repeatPattern,omitempty"`
}
