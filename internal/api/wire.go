package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

// wireID accepts identifiers sent either as strings or as numbers.
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

func pickID(primary, fallback wireID) string {
	if primary != "" {
		return string(primary)
	}
	return string(fallback)
}

// wireTime is a nullable timestamp in any format ParseWireTime accepts.
// Unparseable values decode to nil instead of failing the whole record.
type wireTime struct {
	t *time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil || s == nil || *s == "" {
		return nil
	}
	t, err := models.ParseWireTime(*s)
	if err != nil {
		logger.Debug("Ignoring malformed timestamp", "value", *s)
		return nil
	}
	w.t = &t
	return nil
}

type wireHabit struct {
	ID                wireID            `json:"_id"`
	AltID             wireID            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Frequency         string            `json:"frequency"`
	TimeOfDay         string            `json:"timeOfDay"`
	GoalType          string            `json:"goalType"`
	GoalTarget        *float64          `json:"goalTarget"`
	GoalDate          wireTime          `json:"goalDate"`
	CurrentStreak     *int              `json:"currentStreak"`
	Streak            *int              `json:"streak"`
	LongestStreak     int               `json:"longestStreak"`
	Completions       int               `json:"completions"`
	CompletionHistory []json.RawMessage `json:"completionHistory"`
	CreatedAt         wireTime          `json:"createdAt"`
	UpdatedAt         wireTime          `json:"updatedAt"`
}

func (w wireHabit) toModel() models.Habit {
	h := models.Habit{
		ID:            pickID(w.ID, w.AltID),
		Name:          w.Name,
		Description:   w.Description,
		Frequency:     models.Frequency(w.Frequency),
		TimeOfDay:     models.TimeOfDay(w.TimeOfDay),
		GoalType:      models.GoalType(w.GoalType),
		GoalDate:      w.GoalDate.t,
		LongestStreak: w.LongestStreak,
		Completions:   w.Completions,
		CreatedAt:     w.CreatedAt.t,
		UpdatedAt:     w.UpdatedAt.t,
	}
	if h.TimeOfDay == "" {
		h.TimeOfDay = models.TimeAnytime
	}
	if h.GoalType == "" {
		h.GoalType = models.GoalNone
	}
	if w.GoalTarget != nil {
		target := int(*w.GoalTarget)
		h.GoalTarget = &target
	}
	switch {
	case w.CurrentStreak != nil:
		h.CurrentStreak = *w.CurrentStreak
	case w.Streak != nil:
		h.CurrentStreak = *w.Streak
	}
	for _, raw := range w.CompletionHistory {
		var entry models.CompletionEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			logger.Debug("Skipping malformed completion entry", "habit", h.ID, "error", err)
			continue
		}
		h.CompletionHistory = append(h.CompletionHistory, entry)
	}
	return h
}

// decodeHabits decodes each habit independently so one malformed record
// does not hide the rest.
func decodeHabits(raws []json.RawMessage) []models.Habit {
	habits := make([]models.Habit, 0, len(raws))
	for _, raw := range raws {
		var w wireHabit
		if err := json.Unmarshal(raw, &w); err != nil {
			logger.Warn("Skipping undecodable habit", "error", err)
			continue
		}
		habits = append(habits, w.toModel())
	}
	return habits
}

// habitPayload is the writable subset of a habit.
type habitPayload struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Frequency   string     `json:"frequency,omitempty"`
	TimeOfDay   string     `json:"timeOfDay,omitempty"`
	GoalType    string     `json:"goalType,omitempty"`
	GoalTarget  *int       `json:"goalTarget,omitempty"`
	GoalDate    *time.Time `json:"goalDate,omitempty"`
}

func newHabitPayload(h models.Habit) habitPayload {
	p := habitPayload{
		Name:        h.Name,
		Description: h.Description,
		Frequency:   string(h.Frequency),
		TimeOfDay:   string(h.TimeOfDay),
		GoalType:    string(h.GoalType),
		GoalDate:    h.GoalDate,
	}
	if h.GoalType.HasGoal() {
		p.GoalTarget = h.GoalTarget
	}
	return p
}

type wireReminder struct {
	Enabled      bool     `json:"enabled"`
	ReminderTime wireTime `json:"reminderTime"`
}

type wireRepeatPattern struct {
	Frequency  string   `json:"frequency"`
	Interval   int      `json:"interval"`
	EndDate    wireTime `json:"endDate"`
	DaysOfWeek []int    `json:"daysOfWeek"`
}

type wireTask struct {
	ID            wireID             `json:"_id"`
	AltID         wireID             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Date          wireTime           `json:"date"`
	Type          string             `json:"type"`
	Quantity      *int               `json:"quantity"`
	Value         *float64           `json:"value"`
	Completed     bool               `json:"completed"`
	CompletedAt   wireTime           `json:"completedAt"`
	Priority      string             `json:"priority"`
	Duration      *int               `json:"duration"`
	Tags          []string           `json:"tags"`
	Reminder      *wireReminder      `json:"reminder"`
	IsRecurring   bool               `json:"isRecurring"`
	RepeatPattern *wireRepeatPattern `json:"repeatPattern"`
}

func (w wireTask) toModel() models.Task {
	t := models.Task{
		ID:          pickID(w.ID, w.AltID),
		Title:       w.Title,
		Description: w.Description,
		Type:        models.TaskType(w.Type),
		Quantity:    w.Quantity,
		Value:       w.Value,
		Completed:   w.Completed,
		CompletedAt: w.CompletedAt.t,
		Priority:    models.Priority(w.Priority),
		Duration:    w.Duration,
		Tags:        w.Tags,
		IsRecurring: w.IsRecurring,
	}
	// Task dates are calendar days stored as UTC midnight by the service
	if w.Date.t != nil {
		t.Date = w.Date.t.UTC().Format(constants.DateFormat)
	}
	if t.Type == "" {
		t.Type = models.TaskTypeBinary
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if w.Reminder != nil {
		t.Reminder = &models.Reminder{
			Enabled:      w.Reminder.Enabled,
			ReminderTime: w.Reminder.ReminderTime.t,
		}
	}
	if w.RepeatPattern != nil {
		t.RepeatPattern = &models.RepeatPattern{
			Frequency:  models.RepeatFrequency(w.RepeatPattern.Frequency),
			Interval:   w.RepeatPattern.Interval,
			EndDate:    w.RepeatPattern.EndDate.t,
			DaysOfWeek: w.RepeatPattern.DaysOfWeek,
		}
	}
	return t
}

func decodeTasks(raws []json.RawMessage) []models.Task {
	tasks := make([]models.Task, 0, len(raws))
	for _, raw := range raws {
		var w wireTask
		if err := json.Unmarshal(raw, &w); err != nil {
			logger.Warn("Skipping undecodable task", "error", err)
			continue
		}
		tasks = append(tasks, w.toModel())
	}
	return tasks
}

type wireUser struct {
	ID     wireID `json:"id"`
	AltID  wireID `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (w wireUser) toModel() models.User {
	return models.User{
		ID:     pickID(w.ID, w.AltID),
		Name:   w.Name,
		Email:  w.Email,
		Avatar: w.Avatar,
	}
}

// unwrap returns the value stored under key when the body is an object
// carrying it, otherwise the body itself. The service is inconsistent about
// enveloping single resources.
func unwrap(body json.RawMessage, key string) json.RawMessage {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if inner, ok := env[key]; ok && len(inner) > 0 && !bytes.Equal(inner, []byte("null")) {
		return inner
	}
	return body
}
