package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// IssueType represents the kind of validation problem
type IssueType string

const (
	IssueMissingField       IssueType = "missing_field"
	IssueInvalidValue       IssueType = "invalid_value"
	IssueInvalidDateTime    IssueType = "invalid_datetime"
	IssueInvalidRecurrence  IssueType = "invalid_recurrence"
	IssueInvalidGoal        IssueType = "invalid_goal"
	IssueDuplicateTaskTitle IssueType = "duplicate_task_title"
)

// Issue is one problem found in form input
type Issue struct {
	Type        IssueType
	Field       string
	Description string
	IDs         []string // IDs of records involved, when known
}

// ValidationResult contains all detected issues
type ValidationResult struct {
	Issues []Issue
}

// HasIssues returns true if there are any issues
func (vr *ValidationResult) HasIssues() bool {
	return len(vr.Issues) > 0
}

// FormatReport returns a human-readable report of all issues
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasIssues() {
		return "No issues detected."
	}

	var b strings.Builder
	b.WriteString("Invalid input:\n")
	for _, issue := range vr.Issues {
		fmt.Fprintf(&b, "- %s\n", issue.Description)
	}
	return b.String()
}

// Err returns nil when the result is clean, otherwise an error listing every issue.
func (vr *ValidationResult) Err() error {
	if !vr.HasIssues() {
		return nil
	}
	msgs := make([]string, len(vr.Issues))
	for i, issue := range vr.Issues {
		msgs[i] = issue.Description
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (vr *ValidationResult) add(t IssueType, field, format string, args ...interface{}) {
	vr.Issues = append(vr.Issues, Issue{
		Type:        t,
		Field:       field,
		Description: fmt.Sprintf(format, args...),
	})
}

// Validator checks habit and task input before it is sent to the service.
// now anchors "today" for goal-date checks.
type Validator struct {
	now func() time.Time
}

// New creates a Validator that uses the wall clock
func New() *Validator {
	return &Validator{now: time.Now}
}

// NewAt creates a Validator pinned to a fixed instant
func NewAt(now time.Time) *Validator {
	return &Validator{now: func() time.Time { return now }}
}

// ValidateHabit checks a habit about to be created or updated.
func (v *Validator) ValidateHabit(h models.Habit) ValidationResult {
	result := ValidationResult{}

	if strings.TrimSpace(h.Name) == "" {
		result.add(IssueMissingField, "name", "Habit name is required")
	}

	switch h.Frequency {
	case "", models.FrequencyDaily, models.FrequencyWeekdays, models.FrequencyWeekly:
	default:
		result.add(IssueInvalidValue, "frequency", "Invalid frequency %q (want daily, weekdays or weekly)", h.Frequency)
	}

	switch h.TimeOfDay {
	case "", models.TimeMorning, models.TimeAfternoon, models.TimeEvening, models.TimeAnytime:
	default:
		result.add(IssueInvalidValue, "timeOfDay", "Invalid time of day %q", h.TimeOfDay)
	}

	if !h.GoalType.HasGoal() {
		return result
	}

	if h.GoalTarget == nil {
		result.add(IssueInvalidGoal, "goalTarget", "Goal target is required for %s goals", h.GoalType)
	} else if *h.GoalTarget <= 0 {
		result.add(IssueInvalidGoal, "goalTarget", "Goal target must be positive, got %d", *h.GoalTarget)
	}

	if _, err := analytics.ResolveGoalTargetDate(h.GoalType, h.GoalDate, v.now()); err != nil {
		switch {
		case errors.Is(err, analytics.ErrUnknownGoalType):
			result.add(IssueInvalidValue, "goalType", "Invalid goal type %q", h.GoalType)
		case errors.Is(err, analytics.ErrGoalDateRequired):
			result.add(IssueInvalidGoal, "goalDate", "Custom goals need a target date")
		case errors.Is(err, analytics.ErrGoalDateInPast):
			result.add(IssueInvalidGoal, "goalDate", "Goal date %s is in the past", h.GoalDate.Format(constants.DateFormat))
		default:
			result.add(IssueInvalidGoal, "goalDate", "%v", err)
		}
	}

	return result
}

// ValidateTask checks a single task about to be created or updated.
func (v *Validator) ValidateTask(t models.Task) ValidationResult {
	result := ValidationResult{}

	if strings.TrimSpace(t.Title) == "" {
		result.add(IssueMissingField, "title", "Task title is required")
	}

	taskDate, err := time.Parse(constants.DateFormat, t.Date)
	if err != nil {
		result.add(IssueInvalidDateTime, "date", "Task date %q is not YYYY-MM-DD", t.Date)
	}

	switch t.Type {
	case "", models.TaskTypeBinary:
		if t.Quantity != nil {
			result.add(IssueInvalidValue, "quantity", "Quantity only applies to count tasks")
		}
		if t.Value != nil {
			result.add(IssueInvalidValue, "value", "Value only applies to value tasks")
		}
	case models.TaskTypeCount:
		if t.Quantity == nil || *t.Quantity <= 0 {
			result.add(IssueMissingField, "quantity", "Count tasks need a positive quantity")
		}
		if t.Value != nil {
			result.add(IssueInvalidValue, "value", "Value only applies to value tasks")
		}
	case models.TaskTypeValue:
		if t.Value == nil {
			result.add(IssueMissingField, "value", "Value tasks need a value")
		}
		if t.Quantity != nil {
			result.add(IssueInvalidValue, "quantity", "Quantity only applies to count tasks")
		}
	default:
		result.add(IssueInvalidValue, "type", "Invalid task type %q (want binary, count or value)", t.Type)
	}

	switch t.Priority {
	case "", models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		result.add(IssueInvalidValue, "priority", "Invalid priority %q (want low, medium or high)", t.Priority)
	}

	if t.Duration != nil && *t.Duration <= 0 {
		result.add(IssueInvalidValue, "duration", "Duration must be a positive number of minutes")
	}

	for _, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" {
			result.add(IssueInvalidValue, "tags", "Tags cannot be blank")
			break
		}
	}

	if t.Reminder != nil && t.Reminder.Enabled && t.Reminder.ReminderTime == nil {
		result.add(IssueMissingField, "reminder", "Enabled reminders need a time")
	}

	if t.IsRecurring && t.RepeatPattern == nil {
		result.add(IssueInvalidRecurrence, "repeatPattern", "Recurring tasks need a repeat pattern")
	}
	if t.RepeatPattern != nil {
		validateRepeatPattern(&result, *t.RepeatPattern, taskDate)
	}

	return result
}

func validateRepeatPattern(result *ValidationResult, rp models.RepeatPattern, taskDate time.Time) {
	switch rp.Frequency {
	case models.RepeatDaily, models.RepeatWeekly, models.RepeatMonthly:
	default:
		result.add(IssueInvalidRecurrence, "repeatPattern.frequency", "Invalid repeat frequency %q (want daily, weekly or monthly)", rp.Frequency)
	}

	if rp.Interval < 1 {
		result.add(IssueInvalidRecurrence, "repeatPattern.interval", "Repeat interval must be at least 1, got %d", rp.Interval)
	}

	if len(rp.DaysOfWeek) > 0 && rp.Frequency != models.RepeatWeekly {
		result.add(IssueInvalidRecurrence, "repeatPattern.daysOfWeek", "Days of week only apply to weekly recurrence")
	}
	for _, d := range rp.DaysOfWeek {
		if d < 0 || d > 6 {
			result.add(IssueInvalidRecurrence, "repeatPattern.daysOfWeek", "Day of week %d is out of range 0-6", d)
		}
	}

	if rp.EndDate != nil && !taskDate.IsZero() {
		y, m, d := rp.EndDate.Date()
		end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if end.Before(taskDate) {
			result.add(IssueInvalidRecurrence, "repeatPattern.endDate", "Repeat end date %s is before the task date %s",
				end.Format(constants.DateFormat), taskDate.Format(constants.DateFormat))
		}
	}
}

// ValidatePlanner checks a day's tasks as a whole. It reports tasks that
// share a title on the same date, which usually means a double submit.
func (v *Validator) ValidatePlanner(tasks []models.Task) ValidationResult {
	result := ValidationResult{}

	type key struct{ date, title string }
	seen := make(map[key][]string)
	var order []key
	for _, t := range tasks {
		title := strings.TrimSpace(strings.ToLower(t.Title))
		if title == "" {
			continue
		}
		k := key{t.Date, title}
		if _, ok := seen[k]; !ok {
			order = append(order, k)
		}
		seen[k] = append(seen[k], t.ID)
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].date < order[j].date })
	for _, k := range order {
		ids := seen[k]
		if len(ids) < 2 {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Type:        IssueDuplicateTaskTitle,
			Field:       "title",
			Description: fmt.Sprintf("Duplicate task %q on %s (IDs: %v)", k.title, k.date, ids),
			IDs:         ids,
		})
	}

	return result
}
