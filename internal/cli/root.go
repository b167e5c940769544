package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// API is the subset of the remote client the commands use.
type API interface {
	BaseURL() string
	HasToken() bool

	Register(ctx context.Context, reg api.Registration) (models.User, error)
	Login(ctx context.Context, creds api.Credentials) (models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.User, error)

	GetAllHabits(ctx context.Context) ([]models.Habit, error)
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	UpdateHabit(ctx context.Context, id string, h models.Habit) (models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	ToggleHabitCompletion(ctx context.Context, id string) error

	GetDailyPlanner(ctx context.Context, day time.Time) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error)
	ToggleTaskCompletion(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error
}

var _ API = (*api.Client)(nil)

type Context struct {
	Store storage.Provider
	API   API

	// Clock and Location fix "now" for the analytics engine. Both default
	// to the wall clock in the system zone.
	Clock    func() time.Time
	Location *time.Location

	// Ctx is canceled on interrupt. Nil means context.Background.
	Ctx context.Context

	Out io.Writer
}

// Context returns the command's cancellation context.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Now returns the current instant in the configured timezone.
func (c *Context) Now() time.Time {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return clock().In(loc)
}

// Stdout is where commands write their output.
func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Stdout(), args...)
}

// RequireLogin fails early with a hint when no token is stored.
func (c *Context) RequireLogin() error {
	if !c.API.HasToken() {
		return fmt.Errorf("not logged in, run 'habitual login' first")
	}
	return nil
}

// FetchHabits pulls the current habit snapshot and notes the fetch in the
// local sync log.
func (c *Context) FetchHabits(ctx context.Context) ([]models.Habit, error) {
	habits, err := c.API.GetAllHabits(ctx)
	if err != nil {
		return nil, err
	}
	c.recordSync(storage.ResourceHabits, len(habits))
	return habits, nil
}

// FetchPlanner pulls the tasks for day.
func (c *Context) FetchPlanner(ctx context.Context, day time.Time) ([]models.Task, error) {
	tasks, err := c.API.GetDailyPlanner(ctx, day)
	if err != nil {
		return nil, err
	}
	c.recordSync(storage.ResourcePlanner, len(tasks))
	return tasks, nil
}

func (c *Context) recordSync(resource string, n int) {
	if c.Store == nil {
		return
	}
	if err := c.Store.RecordSync(resource, n, c.Now()); err != nil {
		logger.Warn("Failed to record sync", "resource", resource, "error", err)
	}
}

// ParseDay resolves a YYYY-MM-DD string, "today", "yesterday" or
// "tomorrow" to midnight in the configured timezone. Empty means today.
func (c *Context) ParseDay(s string) (time.Time, error) {
	now := c.Now()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return utils.StartOfDay(now), nil
	case "yesterday":
		return utils.StartOfDay(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return utils.StartOfDay(now.AddDate(0, 0, 1)), nil
	}
	day, err := utils.ParseDateInLocation(s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return day, nil
}

// ResolveHabit finds a habit by exact ID, then by case-insensitive name.
func ResolveHabit(habits []models.Habit, ref string) (models.Habit, error) {
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}

	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return models.Habit{}, fmt.Errorf("habit name %q is ambiguous, use one of the IDs: %s", ref, strings.Join(ids, ", "))
	}
}

// ResolveTask finds a task by exact ID, then by case-insensitive title.
func ResolveTask(tasks []models.Task, ref string) (models.Task, error) {
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}

	var matches []models.Task
	for _, t := range tasks {
		if strings.EqualFold(t.Title, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("task %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return models.Task{}, fmt.Errorf("task title %q is ambiguous, use one of the IDs: %s", ref, strings.Join(ids, ", "))
	}
}

// ParseWeekdays parses a comma-separated list of weekdays into 0-6 indices
// (0 = Sunday).
func ParseWeekdays(s string) ([]int, error) {
	dayMap := map[string]int{
		"sun": 0, "sunday": 0,
		"mon": 1, "monday": 1,
		"tue": 2, "tuesday": 2,
		"wed": 3, "wednesday": 3,
		"thu": 4, "thursday": 4,
		"fri": 5, "friday": 5,
		"sat": 6, "saturday": 6,
	}

	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if d, ok := dayMap[part]; ok {
			days = append(days, d)
			continue
		}
		var n int
		if _, err := fmt.Sscanf(part, "%d", &n); err == nil && n >= 0 && n <= 6 && fmt.Sprint(n) == part {
			days = append(days, n)
			continue
		}
		return nil, fmt.Errorf("invalid weekday: %s", part)
	}
	return days, nil
}

// FormatRepeat renders a repeat pattern for humans.
func FormatRepeat(rp *models.RepeatPattern) string {
	if rp == nil {
		return "once"
	}

	var unit string
	switch rp.Frequency {
	case models.RepeatDaily:
		unit = "day"
	case models.RepeatWeekly:
		unit = "week"
	case models.RepeatMonthly:
		unit = "month"
	default:
		return string(rp.Frequency)
	}

	s := string(rp.Frequency)
	if rp.Interval > 1 {
		s = fmt.Sprintf("every %d %ss", rp.Interval, unit)
	}
	if len(rp.DaysOfWeek) > 0 {
		names := make([]string, 0, len(rp.DaysOfWeek))
		for _, d := range rp.DaysOfWeek {
			if d >= 0 && d <= 6 {
				names = append(names, time.Weekday(d).String()[:3])
			}
		}
		s += " on " + strings.Join(names, ",")
	}
	if rp.EndDate != nil {
		s += " until " + rp.EndDate.Format(constants.DateFormat)
	}
	return s
}
