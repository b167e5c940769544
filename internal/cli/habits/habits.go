package habits

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's status."`
	Show   HabitShowCmd   `cmd:"" help:"Show a habit's streaks, goal and recent history."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle today's completion for a habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `short:"D" help:"Optional description."`
	Frequency   string `short:"f" help:"Frequency (daily|weekdays|weekly)." default:"daily"`
	TimeOfDay   string `short:"t" name:"time-of-day" help:"Time of day (morning|afternoon|evening|anytime)." default:"anytime"`
	Goal        string `short:"g" help:"Goal type (none|monthly|yearly|custom|streak|completion)." default:"none"`
	Target      int    `help:"Goal target (completions or streak length)."`
	GoalDate    string `name:"goal-date" help:"Goal target date (YYYY-MM-DD). Required for custom goals."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	habit := models.Habit{
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		Frequency:   models.Frequency(c.Frequency),
		TimeOfDay:   models.TimeOfDay(c.TimeOfDay),
		GoalType:    models.GoalType(c.Goal),
	}
	if err := ApplyGoal(ctx, &habit, c.Target, c.GoalDate); err != nil {
		return err
	}

	created, err := ctx.API.CreateHabit(ctx.Context(), habit)
	if err != nil {
		return err
	}
	logger.Info("Created habit", "id", created.ID)
	ctx.Printf("Added habit: %s (ID: %s)\n", created.Name, created.ID)
	return nil
}

// ApplyGoal fills the goal fields, validates the habit and resolves the goal
// target date the way the service expects it.
func ApplyGoal(ctx *cli.Context, habit *models.Habit, target int, goalDate string) error {
	if habit.GoalType.HasGoal() {
		if target != 0 {
			habit.GoalTarget = &target
		}
		if goalDate != "" {
			day, err := ctx.ParseDay(goalDate)
			if err != nil {
				return err
			}
			habit.GoalDate = &day
		}
	} else {
		habit.GoalTarget = nil
		habit.GoalDate = nil
	}

	now := ctx.Now()
	result := validation.NewAt(now).ValidateHabit(*habit)
	if result.HasIssues() {
		return result.Err()
	}

	resolved, err := analytics.ResolveGoalTargetDate(habit.GoalType, habit.GoalDate, now)
	if err != nil {
		return err
	}
	habit.GoalDate = resolved
	return nil
}

type HabitListCmd struct {
	Sort string `help:"Sort order (name|streak)." enum:"name,streak" default:"name"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habitual habit add <name>'.")
		return nil
	}

	switch c.Sort {
	case "streak":
		sort.SliceStable(habits, func(i, j int) bool {
			return habits[i].CurrentStreak > habits[j].CurrentStreak
		})
	default:
		sort.SliceStable(habits, func(i, j int) bool {
			return strings.ToLower(habits[i].Name) < strings.ToLower(habits[j].Name)
		})
	}

	now := ctx.Now()
	for _, h := range habits {
		mark := "[ ]"
		if analytics.IsCompletedToday(h, now) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s  streak %d (best %d)", mark, h.Name, h.CurrentStreak, h.LongestStreak)
		if h.GoalType.HasGoal() {
			line += fmt.Sprintf("  goal %d%%", analytics.GoalProgress(h))
		}
		ctx.Printf("%s  [%s]\n", line, h.ID)
	}

	today := analytics.TodayCompletion(habits, now)
	ctx.Printf("\n%d/%d completed today (%d%%)\n", today.Completed, today.Total, today.Rate)
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Days  int    `help:"Number of history days to show." default:"14"`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	now := ctx.Now()
	ctx.Printf("%s [%s]\n", h.Name, h.ID)
	if h.Description != "" {
		ctx.Printf("  %s\n", h.Description)
	}
	ctx.Printf("  Frequency:      %s\n", h.Frequency)
	ctx.Printf("  Time of day:    %s\n", h.TimeOfDay)
	ctx.Printf("  Current streak: %d\n", h.CurrentStreak)
	ctx.Printf("  Longest streak: %d\n", h.LongestStreak)
	ctx.Printf("  Completions:    %d\n", h.Completions)
	ctx.Printf("  Done today:     %v\n", analytics.IsCompletedToday(h, now))

	for _, w := range analytics.Windows {
		ctx.Printf("  %-15s %d%%\n", strings.ToUpper(string(w[:1]))+string(w[1:])+":", analytics.HabitWindowRate(h, w, now))
	}

	if h.GoalType.HasGoal() {
		g := analytics.GoalDeadline(h, now)
		ctx.Printf("  Goal:           %s, %d/%d (%d%%)\n", g.GoalType, g.Completions, g.Target, g.Progress)
		if g.TargetDate != nil {
			if g.Expired {
				ctx.Printf("  Deadline:       %s (expired)\n", g.TargetDate.Format(constants.DateFormat))
			} else {
				ctx.Printf("  Deadline:       %s (%d days left)\n", g.TargetDate.Format(constants.DateFormat), g.DaysLeft)
			}
		}
	}

	if c.Days > 0 {
		ctx.Println()
		ctx.Println(historyLine(h, now, c.Days))
	}
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	if err := ctx.API.ToggleHabitCompletion(ctx.Context(), h.ID); err != nil {
		return err
	}

	// Streaks are recomputed by the service, so read them back
	habits, err = ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	h, err = cli.ResolveHabit(habits, h.ID)
	if err != nil {
		return err
	}

	if analytics.IsCompletedToday(h, ctx.Now()) {
		ctx.Printf("✓ %s done for today (streak %d)\n", h.Name, h.CurrentStreak)
	} else {
		ctx.Printf("○ %s marked not done (streak %d)\n", h.Name, h.CurrentStreak)
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit ID or name."`
	Name        *string `help:"New name."`
	Description *string `short:"D" help:"New description."`
	Frequency   *string `short:"f" help:"New frequency (daily|weekdays|weekly)."`
	TimeOfDay   *string `short:"t" name:"time-of-day" help:"New time of day."`
	Goal        *string `short:"g" help:"New goal type."`
	Target      *int    `help:"New goal target."`
	GoalDate    *string `name:"goal-date" help:"New goal target date (YYYY-MM-DD)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	if c.Name != nil {
		h.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		h.Description = *c.Description
	}
	if c.Frequency != nil {
		h.Frequency = models.Frequency(*c.Frequency)
	}
	if c.TimeOfDay != nil {
		h.TimeOfDay = models.TimeOfDay(*c.TimeOfDay)
	}
	if c.Goal != nil {
		h.GoalType = models.GoalType(*c.Goal)
	}

	target := 0
	if h.GoalTarget != nil {
		target = *h.GoalTarget
	}
	if c.Target != nil {
		target = *c.Target
	}
	goalDate := ""
	if c.GoalDate != nil {
		goalDate = *c.GoalDate
	} else if h.GoalDate != nil && h.GoalType == models.GoalCustom {
		goalDate = h.GoalDate.In(ctx.Now().Location()).Format(constants.DateFormat)
	}
	h.GoalDate = nil
	if err := ApplyGoal(ctx, &h, target, goalDate); err != nil {
		return err
	}

	updated, err := ctx.API.UpdateHabit(ctx.Context(), h.ID, h)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Yes   bool   `short:"y" help:"Skip confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(habits, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm(fmt.Sprintf("Delete habit %q and its history?", h.Name), true)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.API.DeleteHabit(ctx.Context(), h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

// historyLine renders the last n days oldest first, one glyph per day.
func historyLine(h models.Habit, now time.Time, n int) string {
	loc := now.Location()
	start := utils.StartOfDay(now).AddDate(0, 0, -(n - 1))

	var b strings.Builder
	b.WriteString(start.Format("Jan 02") + " ")
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i)
		glyph := "·"
		for _, e := range h.CompletionHistory {
			if e.Completed && utils.SameDay(e.Date, day, loc) {
				glyph = "■"
				break
			}
		}
		b.WriteString(glyph)
	}
	b.WriteString(" today")
	return b.String()
}
