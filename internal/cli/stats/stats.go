package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// Output is the machine-readable stats document.
type Output struct {
	analytics.Snapshot `yaml:",inline"`
	Window             *WindowOutput        `json:"window,omitempty" yaml:"window,omitempty"`
	Planner            *analytics.TaskStats `json:"planner,omitempty" yaml:"planner,omitempty"`
}

// WindowOutput breaks one window's rate down per habit.
type WindowOutput struct {
	Name     analytics.Window `json:"name" yaml:"name"`
	Rate     int              `json:"rate" yaml:"rate"`
	PerHabit map[string]int   `json:"per_habit" yaml:"per_habit"`
}

type StatsCmd struct {
	Format  string `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
	Window  string `short:"w" help:"Break one window down per habit (daily|weekly|monthly|yearly)."`
	Planner bool   `help:"Include today's planner progress."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	var window analytics.Window
	if c.Window != "" {
		w, err := analytics.ParseWindow(strings.ToLower(c.Window))
		if err != nil {
			return err
		}
		window = w
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	now := ctx.Now()
	out := Output{Snapshot: analytics.Dashboard(habits, now)}

	if window != "" {
		wo := &WindowOutput{
			Name:     window,
			Rate:     analytics.WindowRate(habits, window, now),
			PerHabit: make(map[string]int, len(habits)),
		}
		for _, h := range habits {
			wo.PerHabit[h.Name] = analytics.HabitWindowRate(h, window, now)
		}
		out.Window = wo
	}

	if c.Planner {
		tasks, err := ctx.FetchPlanner(ctx.Context(), now)
		if err != nil {
			return err
		}
		ts := analytics.TaskProgress(tasks)
		out.Planner = &ts
	}

	switch c.Format {
	case "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		ctx.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		ctx.Printf("%s", data)
	default:
		printText(ctx, out)
	}
	return nil
}

func printText(ctx *cli.Context, out Output) {
	snap := out.Snapshot
	ctx.Println(headingStyle.Render("Completion rates"))
	ctx.Printf("  Daily:    %3d%%\n", snap.Rates.Daily)
	ctx.Printf("  Weekly:   %3d%%\n", snap.Rates.Weekly)
	ctx.Printf("  Monthly:  %3d%%\n", snap.Rates.Monthly)
	ctx.Printf("  Yearly:   %3d%%\n", snap.Rates.Yearly)
	ctx.Printf("  Best:     %3d%%\n", snap.Best)
	ctx.Printf("  Average:  %3d%%\n", snap.Average)

	sum := snap.Summary
	ctx.Println()
	ctx.Println(headingStyle.Render("Summary"))
	ctx.Printf("  Habits:            %d\n", sum.TotalHabits)
	ctx.Printf("  Completed today:   %d/%d (%d%%)\n", sum.CompletedToday, sum.TotalHabits, sum.CompletionRateToday)
	ctx.Printf("  Longest streak:    %d\n", sum.MaxStreak)
	ctx.Printf("  Average streak:    %d\n", sum.AvgStreak)
	ctx.Printf("  Active streaks:    %d\n", sum.ActiveStreaks)
	ctx.Printf("  Perfect days:      %d\n", sum.PerfectDays)
	ctx.Printf("  Total completions: %d\n", sum.TotalCompletions)
	ctx.Printf("  Habits with goals: %d\n", sum.HabitsWithGoals)

	if len(snap.Goals) > 0 {
		ctx.Println()
		ctx.Println(headingStyle.Render("Goals"))
		for _, g := range snap.Goals {
			line := fmt.Sprintf("  %s: %d/%d (%d%%)", g.Name, g.Completions, g.Target, g.Progress)
			if g.TargetDate != nil {
				if g.Expired {
					line += fmt.Sprintf(", ended %s", g.TargetDate.Format(constants.DateFormat))
				} else {
					line += fmt.Sprintf(", %d days left", g.DaysLeft)
				}
			}
			ctx.Println(line)
		}
	}

	if out.Window != nil {
		ctx.Println()
		ctx.Println(headingStyle.Render(fmt.Sprintf("%s rate by habit", out.Window.Name)))
		names := make([]string, 0, len(out.Window.PerHabit))
		for name := range out.Window.PerHabit {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ctx.Printf("  %-20s %3d%%\n", name, out.Window.PerHabit[name])
		}
	}

	if out.Planner != nil {
		ctx.Println()
		ctx.Println(headingStyle.Render("Planner today"))
		ctx.Printf("  %d/%d tasks done (%d%%)\n", out.Planner.Completed, out.Planner.Total, out.Planner.Rate)
	}
}
