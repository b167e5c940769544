package tasks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/validation"
)

var priorityRank = map[models.Priority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

var dimStyle = lipgloss.NewStyle().Faint(true)

type PlannerCmd struct {
	Date string `short:"d" help:"Day to show (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
}

func (c *PlannerCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	tasks, err := ctx.FetchPlanner(ctx.Context(), day)
	if err != nil {
		return err
	}

	ctx.Printf("Planner for %s\n\n", day.Format("Monday, Jan 2 2006"))
	if len(tasks) == 0 {
		ctx.Println("No tasks planned. Add one with 'habitual task add <title>'.")
		return nil
	}

	SortTasks(tasks)
	for _, t := range tasks {
		ctx.Println(FormatTask(t, day.Location()))
	}

	stats := analytics.TaskProgress(tasks)
	ctx.Printf("\n%d/%d done (%d%%)", stats.Completed, stats.Total, stats.Rate)
	if stats.Pending > 0 {
		var parts []string
		for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
			if n := stats.ByPriority[p]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, p))
			}
		}
		ctx.Printf(", pending: %s", strings.Join(parts, ", "))
	}
	ctx.Println()

	if result := validation.NewAt(ctx.Now()).ValidatePlanner(tasks); result.HasIssues() {
		ctx.Println()
		for _, issue := range result.Issues {
			ctx.Printf("⚠ %s\n", issue.Description)
		}
	}
	return nil
}

// SortTasks orders open tasks before completed ones, then by priority.
func SortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Completed != tasks[j].Completed {
			return !tasks[i].Completed
		}
		return rank(tasks[i].Priority) < rank(tasks[j].Priority)
	})
}

func rank(p models.Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[models.PriorityMedium]
}

// FormatTask renders one planner line. Reminder times are shown in loc.
func FormatTask(t models.Task, loc *time.Location) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	priority := t.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	line := fmt.Sprintf("%s %-6s %s", mark, priority, t.Title)
	switch t.Type {
	case models.TaskTypeCount:
		if t.Quantity != nil {
			line += fmt.Sprintf(" (x%d)", *t.Quantity)
		}
	case models.TaskTypeValue:
		if t.Value != nil {
			line += fmt.Sprintf(" (%g)", *t.Value)
		}
	}

	var extra []string
	if t.Duration != nil {
		extra = append(extra, fmt.Sprintf("%dm", *t.Duration))
	}
	if t.Reminder != nil && t.Reminder.Enabled && t.Reminder.ReminderTime != nil {
		extra = append(extra, "⏰ "+t.Reminder.ReminderTime.In(loc).Format(constants.TimeFormat))
	}
	if t.IsRecurring {
		extra = append(extra, cli.FormatRepeat(t.RepeatPattern))
	}
	if len(t.Tags) > 0 {
		extra = append(extra, "#"+strings.Join(t.Tags, " #"))
	}
	if len(extra) > 0 {
		line += "  " + dimStyle.Render(strings.Join(extra, " · "))
	}
	return line + "  " + dimStyle.Render("["+t.ID+"]")
}
