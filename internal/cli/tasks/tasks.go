package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

type TaskCmd struct {
	Add    TaskAddCmd    `cmd:"" help:"Add a task to a day's planner."`
	Edit   TaskEditCmd   `cmd:"" help:"Edit an existing task."`
	Toggle TaskToggleCmd `cmd:"" help:"Toggle a task's completion."`
	Delete TaskDeleteCmd `cmd:"" help:"Delete a task."`
}

type TaskAddCmd struct {
	Title       string   `arg:"" help:"Task title."`
	Date        string   `short:"d" help:"Day of the task (YYYY-MM-DD, today, tomorrow). Defaults to today."`
	Description string   `short:"D" help:"Optional description."`
	Type        string   `short:"T" help:"Task type (binary|count|value)." default:"binary"`
	Quantity    int      `short:"q" help:"Target quantity for count tasks."`
	Value       *float64 `help:"Target value for value tasks."`
	Priority    string   `short:"p" help:"Priority (low|medium|high)." default:"medium"`
	Duration    int      `help:"Estimated duration in minutes."`
	Tags        []string `help:"Comma-separated tags." sep:","`
	Remind      string   `help:"Reminder time (HH:MM)."`
	Repeat      string   `short:"r" help:"Repeat frequency (daily|weekly|monthly)."`
	Interval    int      `short:"i" help:"Repeat every N periods." default:"1"`
	Weekdays    string   `short:"w" help:"Comma-separated weekdays for weekly repeats."`
	Until       string   `help:"Last day of the repeat (YYYY-MM-DD)."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	task := models.Task{
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		Date:        day.Format(constants.DateFormat),
		Type:        models.TaskType(c.Type),
		Value:       c.Value,
		Priority:    models.Priority(c.Priority),
		Tags:        c.Tags,
	}
	if c.Quantity != 0 {
		task.Quantity = &c.Quantity
	}
	if c.Duration != 0 {
		task.Duration = &c.Duration
	}
	if err := setReminder(ctx, &task, c.Remind); err != nil {
		return err
	}
	if c.Repeat != "" {
		rp, err := buildRepeat(ctx, c.Repeat, c.Interval, c.Weekdays, c.Until)
		if err != nil {
			return err
		}
		task.IsRecurring = true
		task.RepeatPattern = rp
	}

	if err := validateTask(ctx, task); err != nil {
		return err
	}

	created, err := ctx.API.CreateTask(ctx.Context(), task)
	if err != nil {
		return err
	}
	logger.Info("Created task", "id", created.ID, "date", created.Date)
	ctx.Printf("Added task: %s on %s (ID: %s)\n", created.Title, created.Date, created.ID)
	return nil
}

type TaskEditCmd struct {
	Task        string   `arg:"" help:"Task ID or title."`
	Date        string   `short:"d" help:"Day the task is currently on. Defaults to today."`
	Title       *string  `help:"New title."`
	Description *string  `short:"D" help:"New description."`
	MoveTo      string   `name:"move-to" help:"Move the task to another day (YYYY-MM-DD)."`
	Type        *string  `short:"T" help:"New task type."`
	Quantity    *int     `short:"q" help:"New target quantity."`
	Value       *float64 `help:"New target value."`
	Priority    *string  `short:"p" help:"New priority."`
	Duration    *int     `help:"New duration in minutes."`
	Tags        []string `help:"Replace tags (comma-separated)." sep:","`
	Remind      *string  `help:"New reminder time (HH:MM). Empty disables the reminder."`
	Repeat      *string  `short:"r" help:"New repeat frequency. Empty stops repeating."`
	Interval    int      `short:"i" help:"Repeat every N periods." default:"1"`
	Weekdays    string   `short:"w" help:"Comma-separated weekdays for weekly repeats."`
	Until       string   `help:"Last day of the repeat (YYYY-MM-DD)."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	task, err := findTask(ctx, c.Date, c.Task)
	if err != nil {
		return err
	}

	if c.Title != nil {
		task.Title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		task.Description = *c.Description
	}
	if c.MoveTo != "" {
		day, err := ctx.ParseDay(c.MoveTo)
		if err != nil {
			return err
		}
		task.Date = day.Format(constants.DateFormat)
	}
	if c.Type != nil {
		task.Type = models.TaskType(*c.Type)
		switch task.Type {
		case models.TaskTypeBinary:
			task.Quantity, task.Value = nil, nil
		case models.TaskTypeCount:
			task.Value = nil
		case models.TaskTypeValue:
			task.Quantity = nil
		}
	}
	if c.Quantity != nil {
		task.Quantity = c.Quantity
	}
	if c.Value != nil {
		task.Value = c.Value
	}
	if c.Priority != nil {
		task.Priority = models.Priority(*c.Priority)
	}
	if c.Duration != nil {
		task.Duration = c.Duration
	}
	if c.Tags != nil {
		task.Tags = c.Tags
	}
	if c.Remind != nil {
		if err := setReminder(ctx, &task, *c.Remind); err != nil {
			return err
		}
	}
	if c.Repeat != nil {
		if *c.Repeat == "" {
			task.IsRecurring = false
			task.RepeatPattern = nil
		} else {
			rp, err := buildRepeat(ctx, *c.Repeat, c.Interval, c.Weekdays, c.Until)
			if err != nil {
				return err
			}
			task.IsRecurring = true
			task.RepeatPattern = rp
		}
	}

	if err := validateTask(ctx, task); err != nil {
		return err
	}

	updated, err := ctx.API.UpdateTask(ctx.Context(), task.ID, task)
	if err != nil {
		return err
	}
	ctx.Printf("Updated task: %s on %s\n", updated.Title, updated.Date)
	return nil
}

type TaskToggleCmd struct {
	Task string `arg:"" help:"Task ID or title."`
	Date string `short:"d" help:"Day of the task. Defaults to today."`
}

func (c *TaskToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	task, err := findTask(ctx, c.Date, c.Task)
	if err != nil {
		return err
	}
	if err := ctx.API.ToggleTaskCompletion(ctx.Context(), task.ID); err != nil {
		return err
	}

	if task.Completed {
		ctx.Printf("○ %s reopened\n", task.Title)
	} else {
		ctx.Printf("✓ %s completed\n", task.Title)
	}
	return nil
}

type TaskDeleteCmd struct {
	Task string `arg:"" help:"Task ID or title."`
	Date string `short:"d" help:"Day of the task. Defaults to today."`
	Yes  bool   `short:"y" help:"Skip confirmation."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	task, err := findTask(ctx, c.Date, c.Task)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm(fmt.Sprintf("Delete task %q?", task.Title), true)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.API.DeleteTask(ctx.Context(), task.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted task: %s\n", task.Title)
	return nil
}

// findTask looks a task up in the planner of the given day.
func findTask(ctx *cli.Context, date, ref string) (models.Task, error) {
	day, err := ctx.ParseDay(date)
	if err != nil {
		return models.Task{}, err
	}
	tasks, err := ctx.FetchPlanner(ctx.Context(), day)
	if err != nil {
		return models.Task{}, err
	}
	task, err := cli.ResolveTask(tasks, ref)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w on %s", err, day.Format(constants.DateFormat))
	}
	return task, nil
}

func setReminder(ctx *cli.Context, task *models.Task, at string) error {
	if at == "" {
		task.Reminder = nil
		return nil
	}
	if !utils.ValidateTimeFormat(at) {
		return fmt.Errorf("invalid reminder time %q (want HH:MM)", at)
	}
	when, err := utils.CombineDateAndTime(task.Date, at, ctx.Now().Location())
	if err != nil {
		return err
	}
	task.Reminder = &models.Reminder{Enabled: true, ReminderTime: &when}
	return nil
}

func buildRepeat(ctx *cli.Context, freq string, interval int, weekdays, until string) (*models.RepeatPattern, error) {
	rp := &models.RepeatPattern{
		Frequency: models.RepeatFrequency(freq),
		Interval:  interval,
	}
	if weekdays != "" {
		days, err := cli.ParseWeekdays(weekdays)
		if err != nil {
			return nil, err
		}
		rp.DaysOfWeek = days
	}
	if until != "" {
		end, err := ctx.ParseDay(until)
		if err != nil {
			return nil, err
		}
		endUTC := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
		rp.EndDate = &endUTC
	}
	return rp, nil
}

func validateTask(ctx *cli.Context, task models.Task) error {
	result := validation.NewAt(ctx.Now()).ValidateTask(task)
	if result.HasIssues() {
		return result.Err()
	}
	return nil
}
