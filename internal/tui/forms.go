package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekdays", models.FrequencyWeekdays),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&fm.Frequency),
			huh.NewSelect[models.TimeOfDay]().
				Title("Time of Day").
				Options(
					huh.NewOption("Anytime", models.TimeAnytime),
					huh.NewOption("Morning", models.TimeMorning),
					huh.NewOption("Afternoon", models.TimeAfternoon),
					huh.NewOption("Evening", models.TimeEvening),
				).
				Value(&fm.TimeOfDay),
		),
		huh.NewGroup(
			huh.NewSelect[models.GoalType]().
				Title("Goal").
				Options(
					huh.NewOption("None", models.GoalNone),
					huh.NewOption("Monthly", models.GoalMonthly),
					huh.NewOption("Yearly", models.GoalYearly),
					huh.NewOption("Custom date", models.GoalCustom),
					huh.NewOption("Streak", models.GoalStreak),
					huh.NewOption("Completions", models.GoalCompletion),
				).
				Value(&fm.Goal),
			huh.NewInput().
				Title("Goal Target").
				Description("Completions or streak length. Leave empty without a goal.").
				Value(&fm.Target).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("target must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Goal Date").
				Description("YYYY-MM-DD, custom goals only").
				Value(&fm.GoalDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" || utils.ValidateDateFormat(strings.TrimSpace(s)) {
						return nil
					}
					return fmt.Errorf("date must be YYYY-MM-DD")
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func newTaskForm(fm *TaskFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task Title").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("task title cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.Priority]().
				Title("Priority").
				Options(
					huh.NewOption("High", models.PriorityHigh),
					huh.NewOption("Medium", models.PriorityMedium),
					huh.NewOption("Low", models.PriorityLow),
				).
				Value(&fm.Priority),
			huh.NewSelect[models.TaskType]().
				Title("Type").
				Options(
					huh.NewOption("Done / not done", models.TaskTypeBinary),
					huh.NewOption("Count", models.TaskTypeCount),
					huh.NewOption("Value", models.TaskTypeValue),
				).
				Value(&fm.Type),
			huh.NewInput().
				Title("Quantity or Value").
				Description("For count and value tasks").
				Value(&fm.Amount),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) openHabitForm() tea.Cmd {
	m.habitForm = &HabitFormModel{
		Frequency: models.FrequencyDaily,
		TimeOfDay: models.TimeAnytime,
		Goal:      models.GoalNone,
	}
	m.form = newHabitForm(m.habitForm)
	return m.form.Init()
}

func (m *Model) openTaskForm() tea.Cmd {
	m.taskForm = &TaskFormModel{
		Type:     models.TaskTypeBinary,
		Priority: models.PriorityMedium,
	}
	m.form = newTaskForm(m.taskForm)
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.habitForm = nil
	m.taskForm = nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.closeForm()
		m.setStatus("Canceled")
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, tea.Batch(cmd, m.submitForm())
	case huh.StateAborted:
		m.closeForm()
	}
	return m, cmd
}

func (m *Model) submitForm() tea.Cmd {
	habitForm, taskForm := m.habitForm, m.taskForm
	m.closeForm()
	switch {
	case habitForm != nil:
		return m.submitHabit(*habitForm)
	case taskForm != nil:
		return m.submitTask(*taskForm)
	}
	return nil
}

func (m *Model) submitHabit(fm HabitFormModel) tea.Cmd {
	habit := models.Habit{
		Name:      strings.TrimSpace(fm.Name),
		Frequency: fm.Frequency,
		TimeOfDay: fm.TimeOfDay,
		GoalType:  fm.Goal,
	}

	target := 0
	if s := strings.TrimSpace(fm.Target); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			m.setError(fmt.Errorf("invalid goal target %q", s))
			return nil
		}
		target = n
	}
	if err := habits.ApplyGoal(m.ctx, &habit, target, strings.TrimSpace(fm.GoalDate)); err != nil {
		m.setError(err)
		return nil
	}

	api := m.ctx.API
	return m.startMutation("Added habit: "+habit.Name, func(ctx context.Context) error {
		_, err := api.CreateHabit(ctx, habit)
		return err
	})
}

func (m *Model) submitTask(fm TaskFormModel) tea.Cmd {
	task := models.Task{
		Title:    strings.TrimSpace(fm.Title),
		Date:     m.day.Format(constants.DateFormat),
		Type:     fm.Type,
		Priority: fm.Priority,
	}

	amount := strings.TrimSpace(fm.Amount)
	switch fm.Type {
	case models.TaskTypeCount:
		n, err := strconv.Atoi(amount)
		if err != nil {
			m.setError(fmt.Errorf("count tasks need a whole number quantity"))
			return nil
		}
		task.Quantity = &n
	case models.TaskTypeValue:
		v, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			m.setError(fmt.Errorf("value tasks need a numeric value"))
			return nil
		}
		task.Value = &v
	}

	result := validation.NewAt(m.ctx.Now()).ValidateTask(task)
	if result.HasIssues() {
		m.setError(result.Err())
		return nil
	}

	api := m.ctx.API
	return m.startMutation("Added task: "+task.Title, func(ctx context.Context) error {
		_, err := api.CreateTask(ctx, task)
		return err
	})
}
