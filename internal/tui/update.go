package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/tui/components/tasklist"
	"github.com/julianstephens/habitual/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		listHeight := max(1, msg.Height-10)
		m.habitList.SetSize(msg.Width, listHeight)
		m.taskList.SetSize(msg.Width, listHeight)
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width - 4)
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case habitsLoadedMsg:
		m.finishLoad()
		m.habits = msg.habits
		if msg.err != nil {
			m.habits = nil
			m.setError(msg.err)
		}
		now := m.ctx.Now()
		m.snapshot = analytics.Dashboard(m.habits, now)
		m.habitList.SetHabits(m.habits, now)
		return m, nil

	case plannerLoadedMsg:
		m.finishLoad()
		if !msg.day.Equal(m.day) {
			return m, nil
		}
		m.tasks = msg.tasks
		if msg.err != nil {
			m.tasks = nil
			m.setError(msg.err)
		}
		m.taskStats = analytics.TaskProgress(m.tasks)
		m.taskList.SetTasks(m.tasks)
		return m, nil

	case mutationDoneMsg:
		m.finishLoad()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.status)
		}
		return m, m.refetch()

	case refreshMsg:
		return m, tea.Batch(m.refetch(), scheduleRefresh())

	case habitlist.AddHabitMsg:
		return m, m.openHabitForm()

	case habitlist.ToggleHabitMsg:
		status := fmt.Sprintf("✓ %s done for today", msg.Habit.Name)
		if analytics.IsCompletedToday(msg.Habit, m.ctx.Now()) {
			status = fmt.Sprintf("○ %s marked not done", msg.Habit.Name)
		}
		api, id := m.ctx.API, msg.Habit.ID
		return m, m.startMutation(status, func(ctx context.Context) error {
			return api.ToggleHabitCompletion(ctx, id)
		})

	case habitlist.DeleteHabitMsg:
		api, id := m.ctx.API, msg.Habit.ID
		m.confirm = &pendingDelete{
			prompt: fmt.Sprintf("Delete habit %q and its completion history?", msg.Habit.Name),
			run: mutate(m.ctx, "Deleted habit: "+msg.Habit.Name, func(ctx context.Context) error {
				return api.DeleteHabit(ctx, id)
			}),
		}
		return m, nil

	case tasklist.AddTaskMsg:
		return m, m.openTaskForm()

	case tasklist.ToggleTaskMsg:
		status := fmt.Sprintf("✓ %s completed", msg.Task.Title)
		if msg.Task.Completed {
			status = fmt.Sprintf("○ %s reopened", msg.Task.Title)
		}
		api, id := m.ctx.API, msg.Task.ID
		return m, m.startMutation(status, func(ctx context.Context) error {
			return api.ToggleTaskCompletion(ctx, id)
		})

	case tasklist.DeleteTaskMsg:
		api, id := m.ctx.API, msg.Task.ID
		m.confirm = &pendingDelete{
			prompt: fmt.Sprintf("Delete task %q?", msg.Task.Title),
			run: mutate(m.ctx, "Deleted task: "+msg.Task.Title, func(ctx context.Context) error {
				return api.DeleteTask(ctx, id)
			}),
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			run := m.confirm.run
			m.confirm = nil
			return m, tea.Batch(m.beginLoad(1), run)
		case key.Matches(msg, m.keys.Cancel):
			m.confirm = nil
			m.setStatus("Delete canceled")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % constants.SessionState(len(tabTitles))
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		n := constants.SessionState(len(tabTitles))
		m.state = (m.state + n - 1) % n
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refetch()
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	case constants.StatePlanner:
		switch {
		case key.Matches(msg, m.keys.PrevDay):
			return m, m.selectDay(m.day.AddDate(0, 0, -1))
		case key.Matches(msg, m.keys.NextDay):
			return m, m.selectDay(m.day.AddDate(0, 0, 1))
		case key.Matches(msg, m.keys.Today):
			return m, m.selectDay(utils.StartOfDay(m.ctx.Now()))
		}
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

// selectDay switches the planner to day and fetches its tasks.
func (m *Model) selectDay(day time.Time) tea.Cmd {
	if day.Equal(m.day) {
		return nil
	}
	m.day = day
	m.tasks = nil
	m.taskStats = analytics.TaskProgress(nil)
	m.taskList.SetTasks(nil)
	m.taskList.Reset()
	return tea.Batch(m.beginLoad(1), fetchPlanner(m.ctx, day))
}

// refetch reloads habits and the selected planner day.
func (m *Model) refetch() tea.Cmd {
	return tea.Batch(
		m.beginLoad(2),
		fetchHabits(m.ctx),
		fetchPlanner(m.ctx, m.day),
	)
}

func (m *Model) startMutation(status string, fn func(context.Context) error) tea.Cmd {
	return tea.Batch(m.beginLoad(1), mutate(m.ctx, status, fn))
}

// beginLoad counts n outstanding requests and restarts the spinner when it
// was idle.
func (m *Model) beginLoad(n int) tea.Cmd {
	idle := m.loading == 0
	m.loading += n
	if idle {
		return m.spinner.Tick
	}
	return nil
}

func (m *Model) finishLoad() {
	if m.loading > 0 {
		m.loading--
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(err error) {
	m.status = apperrors.Format(err)
	m.failed = true
}
