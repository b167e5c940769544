package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

type habitsLoadedMsg struct {
	habits []models.Habit
	err    error
}

type plannerLoadedMsg struct {
	day   time.Time
	tasks []models.Task
	err   error
}

// mutationDoneMsg reports a finished create, toggle or delete.
type mutationDoneMsg struct {
	status string
	err    error
}

type refreshMsg time.Time

func fetchHabits(ctx *cli.Context) tea.Cmd {
	return func() tea.Msg {
		habits, err := ctx.FetchHabits(ctx.Context())
		if err != nil {
			logger.Warn("Failed to fetch habits", "error", err)
		}
		return habitsLoadedMsg{habits: habits, err: err}
	}
}

func fetchPlanner(ctx *cli.Context, day time.Time) tea.Cmd {
	return func() tea.Msg {
		tasks, err := ctx.FetchPlanner(ctx.Context(), day)
		if err != nil {
			logger.Warn("Failed to fetch planner", "date", day.Format(constants.DateFormat), "error", err)
		}
		return plannerLoadedMsg{day: day, tasks: tasks, err: err}
	}
}

func mutate(ctx *cli.Context, status string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(ctx.Context())
		if err != nil {
			logger.Warn("Request failed", "action", status, "error", err)
		}
		return mutationDoneMsg{status: status, err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(constants.TUIRefreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}
