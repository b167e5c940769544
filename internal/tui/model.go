package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/tui/components/tasklist"
	"github.com/julianstephens/habitual/internal/utils"
)

type HabitFormModel struct {
	Name      string
	Frequency models.Frequency
	TimeOfDay models.TimeOfDay
	Goal      models.GoalType
	Target    string
	GoalDate  string
}

type TaskFormModel struct {
	Title    string
	Type     models.TaskType
	Priority models.Priority
	Amount   string
}

// pendingDelete holds a delete that waits for confirmation.
type pendingDelete struct {
	prompt string
	run    tea.Cmd
}

type Model struct {
	ctx *cli.Context

	state     constants.SessionState
	keys      KeyMap
	help      help.Model
	spinner   spinner.Model
	habitList habitlist.Model
	taskList  tasklist.Model

	form      *huh.Form
	habitForm *HabitFormModel
	taskForm  *TaskFormModel
	confirm   *pendingDelete

	habits    []models.Habit
	tasks     []models.Task
	snapshot  analytics.Snapshot
	taskStats analytics.TaskStats

	// day is the planner's selected calendar day, at local midnight.
	day     time.Time
	loading int
	status  string
	failed  bool

	width    int
	height   int
	quitting bool
}

// NewModel builds the dashboard for a logged in session. Nothing is fetched
// until Init runs.
func NewModel(ctx *cli.Context) Model {
	now := ctx.Now()
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		state:     constants.StateDashboard,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		habitList: habitlist.New(0, 0),
		taskList:  tasklist.New(now.Location(), 0, 0),
		snapshot:  analytics.Dashboard(nil, now),
		day:       utils.StartOfDay(now),
		loading:   2,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchHabits(m.ctx),
		fetchPlanner(m.ctx, m.day),
		scheduleRefresh(),
	)
}

func (m Model) State() constants.SessionState { return m.state }

func (m Model) Day() time.Time { return m.day }

func (m Model) Status() string { return m.status }

func (m Model) Snapshot() analytics.Snapshot { return m.snapshot }

func (m Model) TaskStats() analytics.TaskStats { return m.taskStats }

func (m Model) Loading() bool { return m.loading > 0 }

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateHabits:
		keys = append(keys, m.habitList.Bindings()[2:]...)
	case constants.StatePlanner:
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay)
		keys = append(keys, m.taskList.Bindings()[2:]...)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateHabits:
		actions = m.habitList.Bindings()
	case constants.StatePlanner:
		actions = append([]key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.Today}, m.taskList.Bindings()...)
	}
	return [][]key.Binding{global, actions}
}
