package tasklist

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/cli/tasks"
	"github.com/julianstephens/habitual/internal/models"
)

type AddTaskMsg struct{}

type ToggleTaskMsg struct {
	Task models.Task
}

type DeleteTaskMsg struct {
	Task models.Task
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle done"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

var cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

type Model struct {
	tasks  []models.Task
	loc    *time.Location
	cursor int
	keys   KeyMap
	width  int
	height int
}

func New(loc *time.Location, width, height int) Model {
	return Model{loc: loc, keys: DefaultKeyMap(), width: width, height: height}
}

// SetTasks replaces the list with tasks in planner order. The cursor stays
// on the same task when it is still present.
func (m *Model) SetTasks(list []models.Task) {
	selected := ""
	if t, ok := m.Selected(); ok {
		selected = t.ID
	}

	m.tasks = append([]models.Task(nil), list...)
	tasks.SortTasks(m.tasks)
	for i, t := range m.tasks {
		if selected != "" && t.ID == selected {
			m.cursor = i
		}
	}
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Reset moves the cursor back to the first task.
func (m *Model) Reset() {
	m.cursor = 0
}

func (m Model) Cursor() int { return m.cursor }

func (m Model) Len() int { return len(m.tasks) }

func (m Model) Selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m Model) Bindings() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Add, m.keys.Delete}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Add):
		return m, func() tea.Msg { return AddTaskMsg{} }
	case key.Matches(keyMsg, m.keys.Toggle):
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ToggleTaskMsg{Task: t} }
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteTaskMsg{Task: t} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.tasks) == 0 {
		return "\n  No tasks planned.\n  Press 'a' to add one."
	}

	start, end := 0, len(m.tasks)
	if m.height > 0 && len(m.tasks) > m.height {
		start = max(0, m.cursor-m.height+1)
		end = start + m.height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		b.WriteString(pointer + tasks.FormatTask(m.tasks[i], m.loc) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
