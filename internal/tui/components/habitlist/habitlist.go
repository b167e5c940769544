package habitlist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/models"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	Habit models.Habit
}

type DeleteHabitMsg struct {
	Habit models.Habit
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
			key.WithHelp("space", "toggle today"),
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

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type row struct {
	habit    models.Habit
	done     bool
	progress int
}

type Model struct {
	rows   []row
	cursor int
	keys   KeyMap
	width  int
	height int
}

func New(width, height int) Model {
	return Model{keys: DefaultKeyMap(), width: width, height: height}
}

// SetHabits replaces the rows, keeping the cursor on the same habit when it
// is still present.
func (m *Model) SetHabits(habits []models.Habit, now time.Time) {
	selected := ""
	if h, ok := m.Selected(); ok {
		selected = h.ID
	}

	m.rows = make([]row, len(habits))
	for i, h := range habits {
		m.rows[i] = row{
			habit:    h,
			done:     analytics.IsCompletedToday(h, now),
			progress: analytics.GoalProgress(h),
		}
		if selected != "" && h.ID == selected {
			m.cursor = i
		}
	}
	m.clamp()
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Cursor() int { return m.cursor }

func (m Model) Len() int { return len(m.rows) }

func (m Model) Selected() (models.Habit, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return models.Habit{}, false
	}
	return m.rows[m.cursor].habit, true
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
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Add):
		return m, func() tea.Msg { return AddHabitMsg{} }
	case key.Matches(keyMsg, m.keys.Toggle):
		if h, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ToggleHabitMsg{Habit: h} }
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if h, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteHabitMsg{Habit: h} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}

	start, end := m.visible()
	var b strings.Builder
	for i := start; i < end; i++ {
		r := m.rows[i]
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		if r.done {
			mark = doneStyle.Render("[x]")
		}
		name := r.habit.Name
		if i == m.cursor {
			name = cursorStyle.Render(name)
		}
		extra := fmt.Sprintf("streak %d (best %d)", r.habit.CurrentStreak, r.habit.LongestStreak)
		if r.habit.GoalType.HasGoal() {
			extra += fmt.Sprintf("  goal %d%%", r.progress)
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", pointer, mark, name, dimStyle.Render(extra))
	}
	return strings.TrimRight(b.String(), "\n")
}

// visible returns the row range that fits the height around the cursor.
func (m Model) visible() (int, int) {
	if m.height <= 0 || len(m.rows) <= m.height {
		return 0, len(m.rows)
	}
	start := m.cursor - m.height + 1
	if start < 0 {
		start = 0
	}
	return start, start + m.height
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
