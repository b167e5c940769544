package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

var tabTitles = []string{"Dashboard", "Habits", "Planner"}

const barWidth = 20

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.form != nil:
		content = docStyle.Render(m.form.View())
	case m.confirm != nil:
		content = m.viewConfirmDelete()
	default:
		switch m.state {
		case constants.StateDashboard:
			content = docStyle.Render(m.viewDashboard())
		case constants.StateHabits:
			content = docStyle.Render(m.habitList.View())
		case constants.StatePlanner:
			content = docStyle.Render(m.viewPlanner())
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	var parts []string
	if m.loading > 0 {
		parts = append(parts, m.spinner.View()+" Syncing...")
	}
	if m.status != "" {
		if m.failed {
			parts = append(parts, dangerStyle.Render(m.status))
		} else {
			parts = append(parts, successStyle.Render(m.status))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) viewDashboard() string {
	s := m.snapshot
	var b strings.Builder

	b.WriteString(headingStyle.Render("Completion Rates") + "\n")
	for _, w := range analytics.Windows {
		rate := s.Rates.Get(w)
		fmt.Fprintf(&b, "  %-8s %s %3d%%\n", titleCase(string(w)), bar(rate), rate)
	}
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("best %d%%  average %d%%", s.Best, s.Average)))

	b.WriteString(headingStyle.Render("Today") + "\n")
	fmt.Fprintf(&b, "  Habits done:   %d/%d (%d%%)\n", s.Today.Completed, s.Today.Total, s.Today.Rate)
	fmt.Fprintf(&b, "  Tasks done:    %d/%d (%d%%)  %s\n",
		m.taskStats.Completed, m.taskStats.Total, m.taskStats.Rate,
		dimStyle.Render(m.day.Format("Mon Jan 2")))

	b.WriteString(headingStyle.Render("Streaks") + "\n")
	fmt.Fprintf(&b, "  Longest:       %d\n", s.Summary.MaxStreak)
	fmt.Fprintf(&b, "  Average:       %d\n", s.Summary.AvgStreak)
	fmt.Fprintf(&b, "  Active:        %d of %d habits\n", s.Summary.ActiveStreaks, s.Summary.TotalHabits)
	fmt.Fprintf(&b, "  Perfect today: %d\n", s.Summary.PerfectDays)
	fmt.Fprintf(&b, "  Completions:   %d\n", s.Summary.TotalCompletions)

	if len(s.Goals) > 0 {
		b.WriteString(headingStyle.Render("Goals") + "\n")
		for _, g := range s.Goals {
			fmt.Fprintf(&b, "  %-16s %s %3d%%  %s\n", truncate(g.Name, 16), bar(g.Progress), g.Progress, dimStyle.Render(goalDeadline(g)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewPlanner() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(m.day.Format("Monday, Jan 2 2006")) + "\n\n")
	b.WriteString(m.taskList.View())

	if m.taskStats.Total > 0 {
		fmt.Fprintf(&b, "\n\n  %d/%d done (%d%%)", m.taskStats.Completed, m.taskStats.Total, m.taskStats.Rate)
		var pending []string
		for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
			if n := m.taskStats.ByPriority[p]; n > 0 {
				pending = append(pending, fmt.Sprintf("%d %s", n, p))
			}
		}
		if len(pending) > 0 {
			b.WriteString(dimStyle.Render(", pending: " + strings.Join(pending, ", ")))
		}
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-6, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(m.confirm.prompt),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

// bar renders pct as a fixed width gauge. Rates above 100 fill the bar.
func bar(pct int) string {
	filled := pct * barWidth / 100
	filled = min(max(filled, 0), barWidth)
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

func goalDeadline(g analytics.GoalStatus) string {
	switch {
	case g.TargetDate == nil:
		return fmt.Sprintf("%d/%d", g.Completions, g.Target)
	case g.Expired:
		return "expired"
	case g.DaysLeft == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", g.DaysLeft)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
