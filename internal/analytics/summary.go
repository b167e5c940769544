package analytics

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// Summary aggregates streak, goal and completion counters across habits.
type Summary struct {
	TotalHabits         int `json:"total_habits" yaml:"total_habits"`
	MaxStreak           int `json:"max_streak" yaml:"max_streak"`
	AvgStreak           int `json:"avg_streak" yaml:"avg_streak"`
	ActiveStreaks       int `json:"active_streaks" yaml:"active_streaks"`
	TotalCompletions    int `json:"total_completions" yaml:"total_completions"`
	HabitsWithGoals     int `json:"habits_with_goals" yaml:"habits_with_goals"`
	CompletedToday      int `json:"completed_today" yaml:"completed_today"`
	CompletionRateToday int `json:"completion_rate_today" yaml:"completion_rate_today"`
	PerfectDays         int `json:"perfect_days" yaml:"perfect_days"` // completed today with a live streak
}

// Summarize computes cross-habit summaries. Streaks are taken as reported by the
// service; they are never recomputed from history here.
func Summarize(habits []models.Habit, now time.Time) Summary {
	summary := Summary{TotalHabits: len(habits)}
	if len(habits) == 0 {
		return summary
	}

	streakSum := 0
	for _, habit := range habits {
		streakSum += habit.CurrentStreak
		summary.MaxStreak = max(summary.MaxStreak, habit.CurrentStreak)
		if habit.CurrentStreak > 0 {
			summary.ActiveStreaks++
		}
		summary.TotalCompletions += habit.Completions
		if habit.GoalType.HasGoal() {
			summary.HabitsWithGoals++
		}
		if IsCompletedToday(habit, now) {
			summary.CompletedToday++
			if habit.CurrentStreak > 0 {
				summary.PerfectDays++
			}
		}
	}

	summary.AvgStreak = percentOf(streakSum, len(habits), 1)
	summary.CompletionRateToday = percentOf(summary.CompletedToday, len(habits), 100)
	return summary
}
