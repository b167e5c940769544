package analytics

import (
	"testing"

	"github.com/julianstephens/habitual/internal/models"
)

func intPtr(v int) *int { return &v }

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, fixedNow)
	if got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero value", got)
	}
}

func TestSummarize(t *testing.T) {
	habits := []models.Habit{
		{
			ID: "a", Name: "read", CurrentStreak: 5, Completions: 40,
			GoalType: models.GoalMonthly, GoalTarget: intPtr(20),
			CompletionHistory: []models.CompletionEntry{done(day(fixedNow, 0))},
		},
		{
			ID: "b", Name: "run", CurrentStreak: 0, Completions: 3,
			GoalType:          models.GoalNone,
			CompletionHistory: []models.CompletionEntry{done(day(fixedNow, 0))},
		},
		{
			ID: "c", Name: "stretch", CurrentStreak: 2, Completions: 10,
			GoalType: models.GoalCustom,
		},
		{ID: "d", Name: "journal"},
	}

	got := Summarize(habits, fixedNow)
	want := Summary{
		TotalHabits:         4,
		MaxStreak:           5,
		AvgStreak:           2, // 7 / 4 = 1.75
		ActiveStreaks:       2,
		TotalCompletions:    53,
		HabitsWithGoals:     2,
		CompletedToday:      2,
		CompletionRateToday: 50,
		PerfectDays:         1,
	}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestSummarize_MaxStreakNeverNegative(t *testing.T) {
	habits := []models.Habit{{ID: "a"}, {ID: "b"}}
	got := Summarize(habits, fixedNow)
	if got.MaxStreak != 0 || got.AvgStreak != 0 || got.ActiveStreaks != 0 {
		t.Errorf("Summarize() streaks = %d/%d/%d, want all 0", got.MaxStreak, got.AvgStreak, got.ActiveStreaks)
	}
}

func TestSummarize_EmptyGoalTypeHasNoGoal(t *testing.T) {
	habits := []models.Habit{{ID: "a", GoalType: ""}, {ID: "b", GoalType: models.GoalStreak}}
	if got := Summarize(habits, fixedNow).HabitsWithGoals; got != 1 {
		t.Errorf("HabitsWithGoals = %d, want 1", got)
	}
}
