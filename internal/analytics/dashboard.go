package analytics

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// Snapshot bundles every statistic shown on the dashboard.
type Snapshot struct {
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Rates       PeriodRates  `json:"rates" yaml:"rates"`
	Best        int          `json:"best" yaml:"best"`
	Average     int          `json:"average" yaml:"average"`
	Today       Today        `json:"today" yaml:"today"`
	Summary     Summary      `json:"summary" yaml:"summary"`
	Goals       []GoalStatus `json:"goals,omitempty" yaml:"goals,omitempty"`
}

// Dashboard recomputes the full statistics snapshot for a render.
func Dashboard(habits []models.Habit, now time.Time) Snapshot {
	rates := Rates(habits, now)
	return Snapshot{
		GeneratedAt: now,
		Rates:       rates,
		Best:        rates.Best(),
		Average:     rates.Average(),
		Today:       TodayCompletion(habits, now),
		Summary:     Summarize(habits, now),
		Goals:       Goals(habits, now),
	}
}
