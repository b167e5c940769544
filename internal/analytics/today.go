package analytics

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Today summarizes how many habits were completed on now's calendar day.
type Today struct {
	Completed int `json:"completed" yaml:"completed"`
	Total     int `json:"total" yaml:"total"`
	Rate      int `json:"rate" yaml:"rate"`
}

// IsCompletedToday reports whether the habit has a completed history entry
// dated on now's calendar day. An entry for today marked not completed does not count.
func IsCompletedToday(habit models.Habit, now time.Time) bool {
	loc := now.Location()
	for _, entry := range habit.CompletionHistory {
		if entry.Completed && utils.SameDay(entry.Date, now, loc) {
			return true
		}
	}
	return false
}

// TodayCompletion counts habits completed today and the share of all habits they represent.
func TodayCompletion(habits []models.Habit, now time.Time) Today {
	result := Today{Total: len(habits)}
	if len(habits) == 0 {
		return result
	}
	for _, habit := range habits {
		if IsCompletedToday(habit, now) {
			result.Completed++
		}
	}
	result.Rate = percentOf(result.Completed, result.Total, 100)
	return result
}
