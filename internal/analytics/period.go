package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type Window string

const (
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
	WindowYearly  Window = "yearly"
)

// Windows lists the canonical windows in display order.
var Windows = []Window{WindowDaily, WindowWeekly, WindowMonthly, WindowYearly}

// ParseWindow converts a user supplied window name.
func ParseWindow(s string) (Window, error) {
	for _, w := range Windows {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q (expected daily, weekly, monthly or yearly)", s)
}

// PeriodRates holds the completion rate of every canonical window.
type PeriodRates struct {
	Daily   int `json:"daily" yaml:"daily"`
	Weekly  int `json:"weekly" yaml:"weekly"`
	Monthly int `json:"monthly" yaml:"monthly"`
	Yearly  int `json:"yearly" yaml:"yearly"`
}

// Best returns the highest of the four window rates.
func (r PeriodRates) Best() int {
	return max(r.Daily, r.Weekly, r.Monthly, r.Yearly)
}

// Average returns the rounded mean of the four window rates.
func (r PeriodRates) Average() int {
	return percentOf(r.Daily+r.Weekly+r.Monthly+r.Yearly, 4, 1)
}

// Get returns the rate for a single window.
func (r PeriodRates) Get(w Window) int {
	switch w {
	case WindowDaily:
		return r.Daily
	case WindowWeekly:
		return r.Weekly
	case WindowMonthly:
		return r.Monthly
	case WindowYearly:
		return r.Yearly
	}
	return 0
}

// DaysInRange returns the number of calendar days spanned by [start, end],
// counting both endpoints. An inverted range yields zero or less.
//
// It counts dates, not elapsed time: an end bound of 23:59:59.999 belongs to
// its own day, so a seven-day window is 7 and never ceil(elapsed/24h)+1 = 8.
func DaysInRange(start, end time.Time) int {
	return utils.CalendarDaysBetween(start, end.In(start.Location())) + 1
}

// PeriodRate returns the percentage of possible completions achieved in [start, end].
//
// Every habit is charged one possible completion per day of the range regardless
// of when it was created, and every completed history entry in the range counts,
// including duplicates for the same day. The result is not clamped.
func PeriodRate(habits []models.Habit, start, end time.Time) int {
	if len(habits) == 0 {
		return 0
	}

	daysInRange := DaysInRange(start, end)

	totalCompletions := 0
	totalPossible := 0
	for _, habit := range habits {
		totalCompletions += completionsInRange(habit, start, end)
		totalPossible += daysInRange
	}

	if totalPossible <= 0 {
		return 0
	}
	return percentOf(totalCompletions, totalPossible, 100)
}

// WindowRange returns the [start, end] bounds of a canonical window relative to now.
// The daily window is a single midnight instant; the others end at 23:59:59.999 today.
func WindowRange(w Window, now time.Time) (time.Time, time.Time, bool) {
	today := utils.StartOfDay(now)
	endOfToday := utils.EndOfDay(now)

	switch w {
	case WindowDaily:
		return today, today, true
	case WindowWeekly:
		return today.AddDate(0, 0, -6), endOfToday, true
	case WindowMonthly:
		return utils.FirstOfMonth(now), endOfToday, true
	case WindowYearly:
		return utils.FirstOfYear(now), endOfToday, true
	}
	return time.Time{}, time.Time{}, false
}

// WindowRate computes PeriodRate over a canonical window. Unknown windows yield 0.
func WindowRate(habits []models.Habit, w Window, now time.Time) int {
	start, end, ok := WindowRange(w, now)
	if !ok {
		return 0
	}
	return PeriodRate(habits, start, end)
}

// HabitWindowRate is WindowRate for a single habit.
func HabitWindowRate(habit models.Habit, w Window, now time.Time) int {
	return WindowRate([]models.Habit{habit}, w, now)
}

// Rates computes all four canonical window rates.
func Rates(habits []models.Habit, now time.Time) PeriodRates {
	return PeriodRates{
		Daily:   WindowRate(habits, WindowDaily, now),
		Weekly:  WindowRate(habits, WindowWeekly, now),
		Monthly: WindowRate(habits, WindowMonthly, now),
		Yearly:  WindowRate(habits, WindowYearly, now),
	}
}

func completionsInRange(habit models.Habit, start, end time.Time) int {
	loc := start.Location()
	count := 0
	for _, entry := range habit.CompletionHistory {
		if !entry.Completed {
			continue
		}
		day := utils.StartOfDay(entry.Date.In(loc))
		if day.Before(start) || day.After(end) {
			continue
		}
		count++
	}
	return count
}

// percentOf returns round-half-up(scale * num / den). den must be positive.
func percentOf(num, den, scale int) int {
	return int(math.Floor(float64(scale)*float64(num)/float64(den) + 0.5))
}
