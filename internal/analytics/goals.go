package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

var (
	ErrGoalDateRequired = errors.New("custom goals require a target date")
	ErrGoalDateInPast   = errors.New("goal target date must not be before today")
	ErrUnknownGoalType  = errors.New("unknown goal type")
)

// GoalStatus describes a habit's progress toward its goal.
type GoalStatus struct {
	HabitID     string          `json:"habit_id" yaml:"habit_id"`
	Name        string          `json:"name" yaml:"name"`
	GoalType    models.GoalType `json:"goal_type" yaml:"goal_type"`
	Target      int             `json:"target" yaml:"target"`
	Completions int             `json:"completions" yaml:"completions"`
	Progress    int             `json:"progress" yaml:"progress"`
	TargetDate  *time.Time      `json:"target_date,omitempty" yaml:"target_date,omitempty"`
	DaysLeft    int             `json:"days_left" yaml:"days_left"`
	Expired     bool            `json:"expired" yaml:"expired"`
}

// GoalProgress returns min(100, round(100 * completions / target)).
// Habits without a positive target report 0.
func GoalProgress(habit models.Habit) int {
	if habit.GoalTarget == nil || *habit.GoalTarget <= 0 {
		return 0
	}
	if habit.Completions <= 0 {
		return 0
	}
	return min(100, percentOf(habit.Completions, *habit.GoalTarget, 100))
}

// ResolveGoalTargetDate returns the target date implied by a goal type.
//
// Monthly goals end on the first day of the next month and yearly goals on
// January 1 of the next year. Custom goals use the supplied date, which must not
// be before today; streak and completion goals accept an optional date under the
// same rule. A nil date is returned for goals without a deadline.
func ResolveGoalTargetDate(goalType models.GoalType, custom *time.Time, now time.Time) (*time.Time, error) {
	switch goalType {
	case models.GoalNone, "":
		return nil, nil
	case models.GoalMonthly:
		t := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		return &t, nil
	case models.GoalYearly:
		t := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, now.Location())
		return &t, nil
	case models.GoalCustom, models.GoalStreak, models.GoalCompletion:
		if custom == nil {
			if goalType == models.GoalCustom {
				return nil, ErrGoalDateRequired
			}
			return nil, nil
		}
		day := utils.StartOfDay(custom.In(now.Location()))
		if day.Before(utils.StartOfDay(now)) {
			return nil, fmt.Errorf("%w: %s", ErrGoalDateInPast, day.Format("2006-01-02"))
		}
		return &day, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGoalType, goalType)
}

// DaysRemaining returns ceil((target - now) / 1 day). A non-positive count
// means the goal window has elapsed, reported through expired.
func DaysRemaining(target, now time.Time) (days int, expired bool) {
	const day = 24 * time.Hour
	d := target.Sub(now)
	days = int(d / day)
	if d%day > 0 {
		days++
	}
	return days, days <= 0
}

// GoalDeadline computes the goal status of a single habit.
func GoalDeadline(habit models.Habit, now time.Time) GoalStatus {
	status := GoalStatus{
		HabitID:     habit.ID,
		Name:        habit.Name,
		GoalType:    habit.GoalType,
		Completions: habit.Completions,
		Progress:    GoalProgress(habit),
	}
	if habit.GoalTarget != nil {
		status.Target = *habit.GoalTarget
	}
	if habit.GoalDate != nil {
		target := *habit.GoalDate
		status.TargetDate = &target
		status.DaysLeft, status.Expired = DaysRemaining(target, now)
	}
	return status
}

// Goals returns the goal status of every habit that has a goal.
func Goals(habits []models.Habit, now time.Time) []GoalStatus {
	var goals []GoalStatus
	for _, habit := range habits {
		if !habit.GoalType.HasGoal() {
			continue
		}
		goals = append(goals, GoalDeadline(habit, now))
	}
	return goals
}
