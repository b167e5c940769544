package analytics

import "github.com/julianstephens/habitual/internal/models"

// TaskStats summarizes a day's planner.
type TaskStats struct {
	Total      int                     `json:"total" yaml:"total"`
	Completed  int                     `json:"completed" yaml:"completed"`
	Pending    int                     `json:"pending" yaml:"pending"`
	Rate       int                     `json:"rate" yaml:"rate"`
	ByPriority map[models.Priority]int `json:"pending_by_priority,omitempty" yaml:"pending_by_priority,omitempty"`
}

// TaskProgress counts completed and pending tasks. Pending tasks are grouped by
// priority, with an unset priority counted as medium.
func TaskProgress(tasks []models.Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	if len(tasks) == 0 {
		return stats
	}
	stats.ByPriority = make(map[models.Priority]int)
	for _, task := range tasks {
		if task.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		priority := task.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}
		stats.ByPriority[priority]++
	}
	stats.Rate = percentOf(stats.Completed, stats.Total, 100)
	return stats
}
