package services

import (
	"sort"

	"cloud.google.com/go/civil"

	"taskmanager/internal/models"
)

const (
	upcomingWindowDays = 7
	upcomingLimit      = 5
)

// computeStats aggregates tasks as of today. The upcoming window is
// [today, today+7) ordered by due date, ties by id.
func computeStats(tasks []models.Task, today civil.Date) *models.TaskStats {
	stats := &models.TaskStats{
		Total:      int64(len(tasks)),
		ByStatus:   map[models.TaskStatus]int64{},
		ByPriority: map[models.TaskPriority]int64{},
		Next7Days:  []models.Task{},
	}
	windowEnd := today.AddDays(upcomingWindowDays)

	var upcoming []models.Task
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++

		if t.Status != models.StatusDone && t.OverdueOn(today) {
			stats.Overdue++
		}
		if t.HasDueDate() && !t.DueDate.Before(today) && t.DueDate.Before(windowEnd) {
			upcoming = append(upcoming, t)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := *upcoming[i].DueDate, *upcoming[j].DueDate
		if a != b {
			return a.Before(b)
		}
		return upcoming[i].ID < upcoming[j].ID
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	stats.Next7Days = append(stats.Next7Days, upcoming...)
	return stats
}
