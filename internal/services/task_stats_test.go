package services

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
)

func task(id int64, status models.TaskStatus, priority models.TaskPriority, due *civil.Date) models.Task {
	return models.Task{ID: id, Title: "task", Status: status, Priority: priority, DueDate: due}
}

func TestComputeStats_Counts(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 3, Day: 10}
	tasks := []models.Task{
		task(1, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(-2))),
		task(2, models.StatusDone, models.PriorityHigh, datePtr(today.AddDays(-2))),
		task(3, models.StatusInProgress, models.PriorityHigh, datePtr(today.AddDays(-1))),
		task(4, models.StatusTodo, models.PriorityMedium, datePtr(today)),
		task(5, models.StatusTodo, models.PriorityLow, nil),
	}

	stats := computeStats(tasks, today)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, map[models.TaskStatus]int64{
		models.StatusTodo:       3,
		models.StatusInProgress: 1,
		models.StatusDone:       1,
	}, stats.ByStatus)
	assert.Equal(t, map[models.TaskPriority]int64{
		models.PriorityLow:    2,
		models.PriorityMedium: 1,
		models.PriorityHigh:   2,
	}, stats.ByPriority)
	// done and due-today tasks are not overdue
	assert.Equal(t, int64(2), stats.Overdue)
}

func TestComputeStats_OmitsAbsentValues(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 3, Day: 10}
	stats := computeStats([]models.Task{task(1, models.StatusDone, models.PriorityLow, nil)}, today)

	assert.Len(t, stats.ByStatus, 1)
	assert.Len(t, stats.ByPriority, 1)
	assert.NotNil(t, stats.Next7Days)
	assert.Empty(t, stats.Next7Days)
}

func TestComputeStats_Next7DaysWindow(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 3, Day: 10}
	tasks := []models.Task{
		task(1, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(7))),  // window end, excluded
		task(2, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(-1))), // past, excluded
		task(3, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(6))),
		task(4, models.StatusDone, models.PriorityLow, datePtr(today)),
		task(5, models.StatusTodo, models.PriorityLow, nil),
		task(6, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(2))),
	}

	stats := computeStats(tasks, today)
	ids := []int64{}
	for _, tk := range stats.Next7Days {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []int64{4, 6, 3}, ids)
}

func TestComputeStats_Next7DaysSortedAndCapped(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 3, Day: 10}
	tasks := []models.Task{
		task(1, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(5))),
		task(2, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(1))),
		task(3, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(4))),
		task(4, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(1))),
		task(5, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(6))),
		task(6, models.StatusTodo, models.PriorityLow, datePtr(today)),
		task(7, models.StatusTodo, models.PriorityLow, datePtr(today.AddDays(3))),
	}

	stats := computeStats(tasks, today)
	require.Len(t, stats.Next7Days, 5)
	ids := []int64{}
	for i, tk := range stats.Next7Days {
		ids = append(ids, tk.ID)
		if i > 0 {
			assert.False(t, tk.DueDate.Before(*stats.Next7Days[i-1].DueDate))
		}
	}
	assert.Equal(t, []int64{6, 2, 4, 7, 3}, ids)
}

func TestStats_TotalMatchesUnfilteredList(t *testing.T) {
	svc, today := newTestService(t)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		priority := models.PriorityLow
		if i%2 == 0 {
			priority = models.PriorityHigh
		}
		mustCreate(t, svc, models.TaskInput{Title: "Tarea", Priority: priority, DueDate: datePtr(today.AddDays(i))})
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	all, err := svc.GetAll(ctx, models.TaskFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.Total)
	assert.Equal(t, int64(len(all)), stats.Total)
	assert.Equal(t, int64(3), stats.ByPriority[models.PriorityHigh])
	assert.Equal(t, int64(6), stats.ByStatus[models.StatusTodo])
	assert.Zero(t, stats.Overdue)
	assert.Len(t, stats.Next7Days, 5)
}
