package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
)

// fixedNow is mid-afternoon so that time-of-day never leaks into date math.
var fixedNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (TaskService, civil.Date) {
	t.Helper()
	svc := NewTaskService(repositories.NewMemoryTaskRepository(), func() time.Time { return fixedNow }, time.UTC)
	return svc, civil.DateOf(fixedNow)
}

func datePtr(d civil.Date) *civil.Date { return &d }

func mustCreate(t *testing.T, svc TaskService, in models.TaskInput) *models.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return task
}

func requireBusinessRule(t *testing.T, err error, msg string) {
	t.Helper()
	var bre *BusinessRuleError
	require.True(t, errors.As(err, &bre), "want BusinessRuleError, got %v", err)
	assert.Equal(t, msg, bre.Message)
}

func TestCreate_DefaultsStatusToTodo(t *testing.T) {
	svc, today := newTestService(t)

	task := mustCreate(t, svc, models.TaskInput{
		Title:    "Tarea de prueba",
		Priority: models.PriorityMedium,
		DueDate:  datePtr(today.AddDays(5)),
	})
	assert.NotZero(t, task.ID)
	assert.Equal(t, "Tarea de prueba", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreate_KeepsExplicitStatus(t *testing.T) {
	svc, _ := newTestService(t)

	task := mustCreate(t, svc, models.TaskInput{Title: "Started", Priority: models.PriorityLow, Status: models.StatusInProgress})
	assert.Equal(t, models.StatusInProgress, task.Status)
}

func TestCreate_HighPriorityRequiresDueDate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), models.TaskInput{
		Title:       "Tarea importante",
		Description: "anything",
		Status:      models.StatusInProgress,
		Priority:    models.PriorityHigh,
	})
	requireBusinessRule(t, err, "Due date is required for HIGH priority tasks")

	all, err := svc.GetAll(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreate_HighPriorityAcceptsPastDueDate(t *testing.T) {
	svc, today := newTestService(t)

	task := mustCreate(t, svc, models.TaskInput{Title: "Late", Priority: models.PriorityHigh, DueDate: datePtr(today.AddDays(-1))})
	assert.Equal(t, models.PriorityHigh, task.Priority)
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name  string
		input models.TaskInput
		field string
		msg   string
	}{
		{"missing title", models.TaskInput{Priority: models.PriorityLow}, "title", "Title is required"},
		{"short title", models.TaskInput{Title: "ab", Priority: models.PriorityLow}, "title", "Title must be between 3 and 80 characters"},
		{"long title", models.TaskInput{Title: strings.Repeat("x", 81), Priority: models.PriorityLow}, "title", "Title must be between 3 and 80 characters"},
		{"long description", models.TaskInput{Title: "fine", Description: strings.Repeat("d", 251), Priority: models.PriorityLow}, "description", "Description must not exceed 250 characters"},
		{"missing priority", models.TaskInput{Title: "fine"}, "priority", "Priority is required"},
		{"unknown priority", models.TaskInput{Title: "fine", Priority: "URGENT"}, "priority", "Priority must be one of LOW, MEDIUM, HIGH"},
		{"unknown status", models.TaskInput{Title: "fine", Priority: models.PriorityLow, Status: "BLOCKED"}, "status", "Status must be one of TODO, IN_PROGRESS, DONE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.Equal(t, tc.msg, verr.Fields[tc.field])
		})
	}
}

func TestCreate_BoundaryLengthsAccepted(t *testing.T) {
	svc, _ := newTestService(t)

	mustCreate(t, svc, models.TaskInput{Title: "abc", Priority: models.PriorityLow})
	mustCreate(t, svc, models.TaskInput{
		Title:       strings.Repeat("t", 80),
		Description: strings.Repeat("d", 250),
		Priority:    models.PriorityLow,
	})
	// multi-byte runes count once
	mustCreate(t, svc, models.TaskInput{Title: strings.Repeat("é", 80), Priority: models.PriorityLow})
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Contains(t, err.Error(), "with id: 7")
}

func TestGetAll_Filters(t *testing.T) {
	svc, today := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "Write docs", Priority: models.PriorityLow})
	mustCreate(t, svc, models.TaskInput{Title: "Ship release", Description: "docs included", Priority: models.PriorityHigh, DueDate: datePtr(today)})
	mustCreate(t, svc, models.TaskInput{Title: "Plan sprint", Priority: models.PriorityMedium, Status: models.StatusDone})

	all, err := svc.GetAll(ctx, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Write docs", all[0].Title)

	done := models.StatusDone
	onlyDone, err := svc.GetAll(ctx, models.TaskFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, onlyDone, 1)
	assert.Equal(t, "Plan sprint", onlyDone[0].Title)

	q := "DOCS"
	byText, err := svc.GetAll(ctx, models.TaskFilter{Search: &q})
	require.NoError(t, err)
	assert.Len(t, byText, 2)

	blank := "   "
	unfiltered, err := svc.GetAll(ctx, models.TaskFilter{Search: &blank})
	require.NoError(t, err)
	assert.Len(t, unfiltered, 3)
}

func TestUpdate_ReplacesAllFields(t *testing.T) {
	svc, today := newTestService(t)
	ctx := context.Background()

	orig := mustCreate(t, svc, models.TaskInput{
		Title:       "Original",
		Description: "old description",
		Status:      models.StatusInProgress,
		Priority:    models.PriorityMedium,
		DueDate:     datePtr(today.AddDays(3)),
	})

	updated, err := svc.Update(ctx, orig.ID, models.TaskInput{Title: "Renamed", Priority: models.PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Empty(t, updated.Description)
	assert.Equal(t, models.StatusTodo, updated.Status)
	assert.Equal(t, models.PriorityLow, updated.Priority)
	assert.Nil(t, updated.DueDate)
	assert.True(t, updated.CreatedAt.Equal(orig.CreatedAt))
}

func TestUpdate_HighPriorityRuleUsesNewInput(t *testing.T) {
	svc, today := newTestService(t)
	ctx := context.Background()

	orig := mustCreate(t, svc, models.TaskInput{Title: "Has date", Priority: models.PriorityHigh, DueDate: datePtr(today.AddDays(2))})

	_, err := svc.Update(ctx, orig.ID, models.TaskInput{Title: "Has date", Priority: models.PriorityHigh})
	requireBusinessRule(t, err, "Due date is required for HIGH priority tasks")

	stored, err := svc.GetByID(ctx, orig.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DueDate)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 99, models.TaskInput{Title: "Nope", Priority: models.PriorityLow})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateStatus_OverdueCannotComplete(t *testing.T) {
	svc, today := newTestService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{Title: "Tarea vencida", Priority: models.PriorityLow, DueDate: datePtr(today.AddDays(-5))})

	_, err := svc.UpdateStatus(ctx, task.ID, models.StatusDone)
	requireBusinessRule(t, err, "Cannot complete an overdue task")

	// other transitions stay allowed
	moved, err := svc.UpdateStatus(ctx, task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, moved.Status)
}

func TestUpdateStatus_CompletesWhenNotOverdue(t *testing.T) {
	svc, today := newTestService(t)
	ctx := context.Background()

	for _, due := range []*civil.Date{nil, datePtr(today), datePtr(today.AddDays(1))} {
		in := models.TaskInput{Title: "Completable", Description: "keep me", Priority: models.PriorityMedium, DueDate: due}
		task := mustCreate(t, svc, in)

		done, err := svc.UpdateStatus(ctx, task.ID, models.StatusDone)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDone, done.Status)
		assert.Equal(t, "keep me", done.Description)
		assert.Equal(t, models.PriorityMedium, done.Priority)
		assert.Equal(t, task.DueDate, done.DueDate)
	}
}

func TestUpdateStatus_SkipsHighPriorityRule(t *testing.T) {
	repo := repositories.NewMemoryTaskRepository()
	svc := NewTaskService(repo, func() time.Time { return fixedNow }, time.UTC)
	ctx := context.Background()

	// a HIGH task without due date can only come from outside the service
	stored, err := repo.Save(ctx, &models.Task{Title: "Legacy", Status: models.StatusTodo, Priority: models.PriorityHigh})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, stored.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
}

func TestUpdateStatus_InvalidAndMissing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := mustCreate(t, svc, models.TaskInput{Title: "Task", Priority: models.PriorityLow})

	_, err := svc.UpdateStatus(ctx, task.ID, "ARCHIVED")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Status must be one of TODO, IN_PROGRESS, DONE", verr.Fields["status"])

	_, err = svc.UpdateStatus(ctx, 404, models.StatusDone)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateStatus_UsesCalendarDateInLocation(t *testing.T) {
	// 23:30 UTC on Mar 9 is already Mar 10 one hour east
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2026, time.March, 9, 23, 30, 0, 0, time.UTC)
	svc := NewTaskService(repositories.NewMemoryTaskRepository(), func() time.Time { return now }, loc)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{Title: "Due Mar 9", Priority: models.PriorityLow, DueDate: &civil.Date{Year: 2026, Month: 3, Day: 9}})
	_, err := svc.UpdateStatus(ctx, task.ID, models.StatusDone)
	requireBusinessRule(t, err, "Cannot complete an overdue task")
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{Title: "Temporary", Priority: models.PriorityLow})
	require.NoError(t, svc.Delete(ctx, task.ID))

	_, err := svc.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, task.ID), ErrTaskNotFound)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

// countingRepo records store reads so tests can assert that rejected input never reaches it.
type countingRepo struct {
	repositories.TaskRepository
	finds int
}

func (r *countingRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	r.finds++
	return r.TaskRepository.FindByID(ctx, id)
}

func TestUpdate_ValidatesBeforeLookup(t *testing.T) {
	repo := &countingRepo{TaskRepository: repositories.NewMemoryTaskRepository()}
	svc := NewTaskService(repo, func() time.Time { return fixedNow }, time.UTC)
	ctx := context.Background()

	_, err := svc.Update(ctx, 999, models.TaskInput{Title: "x"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	assert.NotErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.UpdateStatus(ctx, 999, "BOGUS")
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	assert.Equal(t, "Status must be one of TODO, IN_PROGRESS, DONE", verr.Fields["status"])

	assert.Zero(t, repo.finds)
}
