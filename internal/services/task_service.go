// internal/services/task_service.go
package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, input models.TaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, input models.TaskInput) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.TaskStats, error)
}

// Clock returns the current instant; "today" is derived from it in the service location.
type Clock func() time.Time

type taskService struct {
	repo  repositories.TaskRepository
	clock Clock
	loc   *time.Location
}

// NewTaskService creates a new instance of TaskService. A nil clock means
// time.Now and a nil location means time.Local.
func NewTaskService(repo repositories.TaskRepository, clock Clock, loc *time.Location) TaskService {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &taskService{repo: repo, clock: clock, loc: loc}
}

func (s *taskService) today() civil.Date {
	return civil.DateOf(s.clock().In(s.loc))
}

func (s *taskService) Create(ctx context.Context, input models.TaskInput) (*models.Task, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := requireDueDateForHigh(input.Priority, input.DueDate); err != nil {
		log.Printf("[task][create][deny] %v", err)
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.StatusTodo
	}
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}

	saved, err := s.repo.Save(ctx, task)
	if err != nil {
		return nil, err
	}
	log.Printf("[task][create][ok] id=%d status=%s priority=%s", saved.ID, saved.Status, saved.Priority)
	return saved, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.findTask(ctx, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Search != nil && strings.TrimSpace(*filter.Search) == "" {
		filter.Search = nil
	}
	return s.repo.FindWithFilters(ctx, filter)
}

// Update replaces every mutable field with the input values; nothing is merged
// from the stored record. An omitted status falls back to TODO.
func (s *taskService) Update(ctx context.Context, id int64, input models.TaskInput) (*models.Task, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireDueDateForHigh(input.Priority, input.DueDate); err != nil {
		log.Printf("[task][update][deny] id=%d %v", id, err)
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Status = input.Status
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	task.Priority = input.Priority
	task.DueDate = input.DueDate

	updated, err := s.repo.Save(ctx, task)
	if err != nil {
		return nil, s.translate(id, err)
	}
	log.Printf("[task][update][ok] id=%d", id)
	return updated, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error) {
	if err := validateStruct(models.StatusUpdate{Status: to}); err != nil {
		return nil, err
	}
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canChangeStatus(task, to, s.today()); err != nil {
		log.Printf("[task][status][deny] id=%d from=%s to=%s: %v", id, task.Status, to, err)
		return nil, err
	}

	from := task.Status
	task.Status = to
	updated, err := s.repo.Save(ctx, task)
	if err != nil {
		return nil, s.translate(id, err)
	}
	log.Printf("[task][status][ok] id=%d from=%s to=%s", id, from, to)
	return updated, nil
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	if _, err := s.findTask(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(id, err)
	}
	log.Printf("[task][delete][ok] id=%d", id)
	return nil
}

func (s *taskService) Stats(ctx context.Context) (*models.TaskStats, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(tasks, s.today()), nil
}

func (s *taskService) findTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(id, err)
	}
	return task, nil
}

func (s *taskService) translate(id int64, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(id)
	}
	return err
}
