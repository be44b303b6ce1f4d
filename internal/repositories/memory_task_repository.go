package repositories

import (
	"context"
	"sync"
	"time"

	"taskmanager/internal/models"
)

// memoryTaskRepository keeps tasks in process memory. Records are returned in
// insertion order and copied on the way in and out.
type memoryTaskRepository struct {
	mu     sync.RWMutex
	tasks  map[int64]models.Task
	order  []int64
	nextID int64
	now    func() time.Time
}

func NewMemoryTaskRepository() TaskRepository {
	return &memoryTaskRepository{
		tasks: map[int64]models.Task{},
		now:   time.Now,
	}
}

func (r *memoryTaskRepository) Save(_ context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	t := copyTask(*task)
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
		t.CreatedAt = now
		t.UpdatedAt = now
		r.tasks[t.ID] = t
		r.order = append(r.order, t.ID)
		out := copyTask(t)
		return &out, nil
	}

	existing, ok := r.tasks[t.ID]
	if !ok {
		return nil, ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = now
	r.tasks[t.ID] = t
	out := copyTask(t)
	return &out, nil
}

func (r *memoryTaskRepository) FindByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyTask(t)
	return &out, nil
}

func (r *memoryTaskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	return r.FindWithFilters(ctx, models.TaskFilter{})
}

func (r *memoryTaskRepository) FindWithFilters(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Task{}
	for _, id := range r.order {
		t := r.tasks[id]
		if filter.Matches(t) {
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func (r *memoryTaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func copyTask(t models.Task) models.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
