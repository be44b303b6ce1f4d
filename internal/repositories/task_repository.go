package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"taskmanager/internal/models"
)

var ErrNotFound = errors.New("record not found")

type TaskRepository interface {
	// Save inserts the task when ID is zero and replaces the stored record otherwise.
	Save(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	FindWithFilters(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Delete(ctx context.Context, id int64) error
}

type taskRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewTaskRepository(db *sql.DB, dialect Dialect) TaskRepository {
	return &taskRepository{db: db, dialect: dialect, now: time.Now}
}

const taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

func (r *taskRepository) Save(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.ID == 0 {
		return r.insert(ctx, task)
	}
	return r.update(ctx, task)
}

func (r *taskRepository) insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	now := r.now().UTC()
	query := r.dialect.Rebind(`
		INSERT INTO tasks (title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?)
		RETURNING id`)
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, string(task.Status), string(task.Priority), dateValue(task.DueDate), now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *taskRepository) update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := r.dialect.Rebind(`
		UPDATE tasks SET
			title=?, description=?, status=?, priority=?, due_date=?, updated_at=?
		WHERE id=?`)
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, string(task.Status), string(task.Priority), dateValue(task.DueDate),
		r.now().UTC(), task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, task.ID)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := r.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	return r.FindWithFilters(ctx, models.TaskFilter{})
}

func (r *taskRepository) FindWithFilters(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Search != nil {
		pattern := "%" + escapeLike(strings.ToLower(*filter.Search)) + "%"
		lower := r.dialect.Lower()
		conditions = append(conditions,
			`(`+lower+`(title) LIKE ? ESCAPE '\' OR `+lower+`(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(baseQuery), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t   models.Task
		due nullDate
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Date
		t.DueDate = &d
	}
	return &t, nil
}

// escapeLike makes %, _ and \ match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func dateValue(d *civil.Date) any {
	if d == nil || !d.IsValid() {
		return nil
	}
	return d.String()
}
