package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

const taskColumns = `id, title, description, due_date, priority, status, created_by, assigned_to, created_at, updated_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(
		ctx, query, task.ID, task.Title, task.Description, task.DueDate, task.Priority,
		task.Status, task.CreatedBy, task.AssignedTo, task.CreatedAt, task.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.Title, &task.Description, &task.DueDate, &task.Priority,
		&task.Status, &task.CreatedBy, &task.AssignedTo, &task.CreatedAt, &task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, err
}

// Update rewrites every mutable column; created_by is deliberately not in
// the SET list.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks SET title = $1, description = $2, due_date = $3, priority = $4,
	 status = $5, assigned_to = $6, updated_at = $7 WHERE id = $8`

	res, err := r.db.ExecContext(
		ctx, query, task.Title, task.Description, task.DueDate, task.Priority,
		task.Status, task.AssignedTo, task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}
	return checkAffected(res, task.ID)
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, id)
}

// Assign re-points the assignee and returns the updated task.
func (r *TaskRepository) Assign(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	assignee := uuid.NullUUID{UUID: userID, Valid: true}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET assigned_to = $1, updated_at = $2 WHERE id = $3`,
		assignee, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := checkAffected(res, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// List scans tasks visible to the caller (creator or assignee), narrowed by
// the present filter criteria.
func (r *TaskRepository) List(ctx context.Context, callerID uuid.UUID, filter TaskFilter) ([]*models.Task, error) {
	clauses := []string{"(created_by = $1 OR assigned_to = $2)"}
	args := []any{callerID, callerID}
	clauses, args = filter.appendClauses(clauses, args)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, args...)
}

func (r *TaskRepository) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_to = $1 ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, userID)
}

func (r *TaskRepository) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE created_by = $1 ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, userID)
}

// ListOverdue returns the caller's assigned tasks that are past due and not
// completed.
func (r *TaskRepository) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	 WHERE assigned_to = $1 AND due_date < $2 AND status <> $3 ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, userID, now, models.StatusCompleted)
}

// DashboardCounts computes the three dashboard aggregates without
// materializing the lists.
func (r *TaskRepository) DashboardCounts(ctx context.Context, userID uuid.UUID, now time.Time) (assigned, created, overdue int, err error) {
	if err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE assigned_to = $1`, userID).Scan(&assigned); err != nil {
		return
	}
	if err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE created_by = $1`, userID).Scan(&created); err != nil {
		return
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE assigned_to = $1 AND due_date < $2 AND status <> $3`,
		userID, now, models.StatusCompleted).Scan(&overdue)
	return
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &task.DueDate, &task.Priority,
			&task.Status, &task.CreatedBy, &task.AssignedTo, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func checkAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}
