package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLTaskRepository implements domain.TaskRepository on PostgreSQL or SQLite.
// Queries run on the transaction in ctx when one is present.
type SQLTaskRepository struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLTaskRepository creates a repository for the connection's driver.
func NewSQLTaskRepository(conn database.Connection) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn, now: time.Now}
}

func (r *SQLTaskRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLTaskRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// List returns every task owned by the user, in schedule order.
func (r *SQLTaskRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	query := r.q(`SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = ?
		ORDER BY due_date IS NULL, due_date, due_time IS NULL, due_time, interval_index, created_at`)

	rows, err := r.exec(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get returns one task by id.
func (r *SQLTaskRepository) Get(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	query := r.q(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	t, err := scanTask(r.exec(ctx).QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return t, err
}

// Create inserts a task, filling in the id and timestamps when missing.
func (r *SQLTaskRepository) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := r.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}

	row := rowFromTask(t)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(row.args())), ", ")
	query := r.q(`INSERT INTO tasks (` + taskColumns + `) VALUES (` + placeholders + `)`)
	if _, err := r.exec(ctx).Exec(ctx, query, row.args()...); err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// Update applies a patch to the stored task and returns the result.
func (r *SQLTaskRepository) Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (domain.Task, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated := patch.Apply(current, r.now())
	if err := updated.Validate(); err != nil {
		return domain.Task{}, err
	}

	row := rowFromTask(updated)
	query := r.q(`UPDATE tasks SET
			title = ?, estimated_minutes = ?, due_date = ?, due_time = ?, priority = ?,
			is_completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.exec(ctx).Exec(ctx, query,
		row.Title, row.EstimatedMinutes, row.DueDate, row.DueTime, row.Priority,
		row.IsCompleted, row.CompletedAt, row.UpdatedAt,
		id,
	)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return updated, nil
}

// Delete removes one task.
func (r *SQLTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.exec(ctx).Exec(ctx, r.q(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

// DeleteMany removes several tasks in one statement. Missing ids are ignored.
func (r *SQLTaskRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	var (
		query string
		args  []any
	)
	switch r.conn.Driver() {
	case database.DriverPostgres:
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = id.String()
		}
		query = `DELETE FROM tasks WHERE id = ANY($1::uuid[])`
		args = []any{pq.Array(strs)}
	default:
		query = `DELETE FROM tasks WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}

	if _, err := r.exec(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}
