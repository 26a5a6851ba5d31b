package repositories

import (
	"context"
	"database/sql"
	"time"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
)

type TaskRepository struct {
	DB *sql.DB
}

type TaskFilters struct {
	ProjectID  int64
	Status     string
	Priority   string
	AssigneeID int64
	Search     string
	DueFrom    *time.Time
	DueTo      *time.Time
}

var taskColumns = []string{
	"id", "project_id", "title", "description", "status", "priority", "assignee_id", "due_date", "created_by", "created_at", "updated_at",
}

// Task visibility follows the owning project: public project tasks are open,
// otherwise the caller must have created the task, be assigned to it, or be a
// member/owner of the project.
func taskScope() listquery.ScopeSpec {
	return listquery.ScopeSpec{
		Public: listquery.Cond{
			Expr: "EXISTS (SELECT 1 FROM projects p WHERE p.id = tasks.project_id AND p.visibility = ?)",
			Args: []any{models.VisibilityPublic},
		},
		Owner: func(id int64) listquery.Cond {
			return listquery.Cond{
				Expr: "created_by = ? OR assignee_id = ?",
				Args: []any{id, id},
			}
		},
		Member: func(id int64) listquery.Cond {
			return listquery.Cond{
				Expr: "EXISTS (SELECT 1 FROM projects p WHERE p.id = tasks.project_id AND (p.owner_id = ? OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = ?)))",
				Args: []any{id, id},
			}
		},
	}
}

func scanTask(rows *sql.Rows) (models.Task, error) {
	var (
		t        models.Task
		assignee sql.NullInt64
		due      sql.NullTime
	)
	err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &assignee, &due, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.Int64
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func (r TaskRepository) List(ctx context.Context, principal domain.Principal, f TaskFilters, p listquery.Params) (listquery.Page[models.Task], error) {
	var filters []listquery.Cond
	if f.ProjectID > 0 {
		filters = append(filters, listquery.Eq("project_id", f.ProjectID))
	}
	if f.Status != "" {
		filters = append(filters, listquery.Eq("status", f.Status))
	}
	if f.Priority != "" {
		filters = append(filters, listquery.Eq("priority", f.Priority))
	}
	if f.AssigneeID > 0 {
		filters = append(filters, listquery.Eq("assignee_id", f.AssigneeID))
	}
	if f.Search != "" {
		filters = append(filters, listquery.Contains("title", f.Search))
	}
	if f.DueFrom != nil {
		filters = append(filters, listquery.GTE("due_date", *f.DueFrom))
	}
	if f.DueTo != nil {
		filters = append(filters, listquery.LTE("due_date", *f.DueTo))
	}

	q := listquery.Query{
		Table:   "tasks",
		Columns: taskColumns,
		Scope:   listquery.ComputeScope(principal, taskScope()),
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"updated_at": "updated_at",
			"due_date":   "due_date",
			"priority":   "priority",
			"status":     "status",
			"title":      "title",
		},
	}
	return listquery.List(ctx, r.DB, q, p, scanTask)
}

func (r TaskRepository) GetByID(ctx context.Context, id int64) (models.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, project_id, title, description, status, priority, assignee_id, due_date, created_by, created_at, updated_at
		FROM tasks WHERE id = $1`, id)
	if err != nil {
		return models.Task{}, domain.QueryError{Op: "tasks get", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.Task{}, domain.QueryError{Op: "tasks get", Err: err}
		}
		return models.Task{}, domain.NotFoundError{Resource: "task"}
	}
	return scanTask(rows)
}

func (r TaskRepository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	var assignee any
	if t.AssigneeID != nil {
		assignee = *t.AssigneeID
	}
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (project_id, title, description, status, priority, assignee_id, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		t.ProjectID, t.Title, t.Description, t.Status, t.Priority, assignee, due, t.CreatedBy).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, domain.QueryError{Op: "tasks insert", Err: err}
	}
	return t, nil
}

func (r TaskRepository) Update(ctx context.Context, t models.Task) (models.Task, error) {
	var assignee any
	if t.AssigneeID != nil {
		assignee = *t.AssigneeID
	}
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5, due_date = $6, updated_at = NOW()
		WHERE id = $7`,
		t.Title, t.Description, t.Status, t.Priority, assignee, due, t.ID)
	if err != nil {
		return t, domain.QueryError{Op: "tasks update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return t, domain.NotFoundError{Resource: "task"}
	}
	return r.GetByID(ctx, t.ID)
}

func (r TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return domain.QueryError{Op: "tasks delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "task"}
	}
	return nil
}

// StatusCounts aggregates scoped tasks per status for the dashboard.
func (r TaskRepository) StatusCounts(ctx context.Context, principal domain.Principal, projectID int64) (map[string]int64, error) {
	scope := listquery.ComputeScope(principal, taskScope())
	if projectID > 0 {
		scope = listquery.And(scope, listquery.Eq("project_id", projectID))
	}
	query := listquery.Rebind("SELECT status, COUNT(*) FROM tasks WHERE " + scope.Expr + " GROUP BY status")

	rows, err := r.DB.QueryContext(ctx, query, scope.Args...)
	if err != nil {
		return nil, domain.QueryError{Op: "tasks status counts", Err: err}
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.QueryError{Op: "tasks status counts", Err: err}
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.QueryError{Op: "tasks status counts", Err: err}
	}
	return counts, nil
}
