package repositories

import (
	"context"
	"database/sql"
	"errors"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
)

type ProjectRepository struct {
	DB *sql.DB
}

type ProjectFilters struct {
	Status     string
	Visibility string
	OwnerID    int64
	Search     string
}

var projectColumns = []string{
	"id", "name", "description", "owner_id", "visibility", "status", "created_at", "updated_at",
}

func projectScope() listquery.ScopeSpec {
	return listquery.ScopeSpec{
		Public: listquery.Eq("visibility", models.VisibilityPublic),
		Owner: func(id int64) listquery.Cond {
			return listquery.Eq("owner_id", id)
		},
		Member: func(id int64) listquery.Cond {
			return listquery.Cond{
				Expr: "EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = projects.id AND m.user_id = ?)",
				Args: []any{id},
			}
		},
	}
}

func scanProject(rows *sql.Rows) (models.Project, error) {
	var p models.Project
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.Visibility, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r ProjectRepository) List(ctx context.Context, principal domain.Principal, f ProjectFilters, p listquery.Params) (listquery.Page[models.Project], error) {
	var filters []listquery.Cond
	if f.Status != "" {
		filters = append(filters, listquery.Eq("status", f.Status))
	}
	if f.Visibility != "" {
		filters = append(filters, listquery.Eq("visibility", f.Visibility))
	}
	if f.OwnerID > 0 {
		filters = append(filters, listquery.Eq("owner_id", f.OwnerID))
	}
	if f.Search != "" {
		filters = append(filters, listquery.Contains("name", f.Search))
	}

	q := listquery.Query{
		Table:   "projects",
		Columns: projectColumns,
		Scope:   listquery.ComputeScope(principal, projectScope()),
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"updated_at": "updated_at",
			"name":       "name",
			"status":     "status",
		},
	}
	return listquery.List(ctx, r.DB, q, p, scanProject)
}

// CountScoped counts projects inside the principal's scope; the dashboard
// reuses it so its totals always agree with what listing would return.
func (r ProjectRepository) CountScoped(ctx context.Context, principal domain.Principal) (int64, error) {
	return listquery.Count(ctx, r.DB, "projects", listquery.ComputeScope(principal, projectScope()))
}

func (r ProjectRepository) GetByID(ctx context.Context, id int64) (models.Project, error) {
	var p models.Project
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, visibility, status, created_at, updated_at
		FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.Visibility, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.NotFoundError{Resource: "project"}
	}
	if err != nil {
		return p, domain.QueryError{Op: "projects get", Err: err}
	}
	return p, nil
}

func (r ProjectRepository) Create(ctx context.Context, p models.Project) (models.Project, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO projects (name, description, owner_id, visibility, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.OwnerID, p.Visibility, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, domain.QueryError{Op: "projects insert", Err: err}
	}
	return p, nil
}

func (r ProjectRepository) Update(ctx context.Context, p models.Project) (models.Project, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE projects SET name = $1, description = $2, visibility = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		p.Name, p.Description, p.Visibility, p.Status, p.ID)
	if err != nil {
		return p, domain.QueryError{Op: "projects update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return p, domain.NotFoundError{Resource: "project"}
	}
	return r.GetByID(ctx, p.ID)
}

func (r ProjectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return domain.QueryError{Op: "projects delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "project"}
	}
	return nil
}

// MemberRole returns the membership role of userID on projectID, or "" when
// no membership exists.
func (r ProjectRepository) MemberRole(ctx context.Context, projectID, userID int64) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		`SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", domain.QueryError{Op: "project_members get", Err: err}
	}
	return role, nil
}

func (r ProjectRepository) AddMember(ctx context.Context, m models.ProjectMember) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (project_id, user_id) DO NOTHING`,
		m.ProjectID, m.UserID, m.Role)
	if err != nil {
		return domain.QueryError{Op: "project_members insert", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ConflictError{Resource: "project member", Msg: "already a member"}
	}
	return nil
}

func (r ProjectRepository) RemoveMember(ctx context.Context, projectID, userID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return domain.QueryError{Op: "project_members delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "project member"}
	}
	return nil
}

func (r ProjectRepository) ListMembers(ctx context.Context, projectID int64) ([]models.ProjectMember, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT project_id, user_id, role, created_at
		FROM project_members WHERE project_id = $1 ORDER BY created_at, user_id`, projectID)
	if err != nil {
		return nil, domain.QueryError{Op: "project_members list", Err: err}
	}
	defer rows.Close()

	members := []models.ProjectMember{}
	for rows.Next() {
		var m models.ProjectMember
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, domain.QueryError{Op: "project_members scan", Err: err}
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.QueryError{Op: "project_members list", Err: err}
	}
	return members, nil
}
