package repositories

import (
	"context"
	"database/sql"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
)

type FileRepository struct {
	DB *sql.DB
}

type FileFilters struct {
	ProjectID int64
	Search    string
}

var fileColumns = []string{
	"id", "owner_id", "project_id", "name", "stored_name", "content_type", "size_bytes", "created_at",
}

// Uploads are visible to their owner and to members of the project they are
// attached to. Unattached uploads stay owner-only.
func fileScope() listquery.ScopeSpec {
	return listquery.ScopeSpec{
		Owner: func(id int64) listquery.Cond {
			return listquery.Eq("owner_id", id)
		},
		Member: func(id int64) listquery.Cond {
			return listquery.Cond{
				Expr: "files.project_id IS NOT NULL AND EXISTS (SELECT 1 FROM projects p WHERE p.id = files.project_id AND (p.owner_id = ? OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = ?)))",
				Args: []any{id, id},
			}
		},
	}
}

func scanStoredFile(rows *sql.Rows) (models.StoredFile, error) {
	var (
		f       models.StoredFile
		project sql.NullInt64
	)
	err := rows.Scan(&f.ID, &f.OwnerID, &project, &f.Name, &f.StoredName, &f.ContentType, &f.SizeBytes, &f.CreatedAt)
	if err != nil {
		return f, err
	}
	if project.Valid {
		f.ProjectID = &project.Int64
	}
	return f, nil
}

func (r FileRepository) List(ctx context.Context, principal domain.Principal, f FileFilters, p listquery.Params) (listquery.Page[models.StoredFile], error) {
	var filters []listquery.Cond
	if f.ProjectID > 0 {
		filters = append(filters, listquery.Eq("project_id", f.ProjectID))
	}
	if f.Search != "" {
		filters = append(filters, listquery.Contains("name", f.Search))
	}

	q := listquery.Query{
		Table:   "files",
		Columns: fileColumns,
		Scope:   listquery.ComputeScope(principal, fileScope()),
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"name":       "name",
			"size":       "size_bytes",
		},
	}
	return listquery.List(ctx, r.DB, q, p, scanStoredFile)
}

func (r FileRepository) GetByID(ctx context.Context, id int64) (models.StoredFile, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, owner_id, project_id, name, stored_name, content_type, size_bytes, created_at
		FROM files WHERE id = $1`, id)
	if err != nil {
		return models.StoredFile{}, domain.QueryError{Op: "files get", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.StoredFile{}, domain.QueryError{Op: "files get", Err: err}
		}
		return models.StoredFile{}, domain.NotFoundError{Resource: "file"}
	}
	return scanStoredFile(rows)
}

func (r FileRepository) Create(ctx context.Context, f models.StoredFile) (models.StoredFile, error) {
	var project any
	if f.ProjectID != nil {
		project = *f.ProjectID
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO files (owner_id, project_id, name, stored_name, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`,
		f.OwnerID, project, f.Name, f.StoredName, f.ContentType, f.SizeBytes).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return f, domain.QueryError{Op: "files insert", Err: err}
	}
	return f, nil
}

func (r FileRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return domain.QueryError{Op: "files delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "file"}
	}
	return nil
}
