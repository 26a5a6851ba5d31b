package repositories

import (
	"context"
	"database/sql"
	"errors"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
)

type UserRepository struct {
	DB *sql.DB
}

// UserFilters are validated upstream; zero values mean "not applied".
type UserFilters struct {
	Role   string
	Status string
	Search string
}

var userColumns = []string{
	"id", "name", "username", "email", "password_hash", "role", "status", "created_at", "updated_at",
}

// Active users are visible to any signed-in caller; a user always sees their
// own row even when deactivated.
func userScope() listquery.ScopeSpec {
	return listquery.ScopeSpec{
		Public: listquery.Eq("status", "active"),
		Owner: func(id int64) listquery.Cond {
			return listquery.Eq("id", id)
		},
	}
}

func scanUser(rows *sql.Rows) (models.User, error) {
	var u models.User
	err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r UserRepository) List(ctx context.Context, principal domain.Principal, f UserFilters, p listquery.Params) (listquery.Page[models.User], error) {
	var filters []listquery.Cond
	if f.Role != "" {
		filters = append(filters, listquery.Eq("role", f.Role))
	}
	if f.Status != "" {
		filters = append(filters, listquery.Eq("status", f.Status))
	}
	if f.Search != "" {
		filters = append(filters, listquery.Contains("name", f.Search))
	}

	q := listquery.Query{
		Table:   "users",
		Columns: userColumns,
		Scope:   listquery.ComputeScope(principal, userScope()),
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"name":       "name",
			"username":   "username",
			"role":       "role",
		},
	}
	return listquery.List(ctx, r.DB, q, p, scanUser)
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, username, email, password_hash, role, status, created_at, updated_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return u, domain.QueryError{Op: "users get", Err: err}
	}
	return u, nil
}

// GetByLogin resolves a user by email or username for authentication.
func (r UserRepository) GetByLogin(ctx context.Context, login string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, username, email, password_hash, role, status, created_at, updated_at
		FROM users WHERE email = $1 OR username = $1`, login).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return u, domain.QueryError{Op: "users get", Err: err}
	}
	return u, nil
}

func (r UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = $1 OR username = $2`, email, username).Scan(&n)
	if err != nil {
		return false, domain.QueryError{Op: "users exists", Err: err}
	}
	return n > 0, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (name, username, email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		u.Name, u.Username, u.Email, u.PasswordHash, u.Role, u.Status).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, domain.QueryError{Op: "users insert", Err: err}
	}
	return u, nil
}

func (r UserRepository) Update(ctx context.Context, u models.User) (models.User, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET name = $1, email = $2, role = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		u.Name, u.Email, u.Role, u.Status, u.ID)
	if err != nil {
		return u, domain.QueryError{Op: "users update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return u, domain.NotFoundError{Resource: "user"}
	}
	return r.GetByID(ctx, u.ID)
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.QueryError{Op: "users delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}
