package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
)

type EventRepository struct {
	DB *sql.DB
}

type EventFilters struct {
	OwnerID int64
	From    *time.Time
	To      *time.Time
	Search  string
}

var eventColumns = []string{
	"id", "title", "description", "owner_id", "visibility", "location", "starts_at", "ends_at", "created_at", "updated_at",
}

func eventScope() listquery.ScopeSpec {
	return listquery.ScopeSpec{
		Public: listquery.Eq("visibility", models.VisibilityPublic),
		Owner: func(id int64) listquery.Cond {
			return listquery.Eq("owner_id", id)
		},
	}
}

func scanEvent(rows *sql.Rows) (models.Event, error) {
	var e models.Event
	err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.OwnerID, &e.Visibility, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r EventRepository) List(ctx context.Context, principal domain.Principal, f EventFilters, p listquery.Params) (listquery.Page[models.Event], error) {
	var filters []listquery.Cond
	if f.OwnerID > 0 {
		filters = append(filters, listquery.Eq("owner_id", f.OwnerID))
	}
	if f.From != nil {
		filters = append(filters, listquery.GTE("starts_at", *f.From))
	}
	if f.To != nil {
		filters = append(filters, listquery.LTE("starts_at", *f.To))
	}
	if f.Search != "" {
		filters = append(filters, listquery.Contains("title", f.Search))
	}

	q := listquery.Query{
		Table:   "events",
		Columns: eventColumns,
		Scope:   listquery.ComputeScope(principal, eventScope()),
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"starts_at":  "starts_at",
			"title":      "title",
		},
		DefaultSort: "starts_at",
	}
	return listquery.List(ctx, r.DB, q, p, scanEvent)
}

// CountUpcoming counts scoped events starting inside [from, to).
func (r EventRepository) CountUpcoming(ctx context.Context, principal domain.Principal, from, to time.Time) (int64, error) {
	scope := listquery.ComputeScope(principal, eventScope())
	cond := listquery.And(scope, listquery.GTE("starts_at", from), listquery.Cond{Expr: "starts_at < ?", Args: []any{to}})
	return listquery.Count(ctx, r.DB, "events", cond)
}

func (r EventRepository) GetByID(ctx context.Context, id int64) (models.Event, error) {
	var e models.Event
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, title, description, owner_id, visibility, location, starts_at, ends_at, created_at, updated_at
		FROM events WHERE id = $1`, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.OwnerID, &e.Visibility, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return e, domain.NotFoundError{Resource: "event"}
	}
	if err != nil {
		return e, domain.QueryError{Op: "events get", Err: err}
	}
	return e, nil
}

func (r EventRepository) Create(ctx context.Context, e models.Event) (models.Event, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO events (title, description, owner_id, visibility, location, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.OwnerID, e.Visibility, e.Location, e.StartsAt, e.EndsAt).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, domain.QueryError{Op: "events insert", Err: err}
	}
	return e, nil
}

func (r EventRepository) Update(ctx context.Context, e models.Event) (models.Event, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE events SET title = $1, description = $2, visibility = $3, location = $4, starts_at = $5, ends_at = $6, updated_at = NOW()
		WHERE id = $7`,
		e.Title, e.Description, e.Visibility, e.Location, e.StartsAt, e.EndsAt, e.ID)
	if err != nil {
		return e, domain.QueryError{Op: "events update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return e, domain.NotFoundError{Resource: "event"}
	}
	return r.GetByID(ctx, e.ID)
}

func (r EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return domain.QueryError{Op: "events delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "event"}
	}
	return nil
}
