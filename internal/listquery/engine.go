package listquery

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pms/internal/domain"
)

// Query describes one paginated listing: where to read, which columns, the
// access scope, user filters, and the legal sort fields (logical name ->
// column). Count and fetch always run against the same composed predicate.
type Query struct {
	Table    string
	Columns  []string
	Scope    Cond
	Filters  []Cond
	Sortable map[string]string
	// DefaultSort is a logical name present in Sortable; falls back to
	// created_at when unset.
	DefaultSort string
	// IDColumn is the deterministic tiebreaker, "id" when unset.
	IDColumn string
}

// List runs the composed scope+filter predicate, counts the matching rows,
// clamps the requested page into range and fetches exactly one page in a
// stable order. Store failures surface as domain.QueryError; a Page is never
// returned half-populated.
func List[T any](ctx context.Context, db *sql.DB, q Query, p Params, scan func(*sql.Rows) (T, error)) (Page[T], error) {
	var zero Page[T]

	size, err := clampPageSize(p.PageSize)
	if err != nil {
		return zero, err
	}
	pageNo := p.PageNo
	if pageNo < 0 {
		pageNo = 0
	}

	orderBy, err := q.orderClause(p)
	if err != nil {
		return zero, err
	}

	where := And(append([]Cond{q.Scope}, q.Filters...)...)

	var total int64
	countSQL := Rebind("SELECT COUNT(*) FROM " + q.Table + " WHERE " + where.Expr)
	if err := db.QueryRowContext(ctx, countSQL, where.Args...).Scan(&total); err != nil {
		return zero, domain.QueryError{Op: q.Table + " count", Err: err}
	}

	totalPages := totalPagesFor(total, size)
	if totalPages == 0 {
		pageNo = 0
	} else if pageNo > totalPages-1 {
		pageNo = totalPages - 1
	}

	page := Page[T]{
		Items:      []T{},
		PageNo:     pageNo,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}
	if total == 0 {
		return page, nil
	}

	fetchSQL := Rebind(fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		strings.Join(q.Columns, ", "), q.Table, where.Expr, orderBy,
	))
	args := append(append([]any{}, where.Args...), size, pageNo*size)

	rows, err := db.QueryContext(ctx, fetchSQL, args...)
	if err != nil {
		return zero, domain.QueryError{Op: q.Table + " fetch", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return zero, domain.QueryError{Op: q.Table + " scan", Err: err}
		}
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return zero, domain.QueryError{Op: q.Table + " fetch", Err: err}
	}

	return page, nil
}

// Count runs a bare count over a composed predicate. Dashboard aggregation
// reuses the same scope conds listing does.
func Count(ctx context.Context, db *sql.DB, table string, where Cond) (int64, error) {
	composed := And(where)
	var total int64
	countSQL := Rebind("SELECT COUNT(*) FROM " + table + " WHERE " + composed.Expr)
	if err := db.QueryRowContext(ctx, countSQL, composed.Args...).Scan(&total); err != nil {
		return 0, domain.QueryError{Op: table + " count", Err: err}
	}
	return total, nil
}

func (q Query) orderClause(p Params) (string, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = q.DefaultSort
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := q.Sortable[sortBy]
	if !ok {
		return "", domain.ValidationError{Field: "sort_by", Msg: fmt.Sprintf("unknown sort field %q", sortBy)}
	}

	dir := "DESC"
	switch strings.ToLower(p.SortOrder) {
	case "", SortDesc:
	case SortAsc:
		dir = "ASC"
	default:
		return "", domain.ValidationError{Field: "sort_order", Msg: "must be asc or desc"}
	}

	idColumn := q.IDColumn
	if idColumn == "" {
		idColumn = "id"
	}
	if column == idColumn {
		return column + " " + dir, nil
	}
	return column + " " + dir + ", " + idColumn + " " + dir, nil
}
