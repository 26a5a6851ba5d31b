package listquery

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"pms/internal/domain"
)

type listedProject struct {
	ID   int64
	Name string
}

func scanListedProject(rows *sql.Rows) (listedProject, error) {
	var p listedProject
	err := rows.Scan(&p.ID, &p.Name)
	return p, err
}

func projectQuery(scope Cond, filters ...Cond) Query {
	return Query{
		Table:   "projects",
		Columns: []string{"id", "name"},
		Scope:   scope,
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"name":       "name",
		},
	}
}

func projectRows(n int, startID int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name"})
	for i := 0; i < n; i++ {
		rows.AddRow(startID+int64(i), "proj")
	}
	return rows
}

func TestListEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE visibility = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), Params{PageNo: 0, PageSize: 20}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(page.Items) != 0 || page.TotalItems != 0 || page.TotalPages != 0 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.HasNext() || page.HasPrev() {
		t.Fatalf("empty page must not navigate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListFirstPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE visibility = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT id, name FROM projects WHERE visibility = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("public", 10, 0).
		WillReturnRows(projectRows(10, 1))

	page, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), Params{PageNo: 0, PageSize: 10}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(page.Items) != 10 || page.TotalItems != 25 || page.TotalPages != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if !page.HasNext() || page.HasPrev() {
		t.Fatalf("first of three pages: has_next=%v has_prev=%v", page.HasNext(), page.HasPrev())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListLastPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT id, name FROM projects .* LIMIT \$2 OFFSET \$3`).
		WithArgs("public", 10, 20).
		WillReturnRows(projectRows(5, 21))

	page, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), Params{PageNo: 2, PageSize: 10}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(page.Items) != 5 {
		t.Fatalf("last page should hold the remainder, got %d", len(page.Items))
	}
	if page.HasNext() || !page.HasPrev() {
		t.Fatalf("last page: has_next=%v has_prev=%v", page.HasNext(), page.HasPrev())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Requesting a page far past the end clamps down to the last valid page
// instead of erroring.
func TestListOutOfRangePageClamps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT id, name FROM projects`).
		WithArgs("public", 10, 20).
		WillReturnRows(projectRows(5, 21))

	page, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), Params{PageNo: 99, PageSize: 10}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if page.PageNo != 2 {
		t.Fatalf("page_no should clamp to 2, got %d", page.PageNo)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListNegativePageNoTreatedAsFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT id, name FROM projects`).
		WithArgs("public", 10, 0).
		WillReturnRows(projectRows(3, 1))

	page, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), Params{PageNo: -4, PageSize: 10}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if page.PageNo != 0 {
		t.Fatalf("negative page_no should clamp to 0, got %d", page.PageNo)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Count and fetch must run against the same composed scope+filter predicate.
func TestListCountAndFetchShareThePredicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	where := `\(visibility = \$1\) AND \(status = \$2\)`
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE ` + where).
		WithArgs("public", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT id, name FROM projects WHERE ` + where).
		WithArgs("public", "active", 20, 0).
		WillReturnRows(projectRows(4, 1))

	q := projectQuery(Eq("visibility", "public"), Eq("status", "active"))
	page, err := List(context.Background(), db, q, Params{}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if page.TotalItems != 4 || len(page.Items) != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSortedAscendingByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY name ASC, id ASC`).
		WithArgs("public", 20, 0).
		WillReturnRows(projectRows(2, 1))

	_, err = List(context.Background(), db, projectQuery(Eq("visibility", "public")), Params{SortBy: "name", SortOrder: "asc"}, scanListedProject)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListUnknownSortFieldRejected(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	_, err = List(context.Background(), db, projectQuery(True()), Params{SortBy: "password_hash"}, scanListedProject)
	if !domain.IsValidation(err) {
		t.Fatalf("unknown sort field should be a validation error, got %v", err)
	}
}

func TestListStoreFailurePropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).WillReturnError(boom)

	_, err = List(context.Background(), db, projectQuery(True()), Params{}, scanListedProject)
	if !domain.IsQuery(err) {
		t.Fatalf("store failure should surface as QueryError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause should be preserved, got %v", err)
	}
}

func TestListFetchFailureNeverReturnsPartialPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT id, name FROM projects`).
		WillReturnError(errors.New("timeout"))

	page, err := List(context.Background(), db, projectQuery(True()), Params{}, scanListedProject)
	if !domain.IsQuery(err) {
		t.Fatalf("fetch failure should surface as QueryError, got %v", err)
	}
	if page.TotalItems != 0 || page.Items != nil {
		t.Fatalf("failed list must not hand back a partial page: %+v", page)
	}
}

// Walking every page in order must reproduce the full result set exactly
// once: no row duplicated across page boundaries, none dropped.
func TestListAllPagesConcatenateToFullSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	const total = 25
	const pageSize = 10
	sizes := []int{10, 10, 5}
	for pageNo, size := range sizes {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE visibility = \$1`).
			WithArgs("public").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(total))
		mock.ExpectQuery(`SELECT id, name FROM projects WHERE visibility = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
			WithArgs("public", pageSize, pageNo*pageSize).
			WillReturnRows(projectRows(size, int64(pageNo*pageSize)+1))
	}

	seen := make(map[int64]int)
	var collected []listedProject
	for pageNo := 0; pageNo < 3; pageNo++ {
		page, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")),
			Params{PageNo: pageNo, PageSize: pageSize}, scanListedProject)
		if err != nil {
			t.Fatalf("page %d: %v", pageNo, err)
		}
		if page.TotalItems != total || page.TotalPages != 3 {
			t.Fatalf("page %d metadata drifted: %+v", pageNo, page)
		}
		if page.HasNext() != (pageNo < 2) || page.HasPrev() != (pageNo > 0) {
			t.Fatalf("page %d navigation wrong: next=%v prev=%v", pageNo, page.HasNext(), page.HasPrev())
		}
		for _, item := range page.Items {
			seen[item.ID]++
		}
		collected = append(collected, page.Items...)
	}

	if len(collected) != total {
		t.Fatalf("concatenated %d rows, want %d", len(collected), total)
	}
	for id := int64(1); id <= total; id++ {
		if seen[id] != 1 {
			t.Fatalf("row %d appeared %d times", id, seen[id])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Identical calls over unchanged data return identical pages.
func TestListRepeatedCallIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE visibility = \$1`).
			WithArgs("public").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery(`SELECT id, name FROM projects WHERE visibility = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
			WithArgs("public", 5, 5).
			WillReturnRows(projectRows(5, 6))
	}

	params := Params{PageNo: 1, PageSize: 5}
	first, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), params, scanListedProject)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := List(context.Background(), db, projectQuery(Eq("visibility", "public")), params, scanListedProject)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.PageNo != second.PageNo || first.TotalItems != second.TotalItems || first.TotalPages != second.TotalPages {
		t.Fatalf("metadata diverged: %+v vs %+v", first, second)
	}
	if len(first.Items) != len(second.Items) {
		t.Fatalf("item counts diverged: %d vs %d", len(first.Items), len(second.Items))
	}
	for i := range first.Items {
		if first.Items[i] != second.Items[i] {
			t.Fatalf("item %d diverged: %+v vs %+v", i, first.Items[i], second.Items[i])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE status = \$1`).
		WithArgs("todo").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := Count(context.Background(), db, "tasks", Eq("status", "todo"))
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if total != 7 {
		t.Fatalf("got %d", total)
	}
}
