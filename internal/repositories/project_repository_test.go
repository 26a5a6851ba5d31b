package repositories

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"pms/internal/domain"
	"pms/internal/listquery"
)

func projectRow(id int64, name, visibility string, ownerID int64) []driver.Value {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []driver.Value{id, name, "", ownerID, visibility, "active", now, now}
}

func TestProjectListScopesNonAdminCaller(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ProjectRepository{DB: db}
	dev := domain.Principal{ID: 7, Role: domain.RoleDeveloper}

	// scope args appear in both count and fetch: public OR owner OR member
	where := `\(visibility = \$1\) OR \(owner_id = \$2\) OR \(EXISTS \(SELECT 1 FROM project_members m WHERE m\.project_id = projects\.id AND m\.user_id = \$3\)\)`
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE ` + where).
		WithArgs("public", int64(7), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows([]string{"id", "name", "description", "owner_id", "visibility", "status", "created_at", "updated_at"}).
		AddRow(projectRow(2, "beta", "private", 7)...).
		AddRow(projectRow(1, "alpha", "public", 3)...)
	mock.ExpectQuery(`SELECT id, name, description, owner_id, visibility, status, created_at, updated_at FROM projects`).
		WithArgs("public", int64(7), int64(7), 20, 0).
		WillReturnRows(rows)

	page, err := repo.List(context.Background(), dev, ProjectFilters{}, listquery.Params{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if page.TotalItems != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].Name != "beta" {
		t.Fatalf("ordering lost: %+v", page.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectListAdminIsUnscoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ProjectRepository{DB: db}
	admin := domain.Principal{ID: 1, Role: domain.RoleAdmin}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE TRUE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM projects WHERE TRUE ORDER BY created_at DESC, id DESC`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "owner_id", "visibility", "status", "created_at", "updated_at"}).
			AddRow(projectRow(9, "secret", "private", 4)...))

	page, err := repo.List(context.Background(), admin, ProjectFilters{}, listquery.Params{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != 9 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectListAppliesStatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ProjectRepository{DB: db}
	anon := domain.AnonymousPrincipal()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE \(visibility = \$1\) AND \(status = \$2\)`).
		WithArgs("public", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := repo.List(context.Background(), anon, ProjectFilters{Status: "active"}, listquery.Params{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if page.TotalItems != 0 || len(page.Items) != 0 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectMemberRoleMissingMembership(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ProjectRepository{DB: db}
	mock.ExpectQuery(`SELECT role FROM project_members`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := repo.MemberRole(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("member role error: %v", err)
	}
	if role != "" {
		t.Fatalf("expected empty role, got %q", role)
	}
}

func TestProjectGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ProjectRepository{DB: db}
	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 404)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
