package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"pms/internal/domain"
	"pms/internal/repositories"
)

func TestDashboardSummaryAggregatesScopedCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dev := domain.Principal{ID: 7, Role: domain.RoleDeveloper}
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WithArgs("public", int64(7), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("todo", int64(4)).
			AddRow("in_progress", int64(2)).
			AddRow("done", int64(10)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
		WithArgs("public", int64(7), fixed, fixed.Add(7*24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	svc := DashboardService{
		Projects: repositories.ProjectRepository{DB: db},
		Tasks:    repositories.TaskRepository{DB: db},
		Events:   repositories.EventRepository{DB: db},
		Now:      func() time.Time { return fixed },
	}

	summary, err := svc.Summary(context.Background(), dev)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Projects != 3 {
		t.Fatalf("projects=%d", summary.Projects)
	}
	if summary.OpenTasks != 6 {
		t.Fatalf("open tasks should exclude done, got %d", summary.OpenTasks)
	}
	if summary.UpcomingEvents != 2 {
		t.Fatalf("upcoming=%d", summary.UpcomingEvents)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDashboardSummaryRequiresAuth(t *testing.T) {
	svc := DashboardService{}
	if _, err := svc.Summary(context.Background(), domain.AnonymousPrincipal()); !domain.IsForbidden(err) {
		t.Fatalf("anonymous dashboard should be forbidden, got %v", err)
	}
}
