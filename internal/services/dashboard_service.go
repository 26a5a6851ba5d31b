package services

import (
	"context"
	"time"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/repositories"
)

type DashboardService struct {
	Projects repositories.ProjectRepository
	Tasks    repositories.TaskRepository
	Events   repositories.EventRepository
	Now      func() time.Time
}

type DashboardSummary struct {
	Projects       int64            `json:"projects"`
	OpenTasks      int64            `json:"open_tasks"`
	TasksByStatus  map[string]int64 `json:"tasks_by_status"`
	UpcomingEvents int64            `json:"upcoming_events"`
}

// Summary aggregates counts over exactly the scope the list endpoints use,
// so dashboard numbers always match what the caller could page through.
func (s DashboardService) Summary(ctx context.Context, principal domain.Principal) (DashboardSummary, error) {
	if principal.Anonymous {
		return DashboardSummary{}, domain.ForbiddenError{Msg: "authentication required"}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	projects, err := s.Projects.CountScoped(ctx, principal)
	if err != nil {
		return DashboardSummary{}, err
	}

	byStatus, err := s.Tasks.StatusCounts(ctx, principal, 0)
	if err != nil {
		return DashboardSummary{}, err
	}
	var open int64
	for status, n := range byStatus {
		if status != models.TaskStatusDone {
			open += n
		}
	}

	from := now()
	upcoming, err := s.Events.CountUpcoming(ctx, principal, from, from.Add(7*24*time.Hour))
	if err != nil {
		return DashboardSummary{}, err
	}

	return DashboardSummary{
		Projects:       projects,
		OpenTasks:      open,
		TasksByStatus:  byStatus,
		UpcomingEvents: upcoming,
	}, nil
}
