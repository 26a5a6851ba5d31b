package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
	"pms/internal/repositories"
)

type TaskService struct {
	Tasks    repositories.TaskRepository
	Projects repositories.ProjectRepository
	Log      *logrus.Logger
}

func (s TaskService) List(ctx context.Context, principal domain.Principal, f repositories.TaskFilters, p listquery.Params) (listquery.Page[models.Task], error) {
	if f.Status != "" && !models.ValidTaskStatus(f.Status) {
		return listquery.Page[models.Task]{}, domain.ValidationError{Field: "status", Msg: "unknown task status"}
	}
	if f.Priority != "" && !models.ValidTaskPriority(f.Priority) {
		return listquery.Page[models.Task]{}, domain.ValidationError{Field: "priority", Msg: "unknown task priority"}
	}
	return s.Tasks.List(ctx, principal, f, p)
}

func (s TaskService) Get(ctx context.Context, principal domain.Principal, id int64) (models.Task, error) {
	task, err := s.Tasks.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.canViewTask(ctx, principal, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s TaskService) Create(ctx context.Context, principal domain.Principal, task models.Task) (models.Task, error) {
	if principal.Anonymous {
		return models.Task{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	if strings.TrimSpace(task.Title) == "" {
		return models.Task{}, domain.ValidationError{Field: "title", Msg: "required"}
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(task.Status) {
		return models.Task{}, domain.ValidationError{Field: "status", Msg: "unknown task status"}
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(task.Priority) {
		return models.Task{}, domain.ValidationError{Field: "priority", Msg: "unknown task priority"}
	}

	if err := s.requireProjectAccess(ctx, principal, task.ProjectID); err != nil {
		return models.Task{}, err
	}
	task.CreatedBy = principal.ID

	created, err := s.Tasks.Create(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	s.Log.WithFields(logrus.Fields{"task_id": created.ID, "project_id": created.ProjectID, "by": principal.ID}).Info("task created")
	return created, nil
}

func (s TaskService) Update(ctx context.Context, principal domain.Principal, task models.Task) (models.Task, error) {
	existing, err := s.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.requireProjectAccess(ctx, principal, existing.ProjectID); err != nil {
		return models.Task{}, err
	}

	if strings.TrimSpace(task.Title) == "" {
		task.Title = existing.Title
	}
	if task.Status == "" {
		task.Status = existing.Status
	}
	if !models.ValidTaskStatus(task.Status) {
		return models.Task{}, domain.ValidationError{Field: "status", Msg: "unknown task status"}
	}
	if task.Priority == "" {
		task.Priority = existing.Priority
	}
	if !models.ValidTaskPriority(task.Priority) {
		return models.Task{}, domain.ValidationError{Field: "priority", Msg: "unknown task priority"}
	}
	task.ProjectID = existing.ProjectID

	return s.Tasks.Update(ctx, task)
}

// Delete is restricted to the task creator, the project owner, or an admin.
func (s TaskService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	existing, err := s.Tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && existing.CreatedBy != principal.ID {
		project, err := s.Projects.GetByID(ctx, existing.ProjectID)
		if err != nil {
			return err
		}
		if project.OwnerID != principal.ID {
			return domain.ForbiddenError{Resource: "task"}
		}
	}
	if err := s.Tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"task_id": id, "by": principal.ID}).Info("task deleted")
	return nil
}

func (s TaskService) canViewTask(ctx context.Context, principal domain.Principal, task models.Task) error {
	if principal.IsAdmin() {
		return nil
	}
	if !principal.Anonymous {
		if task.CreatedBy == principal.ID {
			return nil
		}
		if task.AssigneeID != nil && *task.AssigneeID == principal.ID {
			return nil
		}
	}
	project, err := s.Projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if project.Visibility == models.VisibilityPublic {
		return nil
	}
	if principal.Anonymous {
		return domain.ForbiddenError{Resource: "task"}
	}
	if project.OwnerID == principal.ID {
		return nil
	}
	role, err := s.Projects.MemberRole(ctx, project.ID, principal.ID)
	if err != nil {
		return err
	}
	if role == "" {
		return domain.ForbiddenError{Resource: "task"}
	}
	return nil
}

// requireProjectAccess gates task writes on project membership (viewer
// memberships excluded) or ownership.
func (s TaskService) requireProjectAccess(ctx context.Context, principal domain.Principal, projectID int64) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.Anonymous {
		return domain.ForbiddenError{Resource: "task"}
	}
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID == principal.ID {
		return nil
	}
	role, err := s.Projects.MemberRole(ctx, project.ID, principal.ID)
	if err != nil {
		return err
	}
	if role == "" || role == string(domain.ProjectRoleViewer) {
		return domain.ForbiddenError{Resource: "task", Msg: "project membership required"}
	}
	return nil
}
