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

type ProjectService struct {
	Projects repositories.ProjectRepository
	Log      *logrus.Logger
}

func (s ProjectService) List(ctx context.Context, principal domain.Principal, f repositories.ProjectFilters, p listquery.Params) (listquery.Page[models.Project], error) {
	if f.Visibility != "" && f.Visibility != models.VisibilityPublic && f.Visibility != models.VisibilityPrivate {
		return listquery.Page[models.Project]{}, domain.ValidationError{Field: "visibility", Msg: "must be public or private"}
	}
	return s.Projects.List(ctx, principal, f, p)
}

// Get enforces the single-item counterpart to the list scope: private
// projects open only for the owner, members and admins.
func (s ProjectService) Get(ctx context.Context, principal domain.Principal, id int64) (models.Project, error) {
	project, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if err := s.canView(ctx, principal, project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (s ProjectService) Create(ctx context.Context, principal domain.Principal, project models.Project) (models.Project, error) {
	if principal.Anonymous {
		return models.Project{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	if !principal.Role.AtLeast(domain.RoleDeveloper) {
		return models.Project{}, domain.ForbiddenError{Resource: "project", Msg: "developer role required to create projects"}
	}
	if strings.TrimSpace(project.Name) == "" {
		return models.Project{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if project.Visibility == "" {
		project.Visibility = models.VisibilityPrivate
	}
	if project.Visibility != models.VisibilityPublic && project.Visibility != models.VisibilityPrivate {
		return models.Project{}, domain.ValidationError{Field: "visibility", Msg: "must be public or private"}
	}
	if project.Status == "" {
		project.Status = "active"
	}
	project.OwnerID = principal.ID

	created, err := s.Projects.Create(ctx, project)
	if err != nil {
		return models.Project{}, err
	}
	s.Log.WithFields(logrus.Fields{"project_id": created.ID, "owner_id": principal.ID}).Info("project created")
	return created, nil
}

func (s ProjectService) Update(ctx context.Context, principal domain.Principal, project models.Project) (models.Project, error) {
	existing, err := s.Projects.GetByID(ctx, project.ID)
	if err != nil {
		return models.Project{}, err
	}
	if err := s.canManage(ctx, principal, existing); err != nil {
		return models.Project{}, err
	}

	if strings.TrimSpace(project.Name) == "" {
		project.Name = existing.Name
	}
	if project.Visibility == "" {
		project.Visibility = existing.Visibility
	}
	if project.Visibility != models.VisibilityPublic && project.Visibility != models.VisibilityPrivate {
		return models.Project{}, domain.ValidationError{Field: "visibility", Msg: "must be public or private"}
	}
	if project.Status == "" {
		project.Status = existing.Status
	}

	return s.Projects.Update(ctx, project)
}

func (s ProjectService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	existing, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && existing.OwnerID != principal.ID {
		return domain.ForbiddenError{Resource: "project"}
	}
	if err := s.Projects.Delete(ctx, id); err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"project_id": id, "by": principal.ID}).Info("project deleted")
	return nil
}

func (s ProjectService) Members(ctx context.Context, principal domain.Principal, projectID int64) ([]models.ProjectMember, error) {
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, principal, project); err != nil {
		return nil, err
	}
	return s.Projects.ListMembers(ctx, projectID)
}

func (s ProjectService) AddMember(ctx context.Context, principal domain.Principal, member models.ProjectMember) error {
	project, err := s.Projects.GetByID(ctx, member.ProjectID)
	if err != nil {
		return err
	}
	if err := s.canManage(ctx, principal, project); err != nil {
		return err
	}
	if member.UserID == project.OwnerID {
		return domain.ConflictError{Resource: "project member", Msg: "owner is implicitly a member"}
	}
	if member.Role == "" {
		member.Role = string(domain.ProjectRoleMember)
	}
	if _, err := domain.ParseProjectRole(member.Role); err != nil {
		return err
	}
	if err := s.Projects.AddMember(ctx, member); err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"project_id": member.ProjectID, "user_id": member.UserID, "role": member.Role}).Info("member added")
	return nil
}

func (s ProjectService) RemoveMember(ctx context.Context, principal domain.Principal, projectID, userID int64) error {
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	// members may leave on their own; everything else needs manage rights
	if userID != principal.ID {
		if err := s.canManage(ctx, principal, project); err != nil {
			return err
		}
	}
	return s.Projects.RemoveMember(ctx, projectID, userID)
}

func (s ProjectService) canView(ctx context.Context, principal domain.Principal, project models.Project) error {
	if project.Visibility == models.VisibilityPublic || principal.IsAdmin() {
		return nil
	}
	if principal.Anonymous {
		return domain.ForbiddenError{Resource: "project"}
	}
	if project.OwnerID == principal.ID {
		return nil
	}
	role, err := s.Projects.MemberRole(ctx, project.ID, principal.ID)
	if err != nil {
		return err
	}
	if role == "" {
		return domain.ForbiddenError{Resource: "project"}
	}
	return nil
}

// canManage allows admins, project owners, and members holding the project
// owner role. Global managers do not automatically manage private projects
// they are not part of.
func (s ProjectService) canManage(ctx context.Context, principal domain.Principal, project models.Project) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.Anonymous {
		return domain.ForbiddenError{Resource: "project"}
	}
	if project.OwnerID == principal.ID {
		return nil
	}
	role, err := s.Projects.MemberRole(ctx, project.ID, principal.ID)
	if err != nil {
		return err
	}
	if role != string(domain.ProjectRoleOwner) {
		return domain.ForbiddenError{Resource: "project"}
	}
	return nil
}
