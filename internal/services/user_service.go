package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
	"pms/internal/repositories"
)

type UserService struct {
	Users repositories.UserRepository
	Log   *logrus.Logger
}

// List validates filter values against their enumerations before handing them
// to the engine; the engine itself only composes.
func (s UserService) List(ctx context.Context, principal domain.Principal, f repositories.UserFilters, p listquery.Params) (listquery.Page[models.User], error) {
	if principal.Anonymous {
		return listquery.Page[models.User]{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	if f.Role != "" {
		if _, err := domain.ParseRole(f.Role); err != nil {
			return listquery.Page[models.User]{}, err
		}
	}
	if f.Status != "" && f.Status != "active" && f.Status != "disabled" {
		return listquery.Page[models.User]{}, domain.ValidationError{Field: "status", Msg: "must be active or disabled"}
	}
	return s.Users.List(ctx, principal, f, p)
}

// Create provisions an account on behalf of an admin. Unlike self-service
// registration the role and status are caller-controlled.
func (s UserService) Create(ctx context.Context, principal domain.Principal, user models.User, password string) (models.User, error) {
	if !principal.IsAdmin() {
		return models.User{}, domain.ForbiddenError{Resource: "user"}
	}
	if strings.TrimSpace(user.Name) == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if strings.TrimSpace(user.Username) == "" {
		return models.User{}, domain.ValidationError{Field: "username", Msg: "required"}
	}
	if strings.TrimSpace(user.Email) == "" {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "required"}
	}
	if len(password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}
	if user.Role == "" {
		user.Role = domain.RoleDeveloper.String()
	}
	if _, err := domain.ParseRole(user.Role); err != nil {
		return models.User{}, err
	}
	if user.Status == "" {
		user.Status = "active"
	}
	if user.Status != "active" && user.Status != "disabled" {
		return models.User{}, domain.ValidationError{Field: "status", Msg: "must be active or disabled"}
	}

	taken, err := s.Users.ExistsByEmailOrUsername(ctx, user.Email, user.Username)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email or username already in use"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.QueryError{Op: "hash password", Err: err}
	}
	user.PasswordHash = string(hash)

	created, err := s.Users.Create(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	s.Log.WithFields(logrus.Fields{"user_id": created.ID, "by": principal.ID}).Info("user created")
	return created, nil
}

// Get applies the same scope rule listing uses: active users are visible,
// otherwise only self or an admin may look.
func (s UserService) Get(ctx context.Context, principal domain.Principal, id int64) (models.User, error) {
	if principal.Anonymous {
		return models.User{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.Status != "active" && user.ID != principal.ID && !principal.IsAdmin() {
		return models.User{}, domain.ForbiddenError{Resource: "user"}
	}
	return user, nil
}

func (s UserService) Update(ctx context.Context, principal domain.Principal, user models.User) (models.User, error) {
	if principal.Anonymous {
		return models.User{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	existing, err := s.Users.GetByID(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}

	if !principal.IsAdmin() {
		if existing.ID != principal.ID {
			return models.User{}, domain.ForbiddenError{Resource: "user"}
		}
		// non-admins cannot change their own role or status
		user.Role = existing.Role
		user.Status = existing.Status
	}

	// omitted fields keep their current value
	if user.Role == "" {
		user.Role = existing.Role
	}
	if user.Status == "" {
		user.Status = existing.Status
	}

	if user.Role != existing.Role {
		if _, err := domain.ParseRole(user.Role); err != nil {
			return models.User{}, err
		}
	}
	if user.Status != "active" && user.Status != "disabled" {
		return models.User{}, domain.ValidationError{Field: "status", Msg: "must be active or disabled"}
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = existing.Name
	}
	if strings.TrimSpace(user.Email) == "" {
		user.Email = existing.Email
	}

	updated, err := s.Users.Update(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	s.Log.WithFields(logrus.Fields{"user_id": updated.ID, "by": principal.ID}).Info("user updated")
	return updated, nil
}

func (s UserService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	if !principal.IsAdmin() {
		return domain.ForbiddenError{Resource: "user"}
	}
	if id == principal.ID {
		return domain.ValidationError{Msg: "cannot delete own account"}
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"user_id": id, "by": principal.ID}).Info("user deleted")
	return nil
}
