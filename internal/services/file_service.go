package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
	"pms/internal/repositories"
)

// FileService stores upload payloads on disk under generated names and keeps
// metadata rows for scoped listing.
type FileService struct {
	Files     repositories.FileRepository
	Projects  repositories.ProjectRepository
	UploadDir string
	MaxBytes  int64
	Log       *logrus.Logger
}

func (s FileService) List(ctx context.Context, principal domain.Principal, f repositories.FileFilters, p listquery.Params) (listquery.Page[models.StoredFile], error) {
	if principal.Anonymous {
		return listquery.Page[models.StoredFile]{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	return s.Files.List(ctx, principal, f, p)
}

func (s FileService) Save(ctx context.Context, principal domain.Principal, name, contentType string, projectID int64, src io.Reader) (models.StoredFile, error) {
	if principal.Anonymous {
		return models.StoredFile{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return models.StoredFile{}, domain.ValidationError{Field: "file", Msg: "missing file name"}
	}

	meta := models.StoredFile{
		OwnerID:     principal.ID,
		Name:        name,
		ContentType: contentType,
	}
	if projectID > 0 {
		project, err := s.Projects.GetByID(ctx, projectID)
		if err != nil {
			return models.StoredFile{}, err
		}
		if err := s.requireProjectMember(ctx, principal, project); err != nil {
			return models.StoredFile{}, err
		}
		meta.ProjectID = &projectID
	}

	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		return models.StoredFile{}, domain.QueryError{Op: "prepare upload dir", Err: err}
	}

	meta.StoredName = uuid.NewString() + strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.UploadDir, meta.StoredName)

	dst, err := os.Create(path)
	if err != nil {
		return models.StoredFile{}, domain.QueryError{Op: "create upload", Err: err}
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return models.StoredFile{}, domain.QueryError{Op: "write upload", Err: err}
	}
	if written > limit {
		_ = os.Remove(path)
		return models.StoredFile{}, domain.ValidationError{Field: "file", Msg: fmt.Sprintf("exceeds %d bytes", limit)}
	}
	meta.SizeBytes = written

	stored, err := s.Files.Create(ctx, meta)
	if err != nil {
		_ = os.Remove(path)
		return models.StoredFile{}, err
	}

	s.Log.WithFields(logrus.Fields{"file_id": stored.ID, "owner_id": principal.ID, "bytes": written}).Info("file uploaded")
	return stored, nil
}

// Open returns the metadata and payload path after a scope check.
func (s FileService) Open(ctx context.Context, principal domain.Principal, id int64) (models.StoredFile, string, error) {
	meta, err := s.Files.GetByID(ctx, id)
	if err != nil {
		return models.StoredFile{}, "", err
	}
	if err := s.canAccess(ctx, principal, meta); err != nil {
		return models.StoredFile{}, "", err
	}
	return meta, filepath.Join(s.UploadDir, meta.StoredName), nil
}

func (s FileService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	meta, err := s.Files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && meta.OwnerID != principal.ID {
		return domain.ForbiddenError{Resource: "file"}
	}
	if err := s.Files.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.UploadDir, meta.StoredName)); err != nil && !os.IsNotExist(err) {
		s.Log.WithError(err).WithFields(logrus.Fields{"file_id": id}).Warn("payload removal failed")
	}
	return nil
}

func (s FileService) canAccess(ctx context.Context, principal domain.Principal, meta models.StoredFile) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.Anonymous {
		return domain.ForbiddenError{Resource: "file"}
	}
	if meta.OwnerID == principal.ID {
		return nil
	}
	if meta.ProjectID == nil {
		return domain.ForbiddenError{Resource: "file"}
	}
	project, err := s.Projects.GetByID(ctx, *meta.ProjectID)
	if err != nil {
		return err
	}
	return s.requireProjectMember(ctx, principal, project)
}

func (s FileService) requireProjectMember(ctx context.Context, principal domain.Principal, project models.Project) error {
	if principal.IsAdmin() || project.OwnerID == principal.ID {
		return nil
	}
	role, err := s.Projects.MemberRole(ctx, project.ID, principal.ID)
	if err != nil {
		return err
	}
	if role == "" {
		return domain.ForbiddenError{Resource: "file", Msg: "project membership required"}
	}
	return nil
}
