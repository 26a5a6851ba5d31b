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

type CalendarService struct {
	Events repositories.EventRepository
	Log    *logrus.Logger
}

func (s CalendarService) List(ctx context.Context, principal domain.Principal, f repositories.EventFilters, p listquery.Params) (listquery.Page[models.Event], error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return listquery.Page[models.Event]{}, domain.ValidationError{Field: "to", Msg: "must not precede from"}
	}
	return s.Events.List(ctx, principal, f, p)
}

func (s CalendarService) Get(ctx context.Context, principal domain.Principal, id int64) (models.Event, error) {
	event, err := s.Events.GetByID(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	if event.Visibility != models.VisibilityPublic && !principal.IsAdmin() && event.OwnerID != principal.ID {
		return models.Event{}, domain.ForbiddenError{Resource: "event"}
	}
	return event, nil
}

func (s CalendarService) Create(ctx context.Context, principal domain.Principal, event models.Event) (models.Event, error) {
	if principal.Anonymous {
		return models.Event{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	if strings.TrimSpace(event.Title) == "" {
		return models.Event{}, domain.ValidationError{Field: "title", Msg: "required"}
	}
	if event.EndsAt.Before(event.StartsAt) {
		return models.Event{}, domain.ValidationError{Field: "ends_at", Msg: "must not precede starts_at"}
	}
	if event.Visibility == "" {
		event.Visibility = models.VisibilityPrivate
	}
	if event.Visibility != models.VisibilityPublic && event.Visibility != models.VisibilityPrivate {
		return models.Event{}, domain.ValidationError{Field: "visibility", Msg: "must be public or private"}
	}
	event.OwnerID = principal.ID

	created, err := s.Events.Create(ctx, event)
	if err != nil {
		return models.Event{}, err
	}
	s.Log.WithFields(logrus.Fields{"event_id": created.ID, "owner_id": principal.ID}).Info("event created")
	return created, nil
}

func (s CalendarService) Update(ctx context.Context, principal domain.Principal, event models.Event) (models.Event, error) {
	existing, err := s.Events.GetByID(ctx, event.ID)
	if err != nil {
		return models.Event{}, err
	}
	if !principal.IsAdmin() && existing.OwnerID != principal.ID {
		return models.Event{}, domain.ForbiddenError{Resource: "event"}
	}

	if strings.TrimSpace(event.Title) == "" {
		event.Title = existing.Title
	}
	if event.Visibility == "" {
		event.Visibility = existing.Visibility
	}
	if event.StartsAt.IsZero() {
		event.StartsAt = existing.StartsAt
	}
	if event.EndsAt.IsZero() {
		event.EndsAt = existing.EndsAt
	}
	if event.EndsAt.Before(event.StartsAt) {
		return models.Event{}, domain.ValidationError{Field: "ends_at", Msg: "must not precede starts_at"}
	}

	return s.Events.Update(ctx, event)
}

func (s CalendarService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	existing, err := s.Events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && existing.OwnerID != principal.ID {
		return domain.ForbiddenError{Resource: "event"}
	}
	return s.Events.Delete(ctx, id)
}
