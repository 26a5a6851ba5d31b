package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
	"pms/internal/openai"
	"pms/internal/repositories"
)

// Completer is the assistant backend; satisfied by *openai.Client.
type Completer interface {
	Complete(ctx context.Context, model string, messages []openai.Message) (string, error)
}

type ChatService struct {
	Chats        repositories.ChatRepository
	Completer    Completer
	DefaultModel string
	Log          *logrus.Logger
}

func (s ChatService) ListSessions(ctx context.Context, principal domain.Principal, f repositories.ChatSessionFilters, p listquery.Params) (listquery.Page[models.ChatSession], error) {
	if principal.Anonymous {
		return listquery.Page[models.ChatSession]{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	return s.Chats.ListSessions(ctx, principal, f, p)
}

func (s ChatService) CreateSession(ctx context.Context, principal domain.Principal, title, model string) (models.ChatSession, error) {
	if principal.Anonymous {
		return models.ChatSession{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	if strings.TrimSpace(title) == "" {
		title = "New chat"
	}
	if model == "" {
		model = s.DefaultModel
	}
	return s.Chats.CreateSession(ctx, models.ChatSession{
		OwnerID: principal.ID,
		Title:   title,
		Model:   model,
	})
}

func (s ChatService) GetSession(ctx context.Context, principal domain.Principal, id int64) (models.ChatSession, error) {
	session, err := s.Chats.GetSession(ctx, id)
	if err != nil {
		return models.ChatSession{}, err
	}
	if !principal.IsAdmin() && session.OwnerID != principal.ID {
		return models.ChatSession{}, domain.ForbiddenError{Resource: "chat session"}
	}
	return session, nil
}

func (s ChatService) DeleteSession(ctx context.Context, principal domain.Principal, id int64) error {
	if _, err := s.GetSession(ctx, principal, id); err != nil {
		return err
	}
	return s.Chats.DeleteSession(ctx, id)
}

func (s ChatService) Messages(ctx context.Context, principal domain.Principal, sessionID int64) ([]models.ChatMessage, error) {
	if _, err := s.GetSession(ctx, principal, sessionID); err != nil {
		return nil, err
	}
	return s.Chats.ListMessages(ctx, sessionID)
}

// SendMessage appends the user message, asks the assistant backend for a
// reply over the full session history, and stores the reply. The user message
// is kept even when the completion fails, so the caller can retry.
func (s ChatService) SendMessage(ctx context.Context, principal domain.Principal, sessionID int64, content string) (models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return models.ChatMessage{}, domain.ValidationError{Field: "content", Msg: "required"}
	}
	session, err := s.GetSession(ctx, principal, sessionID)
	if err != nil {
		return models.ChatMessage{}, err
	}

	history, err := s.Chats.ListMessages(ctx, sessionID)
	if err != nil {
		return models.ChatMessage{}, err
	}

	if _, err := s.Chats.AppendMessage(ctx, models.ChatMessage{
		SessionID: sessionID,
		Role:      models.ChatRoleUser,
		Content:   content,
	}); err != nil {
		return models.ChatMessage{}, err
	}

	prompt := make([]openai.Message, 0, len(history)+2)
	prompt = append(prompt, openai.Message{
		Role:    models.ChatRoleSystem,
		Content: "You are a project management assistant. Answer briefly.",
	})
	for _, m := range history {
		prompt = append(prompt, openai.Message{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, openai.Message{Role: models.ChatRoleUser, Content: content})

	model := session.Model
	if model == "" {
		model = s.DefaultModel
	}

	reply, err := s.Completer.Complete(ctx, model, prompt)
	if err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{"session_id": sessionID}).Warn("completion failed")
		return models.ChatMessage{}, domain.QueryError{Op: "chat completion", Err: err}
	}

	stored, err := s.Chats.AppendMessage(ctx, models.ChatMessage{
		SessionID: sessionID,
		Role:      models.ChatRoleAssistant,
		Content:   reply,
	})
	if err != nil {
		return models.ChatMessage{}, err
	}
	_ = s.Chats.TouchSession(ctx, sessionID)
	return stored, nil
}
