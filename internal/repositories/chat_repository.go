package repositories

import (
	"context"
	"database/sql"
	"errors"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/listquery"
)

type ChatRepository struct {
	DB *sql.DB
}

type ChatSessionFilters struct {
	Search string
}

var chatSessionColumns = []string{
	"id", "owner_id", "title", "model", "created_at", "updated_at",
}

// Chat sessions are strictly private: owner or admin, nothing public.
func chatScope() listquery.ScopeSpec {
	return listquery.ScopeSpec{
		Owner: func(id int64) listquery.Cond {
			return listquery.Eq("owner_id", id)
		},
	}
}

func scanChatSession(rows *sql.Rows) (models.ChatSession, error) {
	var s models.ChatSession
	err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Model, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r ChatRepository) ListSessions(ctx context.Context, principal domain.Principal, f ChatSessionFilters, p listquery.Params) (listquery.Page[models.ChatSession], error) {
	var filters []listquery.Cond
	if f.Search != "" {
		filters = append(filters, listquery.Contains("title", f.Search))
	}

	q := listquery.Query{
		Table:   "chat_sessions",
		Columns: chatSessionColumns,
		Scope:   listquery.ComputeScope(principal, chatScope()),
		Filters: filters,
		Sortable: map[string]string{
			"created_at": "created_at",
			"updated_at": "updated_at",
			"title":      "title",
		},
		DefaultSort: "updated_at",
	}
	return listquery.List(ctx, r.DB, q, p, scanChatSession)
}

func (r ChatRepository) GetSession(ctx context.Context, id int64) (models.ChatSession, error) {
	var s models.ChatSession
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, owner_id, title, model, created_at, updated_at
		FROM chat_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.OwnerID, &s.Title, &s.Model, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, domain.NotFoundError{Resource: "chat session"}
	}
	if err != nil {
		return s, domain.QueryError{Op: "chat_sessions get", Err: err}
	}
	return s, nil
}

func (r ChatRepository) CreateSession(ctx context.Context, s models.ChatSession) (models.ChatSession, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO chat_sessions (owner_id, title, model, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		s.OwnerID, s.Title, s.Model).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, domain.QueryError{Op: "chat_sessions insert", Err: err}
	}
	return s, nil
}

func (r ChatRepository) TouchSession(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return domain.QueryError{Op: "chat_sessions touch", Err: err}
	}
	return nil
}

func (r ChatRepository) DeleteSession(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return domain.QueryError{Op: "chat_sessions delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "chat session"}
	}
	return nil
}

// ListMessages returns the full ordered history of one session. Histories are
// bounded by the completion context window, so they are not paginated.
func (r ChatRepository) ListMessages(ctx context.Context, sessionID int64) ([]models.ChatMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, domain.QueryError{Op: "chat_messages list", Err: err}
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, domain.QueryError{Op: "chat_messages scan", Err: err}
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.QueryError{Op: "chat_messages list", Err: err}
	}
	return messages, nil
}

func (r ChatRepository) AppendMessage(ctx context.Context, m models.ChatMessage) (models.ChatMessage, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO chat_messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`,
		m.SessionID, m.Role, m.Content).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return m, domain.QueryError{Op: "chat_messages insert", Err: err}
	}
	return m, nil
}
