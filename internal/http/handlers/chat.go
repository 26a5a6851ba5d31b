package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms/internal/http/middleware"
	"pms/internal/repositories"
	"pms/internal/services"
)

type ChatHandler struct {
	Chat services.ChatService
}

func (h ChatHandler) ListSessions(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	filters := repositories.ChatSessionFilters{
		Search: c.Query("search"),
	}
	page, err := h.Chat.ListSessions(c.Request.Context(), middleware.Principal(c), filters, params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type createSessionRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

func (h ChatHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	session, err := h.Chat.CreateSession(c.Request.Context(), middleware.Principal(c), req.Title, req.Model)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h ChatHandler) GetSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	session, err := h.Chat.GetSession(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h ChatHandler) DeleteSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Chat.DeleteSession(c.Request.Context(), middleware.Principal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h ChatHandler) Messages(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	messages, err := h.Chat.Messages(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h ChatHandler) SendMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	reply, err := h.Chat.SendMessage(c.Request.Context(), middleware.Principal(c), id, req.Content)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
