package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pms/internal/domain/models"
	"pms/internal/http/middleware"
	"pms/internal/repositories"
	"pms/internal/services"
)

type TaskHandler struct {
	Tasks services.TaskService
}

func (h TaskHandler) List(c *gin.Context) {
	projectID, err := int64Query(c, "project_id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.list(c, projectID)
}

// ListForProject serves the project-scoped listing; the path segment wins
// over any project_id query parameter.
func (h TaskHandler) ListForProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	h.list(c, projectID)
}

func (h TaskHandler) list(c *gin.Context, projectID int64) {
	params, err := listParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	assigneeID, err := int64Query(c, "assignee_id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	dueFrom, err := timeQuery(c, "due_from")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	dueTo, err := timeQuery(c, "due_to")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	filters := repositories.TaskFilters{
		ProjectID:  projectID,
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssigneeID: assigneeID,
		Search:     c.Query("search"),
		DueFrom:    dueFrom,
		DueTo:      dueTo,
	}
	page, err := h.Tasks.List(c.Request.Context(), middleware.Principal(c), filters, params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h TaskHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	task, err := h.Tasks.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type taskRequest struct {
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *int64     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

func (h TaskHandler) Create(c *gin.Context) {
	var req taskRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	h.create(c, req, req.ProjectID)
}

func (h TaskHandler) CreateForProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req taskRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	h.create(c, req, projectID)
}

func (h TaskHandler) create(c *gin.Context, req taskRequest, projectID int64) {
	task, err := h.Tasks.Create(c.Request.Context(), middleware.Principal(c), models.Task{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h TaskHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req taskRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	task, err := h.Tasks.Update(c.Request.Context(), middleware.Principal(c), models.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h TaskHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
