package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms/internal/domain/models"
	"pms/internal/http/middleware"
	"pms/internal/repositories"
	"pms/internal/services"
)

type ProjectHandler struct {
	Projects services.ProjectService
}

func (h ProjectHandler) List(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	ownerID, err := int64Query(c, "owner_id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	filters := repositories.ProjectFilters{
		Status:     c.Query("status"),
		Visibility: c.Query("visibility"),
		OwnerID:    ownerID,
		Search:     c.Query("search"),
	}
	page, err := h.Projects.List(c.Request.Context(), middleware.Principal(c), filters, params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h ProjectHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	project, err := h.Projects.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	Status      string `json:"status"`
}

func (h ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	project, err := h.Projects.Create(c.Request.Context(), middleware.Principal(c), models.Project{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		Status:      req.Status,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h ProjectHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req projectRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	project, err := h.Projects.Update(c.Request.Context(), middleware.Principal(c), models.Project{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		Status:      req.Status,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h ProjectHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Projects.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h ProjectHandler) Members(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	members, err := h.Projects.Members(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

type addMemberRequest struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func (h ProjectHandler) AddMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req addMemberRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	err := h.Projects.AddMember(c.Request.Context(), middleware.Principal(c), models.ProjectMember{
		ProjectID: id,
		UserID:    req.UserID,
		Role:      req.Role,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project_id": id, "user_id": req.UserID})
}

func (h ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.Projects.RemoveMember(c.Request.Context(), middleware.Principal(c), id, userID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "removed": userID})
}
