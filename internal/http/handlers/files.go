package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pms/internal/http/middleware"
	"pms/internal/repositories"
	"pms/internal/services"
)

type FileHandler struct {
	Files services.FileService
}

func (h FileHandler) List(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	projectID, err := int64Query(c, "project_id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	filters := repositories.FileFilters{
		ProjectID: projectID,
		Search:    c.Query("search"),
	}
	page, err := h.Files.List(c.Request.Context(), middleware.Principal(c), filters, params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Upload accepts a multipart form with a "file" part and an optional
// project_id field attaching the upload to a project.
func (h FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" required")
		return
	}

	var projectID int64
	if raw := strings.TrimSpace(c.PostForm("project_id")); raw != "" {
		projectID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid project_id")
			return
		}
	}

	src, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "unreadable upload")
		return
	}
	defer src.Close()

	meta, err := h.Files.Save(c.Request.Context(), middleware.Principal(c),
		header.Filename, header.Header.Get("Content-Type"), projectID, src)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meta)
}

func (h FileHandler) Download(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	meta, path, err := h.Files.Open(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if meta.ContentType != "" {
		c.Header("Content-Type", meta.ContentType)
	}
	c.FileAttachment(path, meta.Name)
}

func (h FileHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Files.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
