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

type CalendarHandler struct {
	Calendar services.CalendarService
}

func (h CalendarHandler) List(c *gin.Context) {
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
	from, err := timeQuery(c, "from")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	filters := repositories.EventFilters{
		OwnerID: ownerID,
		From:    from,
		To:      to,
		Search:  c.Query("search"),
	}
	page, err := h.Calendar.List(c.Request.Context(), middleware.Principal(c), filters, params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h CalendarHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	event, err := h.Calendar.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func (h CalendarHandler) Create(c *gin.Context) {
	var req eventRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	event, err := h.Calendar.Create(c.Request.Context(), middleware.Principal(c), models.Event{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  req.Visibility,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h CalendarHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req eventRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	event, err := h.Calendar.Update(c.Request.Context(), middleware.Principal(c), models.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Visibility:  req.Visibility,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h CalendarHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Calendar.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
