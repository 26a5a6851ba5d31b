package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms/internal/http/middleware"
	"pms/internal/services"
)

type DashboardHandler struct {
	Dashboard services.DashboardService
}

func (h DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.Dashboard.Summary(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
