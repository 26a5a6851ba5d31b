package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms/internal/http/middleware"
	"pms/internal/services"
)

type ReportHandler struct {
	Reports services.ReportService
}

// ProjectPDF returns the project status report (inline).
func (h ReportHandler) ProjectPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.Reports.ProjectReport(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
