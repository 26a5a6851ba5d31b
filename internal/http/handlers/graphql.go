package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// GraphQL is a placeholder endpoint kept for frontend compatibility. It
// answers the introspection-style {health} query and rejects everything
// else until a real schema lands.
func GraphQL(c *gin.Context) {
	var req graphqlRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	query := strings.Join(strings.Fields(req.Query), "")
	if query == "{health}" || query == "query{health}" {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"health": "ok"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": nil,
		"errors": []gin.H{
			{"message": "schema not available; use the REST API"},
		},
	})
}
