package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pms/internal/domain"
	"pms/internal/listquery"
)

// listParams reads the shared pagination and ordering query parameters.
// Range handling (negative page_no, oversized page_size) is left to the
// query engine; only non-numeric values are rejected here.
func listParams(c *gin.Context) (listquery.Params, error) {
	var p listquery.Params

	if raw := c.Query("page_no"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, domain.ValidationError{Field: "page_no", Msg: "must be an integer"}
		}
		p.PageNo = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, domain.ValidationError{Field: "page_size", Msg: "must be an integer"}
		}
		p.PageSize = n
	}
	p.SortBy = strings.TrimSpace(c.Query("sort_by"))
	p.SortOrder = strings.ToLower(strings.TrimSpace(c.Query("sort_order")))
	return p, nil
}

// timeQuery parses an optional RFC 3339 query parameter.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.ValidationError{Field: name, Msg: "must be RFC 3339", Err: err}
	}
	return &t, nil
}

// int64Query parses an optional integer query parameter, returning 0 when absent.
func int64Query(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ValidationError{Field: name, Msg: "must be an integer"}
	}
	return n, nil
}
