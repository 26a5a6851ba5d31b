package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"pms/internal/domain"
)

func testContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestListParamsDefaults(t *testing.T) {
	c := testContext(t, "/api/tasks")

	p, err := listParams(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PageNo != 0 || p.PageSize != 0 || p.SortBy != "" || p.SortOrder != "" {
		t.Fatalf("expected zero params, got %+v", p)
	}
}

func TestListParamsParsesValues(t *testing.T) {
	c := testContext(t, "/api/tasks?page_no=2&page_size=50&sort_by=title&sort_order=ASC")

	p, err := listParams(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PageNo != 2 || p.PageSize != 50 {
		t.Fatalf("unexpected paging: %+v", p)
	}
	if p.SortBy != "title" || p.SortOrder != "asc" {
		t.Fatalf("unexpected ordering: %+v", p)
	}
}

func TestListParamsRejectsNonNumericPage(t *testing.T) {
	c := testContext(t, "/api/tasks?page_no=abc")

	if _, err := listParams(c); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c = testContext(t, "/api/tasks?page_size=ten")
	if _, err := listParams(c); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTimeQueryParsesRFC3339(t *testing.T) {
	c := testContext(t, "/api/events?from=2026-08-01T00:00:00Z")

	got, err := timeQuery(c, "from")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Year() != 2026 || got.Month() != 8 {
		t.Fatalf("unexpected time: %v", got)
	}

	c = testContext(t, "/api/events?from=01-08-2026")
	if _, err := timeQuery(c, "from"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
