package listquery

import (
	"encoding/json"

	"pms/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Params are the caller-facing paging knobs. PageNo is zero-based everywhere.
type Params struct {
	PageNo    int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Page is one bounded slice of a filtered, scoped result set. HasNext and
// HasPrev are derived from position, never stored, so they cannot drift from
// TotalPages/PageNo.
type Page[T any] struct {
	Items      []T   `json:"items"`
	PageNo     int   `json:"page_no"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func (p Page[T]) HasNext() bool {
	return p.PageNo < p.TotalPages-1
}

func (p Page[T]) HasPrev() bool {
	return p.TotalPages > 0 && p.PageNo > 0
}

func (p Page[T]) MarshalJSON() ([]byte, error) {
	type alias Page[T]
	return json.Marshal(struct {
		alias
		HasNext bool `json:"has_next"`
		HasPrev bool `json:"has_prev"`
	}{
		alias:   alias(p),
		HasNext: p.HasNext(),
		HasPrev: p.HasPrev(),
	})
}

// clampPageSize sanitizes page_size: zero means default, oversized values are
// capped. A negative size is malformed rather than clampable.
func clampPageSize(size int) (int, error) {
	switch {
	case size < 0:
		return 0, domain.ValidationError{Field: "page_size", Msg: "must not be negative"}
	case size == 0:
		return DefaultPageSize, nil
	case size > MaxPageSize:
		return MaxPageSize, nil
	}
	return size, nil
}

func totalPagesFor(totalItems int64, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	return int((totalItems + int64(pageSize) - 1) / int64(pageSize))
}
