package listquery

import (
	"encoding/json"
	"strings"
	"testing"

	"pms/internal/domain"
)

func TestClampPageSize(t *testing.T) {
	if _, err := clampPageSize(-1); !domain.IsValidation(err) {
		t.Fatalf("negative page_size should be a validation error, got %v", err)
	}
	size, err := clampPageSize(0)
	if err != nil || size != DefaultPageSize {
		t.Fatalf("zero should fall back to default, got %d err=%v", size, err)
	}
	size, _ = clampPageSize(500)
	if size != MaxPageSize {
		t.Fatalf("oversized page_size should cap at %d, got %d", MaxPageSize, size)
	}
	size, _ = clampPageSize(7)
	if size != 7 {
		t.Fatalf("in-range page_size should pass through, got %d", size)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{25, 10, 3},
	}
	for _, tc := range cases {
		if got := totalPagesFor(tc.total, tc.size); got != tc.want {
			t.Fatalf("totalPagesFor(%d,%d)=%d want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestPageNavigationDerived(t *testing.T) {
	p := Page[int]{PageNo: 0, PageSize: 10, TotalItems: 25, TotalPages: 3}
	if !p.HasNext() || p.HasPrev() {
		t.Fatalf("first page of three: has_next=%v has_prev=%v", p.HasNext(), p.HasPrev())
	}
	p.PageNo = 2
	if p.HasNext() || !p.HasPrev() {
		t.Fatalf("last page of three: has_next=%v has_prev=%v", p.HasNext(), p.HasPrev())
	}

	empty := Page[int]{PageNo: 0, PageSize: 20}
	if empty.HasNext() || empty.HasPrev() {
		t.Fatalf("empty result must have no navigation")
	}
}

func TestPageJSONIncludesDerivedFields(t *testing.T) {
	p := Page[int]{Items: []int{1, 2}, PageNo: 1, PageSize: 2, TotalItems: 6, TotalPages: 3}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, want := range []string{`"has_next":true`, `"has_prev":true`, `"total_items":6`, `"page_no":1`} {
		if !strings.Contains(s, want) {
			t.Fatalf("payload missing %s: %s", want, s)
		}
	}
}
