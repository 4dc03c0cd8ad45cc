package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, rawQuery string) (page, size, offset int) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return pageParams(c)
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		name                           string
		query                          string
		wantPage, wantSize, wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&pageSize=10", 3, 10, 20},
		{"zero page clamps", "page=0&pageSize=10", 1, 10, 0},
		{"negative clamps", "page=-2&pageSize=-5", 1, 20, 0},
		{"oversized page size clamps", "pageSize=10000", 1, 100, 0},
		{"garbage falls back", "page=abc&pageSize=xyz", 1, 20, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, size, offset := paramsFor(t, tc.query)
			if page != tc.wantPage || size != tc.wantSize || offset != tc.wantOffset {
				t.Fatalf("got (%d,%d,%d), want (%d,%d,%d)",
					page, size, offset, tc.wantPage, tc.wantSize, tc.wantOffset)
			}
		})
	}
}

func TestPagedEnvelope(t *testing.T) {
	env := paged([]int{1, 2, 3}, 45, 2, 20)
	if env.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", env.TotalPages)
	}
	if env.TotalCount != 45 || env.Page != 2 || env.PageSize != 20 {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	empty := paged([]int{}, 0, 1, 20)
	if empty.TotalPages != 0 {
		t.Fatalf("empty TotalPages = %d, want 0", empty.TotalPages)
	}

	exact := paged(nil, 40, 1, 20)
	if exact.TotalPages != 2 {
		t.Fatalf("exact TotalPages = %d, want 2", exact.TotalPages)
	}
}
