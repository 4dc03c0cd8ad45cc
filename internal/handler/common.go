// Package handler exposes the HTTP surface: authentication, the
// teacher-facing slot endpoints, student bookings, the subject catalog
// and the public browse routes.  Handlers translate between JSON and
// the scheduling service; every business decision lives below this
// layer.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/repository"
	"github.com/sambali01/lessonlink/internal/service"
)

// getUserID extracts the authenticated user's id from the echo
// context, where JWTAuth stored the raw JWT subject claim.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads ?page and ?pageSize, clamping both to sane values.
// It returns the page, the page size and the matching SQL offset.
func pageParams(c echo.Context) (page, size, offset int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.QueryParam("pageSize"))
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, (page - 1) * size
}

// pageEnvelope is the wire shape of every paginated response.
type pageEnvelope struct {
	Items      interface{} `json:"items"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func paged(items interface{}, total, page, size int) pageEnvelope {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return pageEnvelope{Items: items, TotalCount: total, Page: page, PageSize: size, TotalPages: pages}
}

// schedulingError maps scheduling failures onto the HTTP taxonomy:
// ownership violations 403, unresolved ids 404, business-rule
// violations 400, everything else an opaque 500.
func schedulingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrSlotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrSubjectNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "subject not found"})
	case errors.Is(err, repository.ErrSlotTaken):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot not bookable"})
	case errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrPastTime),
		errors.Is(err, service.ErrSlotOverlap),
		errors.Is(err, service.ErrOverlappingBooking),
		errors.Is(err, service.ErrSlotHasBooking),
		errors.Is(err, service.ErrCancelWindow),
		errors.Is(err, service.ErrPastLesson),
		errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
