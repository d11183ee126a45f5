package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
)

var errBadID = apperr.Validation("invalid id")

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pagination reads page/limit query parameters, clamping both into their
// accepted ranges.
func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return id, nil
}

// listResponse wraps paginated collections.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
