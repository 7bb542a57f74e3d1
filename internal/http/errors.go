package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/mkjeong/leadnet/internal/apperr"
	"github.com/mkjeong/leadnet/internal/model"
)

// writeError maps the failure taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a 500 with the detail kept out of the response body.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Errorf("%s %s failed: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// pageParams parses limit/offset query params with the listing defaults.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 30
	offset = 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// includeSelfParam defaults to true unless include_self is explicitly false.
func includeSelfParam(c echo.Context) bool {
	if v := strings.TrimSpace(c.QueryParam("include_self")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return true
}

// typeParam parses the optional type filter; unknown categories are rejected.
func typeParam(c echo.Context) (model.RecordType, bool) {
	raw := strings.TrimSpace(c.QueryParam("type"))
	if raw == "" {
		return "", true
	}
	return model.ParseRecordType(raw)
}
