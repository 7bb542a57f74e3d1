package http

import (
	"context"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/mkjeong/leadnet/internal/http/middleware"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/repository"
	"github.com/mkjeong/leadnet/internal/service/records"
	"github.com/mkjeong/leadnet/internal/service/users"
)

func createRecordHandler(recordsSvc *records.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		var in model.RecordInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		rec, err := recordsSvc.Create(c.Request().Context(), p.ID, in)
		if err != nil {
			return writeError(c, err)
		}
		if rec == nil {
			// duplicate phone: skipped, not an error
			return c.JSON(http.StatusOK, map[string]any{"created": false})
		}
		return c.JSON(http.StatusCreated, map[string]any{"created": true, "record": rec})
	}
}

func updateRecordHandler(recordsSvc *records.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := middleware.PrincipalFromCtx(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		var patch model.RecordPatch
		if err := c.Bind(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		rec, err := recordsSvc.Update(c.Request().Context(), c.Param("id"), patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	}
}

func deleteRecordHandler(recordsSvc *records.Service, usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		isAdmin, err := usersSvc.IsAdmin(c.Request().Context(), p.ID)
		if err != nil {
			return writeError(c, err)
		}
		if !isAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access only"})
		}
		ok, err = recordsSvc.Delete(c.Request().Context(), c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "record not found"})
		}
		return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}

func findByPhoneHandler(recordsSvc *records.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := middleware.PrincipalFromCtx(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		rec, err := recordsSvc.FindByPhone(c.Request().Context(), c.Param("phonenumber"))
		if err != nil {
			return writeError(c, err)
		}
		if rec == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "record not found"})
		}
		return c.JSON(http.StatusOK, rec)
	}
}

// listHandler wraps the four scope variants behind one param-parsing shell.
func listHandler(list func(ctx context.Context, actorID string, limit, offset int, includeSelf bool, typ model.RecordType) (model.Page, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		typ, ok := typeParam(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid type"})
		}
		limit, offset := pageParams(c)
		page, err := list(c.Request().Context(), p.ID, limit, offset, includeSelfParam(c), typ)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

func listAllHandler(recordsSvc *records.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := middleware.PrincipalFromCtx(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		limit, offset := pageParams(c)
		page, err := recordsSvc.ListAll(c.Request().Context(), limit, offset)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

func searchNetworkHandler(recordsSvc *records.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		typ, ok := typeParam(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid type"})
		}
		limit, offset := pageParams(c)
		filters := repository.SearchFilters{
			Name:        strings.TrimSpace(c.QueryParam("name")),
			Phone:       strings.TrimSpace(c.QueryParam("phone")),
			IncomePath:  strings.TrimSpace(c.QueryParam("incomepath")),
			CreatorName: strings.TrimSpace(c.QueryParam("creatorname")),
			Manager:     strings.TrimSpace(c.QueryParam("manager")),
		}
		page, err := recordsSvc.SearchUnderNetwork(c.Request().Context(), p.ID, limit, offset, filters, typ)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, page)
	}
}
