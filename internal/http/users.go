package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/mkjeong/leadnet/internal/http/middleware"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/service/users"
)

func meHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		u, err := usersSvc.GetUserInfo(c.Request().Context(), p.ID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, u)
	}
}

func networkUsersHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		limit, offset := pageParams(c)
		page, err := usersSvc.UsersUnderNetwork(c.Request().Context(), p.ID, limit, offset)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

func networkUsernamesHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		names, err := usersSvc.UsernamesUnderNetwork(c.Request().Context(), p.ID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"usernames": names})
	}
}

func updateUserHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		var patch model.UserPatch
		if err := c.Bind(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		u, err := usersSvc.UpdateUser(c.Request().Context(), p.ID, c.Param("id"), patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, u)
	}
}

func deleteUserHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		if err := usersSvc.DeleteUser(c.Request().Context(), p.ID, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}

type changePasswordReq struct {
	NewPassword string `json:"new_password"`
}

func changePasswordHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		var req changePasswordReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if err := usersSvc.ChangePassword(c.Request().Context(), p.ID, req.NewPassword); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]bool{"changed": true})
	}
}
