package http

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/mkjeong/leadnet/internal/service/users"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req users.RegisterInput
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		id, err := usersSvc.Register(c.Request().Context(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, map[string]string{"id": id})
	}
}

func loginHandler(usersSvc *users.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		}
		token, err := usersSvc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"token": token})
	}
}
