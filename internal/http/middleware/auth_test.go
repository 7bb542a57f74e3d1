package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mkjeong/leadnet/internal/auth"
	"github.com/mkjeong/leadnet/internal/model"
)

func callWithAuth(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, model.Principal, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got model.Principal
	var set bool
	handler := mw(func(c echo.Context) error {
		got, set = PrincipalFromCtx(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, got, set
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "leadnet-test", time.Hour)
	token, err := tokens.Generate(model.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	rec, p, ok := callWithAuth(t, JWTMiddleware(tokens), "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	require.Equal(t, model.Principal{ID: "u1", Username: "alice"}, p)
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "leadnet-test", time.Hour)

	rec, _, ok := callWithAuth(t, JWTMiddleware(tokens), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ok)
}

func TestJWTMiddlewareRejectsForeignToken(t *testing.T) {
	other := auth.NewTokenManager("other-secret", "leadnet-test", time.Hour)
	token, err := other.Generate(model.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	tokens := auth.NewTokenManager("secret", "leadnet-test", time.Hour)
	rec, _, ok := callWithAuth(t, JWTMiddleware(tokens), "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, ok)
}
