package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant/pkg/tokens"
)

func TestRequireRole(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	e := echo.New()
	m := NewRoleMiddleware(secret)
	e.GET("/chef", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("role").(string))
	}, m.RequireRole("chef"))

	token := func(role string) string {
		tok, err := tokens.NewAccessToken("u1", role, secret, time.Minute)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer " + token("waiter"), want: http.StatusForbidden},
		{name: "chef", header: "Bearer " + token("chef"), want: http.StatusOK},
		{name: "admin", header: "Bearer " + token("admin"), want: http.StatusOK},
		{name: "cookie", cookie: token("chef"), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/chef", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "accessToken", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
