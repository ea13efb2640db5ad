package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func serveProtected(token string, roles ...string) *httptest.ResponseRecorder {
	e := echo.New()
	h := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"actor": Actor(c), "role": c.Get(CtxRole)})
	}
	e.GET("/x", h, JWTAuth(testSecret), RequireRole(roles...))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "op-7", "role": "editor", "exp": time.Now().Add(time.Hour).Unix(),
	})
	rec := serveProtected(tok, "OWNER", "EDITOR")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"actor":"op-7","role":"EDITOR"}`, rec.Body.String())
}

func TestJWTAuthAcceptsNumericSubject(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": 42, "role": "OWNER", "exp": time.Now().Add(time.Hour).Unix(),
	})
	rec := serveProtected(tok, "OWNER")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"actor":"42"`)
}

func TestJWTAuthRejects(t *testing.T) {
	cases := map[string]string{
		"missing": "",
		"garbage": "not.a.jwt",
		"expired": sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"sub": "a", "role": "OWNER", "exp": time.Now().Add(-time.Minute).Unix(),
		}),
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
			"sub": "a", "role": "OWNER",
		}),
		"wrong alg": sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
			"sub": "a", "role": "OWNER",
		}),
		"no subject": sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"role": "OWNER",
		}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serveProtected(tok, "OWNER").Code)
		})
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "c", "role": "CUSTOMER"})
	assert.Equal(t, http.StatusForbidden, serveProtected(tok, "OWNER", "EDITOR").Code)
}

func TestActorDefaultsToAnon(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", Actor(c))
}
