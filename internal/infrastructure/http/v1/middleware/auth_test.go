package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/appctx"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, subject string, roles []string) string {
	t.Helper()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// newAuthRouter builds a router that echoes the resolved actor id.
func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(handlers...)
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.ActorID(c.Request.Context()))
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHMACValidator(t *testing.T) {
	validator := NewHMACValidator(testSecret)

	actor, err := validator.ValidateToken(signToken(t, testSecret, "u-42", []string{"stock-admin"}))
	require.NoError(t, err)
	assert.Equal(t, "u-42", actor.UserID)
	assert.Equal(t, []string{"stock-admin"}, actor.Roles)

	_, err = validator.ValidateToken(signToken(t, "other-secret", "u-42", nil))
	assert.Error(t, err)

	_, err = validator.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuth(t *testing.T) {
	router := newAuthRouter(Auth(NewHMACValidator(testSecret)))

	rec := doRequest(router, signToken(t, testSecret, "u-42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-42", rec.Body.String())

	rec = doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	router := newAuthRouter(OptionalAuth(NewHMACValidator(testSecret)))

	// Anonymous requests pass through as the system actor.
	rec := doRequest(router, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "system", rec.Body.String())

	// A valid token attaches the actor.
	rec = doRequest(router, signToken(t, testSecret, "u-42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-42", rec.Body.String())

	// A broken token degrades to anonymous instead of rejecting.
	rec = doRequest(router, "garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "system", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	validator := NewHMACValidator(testSecret)
	router := newAuthRouter(Auth(validator), RequireRole("stock-admin"))

	rec := doRequest(router, signToken(t, testSecret, "u-42", []string{"stock-admin"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, signToken(t, testSecret, "u-42", []string{"viewer"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, signToken(t, testSecret, "u-42", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_NoActor(t *testing.T) {
	router := newAuthRouter(RequireRole("stock-admin"))

	rec := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
