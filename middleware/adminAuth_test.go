package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func adminRouter(auth AdminAuthorizer) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware(auth), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doAdmin(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecretAuthorizer(t *testing.T) {
	r := adminRouter(SecretAuthorizer{Password: "s3cret"})

	assert.Equal(t, http.StatusOK, doAdmin(r, AdminPasswordHeader, "s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, AdminPasswordHeader, "wrong").Code)

	w := doAdmin(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestSecretAuthorizerWithoutPasswordRefusesAll(t *testing.T) {
	r := adminRouter(SecretAuthorizer{})
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, AdminPasswordHeader, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, AdminPasswordHeader, "anything").Code)
}

func TestSecretAuthorizerBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	r := adminRouter(SecretAuthorizer{Hash: hash})

	assert.Equal(t, http.StatusOK, doAdmin(r, AdminPasswordHeader, "s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, AdminPasswordHeader, "s3cret ").Code)
}

func TestJWTAuthorizer(t *testing.T) {
	secret := []byte("signing-key")
	r := adminRouter(JWTAuthorizer{Secret: secret})

	admin, err := utils.GenerateToken(secret, "ops@example.com", "admin", time.Hour)
	require.NoError(t, err)
	staff, err := utils.GenerateToken(secret, "tech@example.com", "technician", time.Hour)
	require.NoError(t, err)
	expired, err := utils.GenerateToken(secret, "ops@example.com", "admin", -time.Hour)
	require.NoError(t, err)
	forged, err := utils.GenerateToken([]byte("other"), "ops@example.com", "admin", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doAdmin(r, "Authorization", "Bearer "+admin).Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, "Authorization", "Bearer "+staff).Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, "Authorization", "Bearer "+expired).Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, "Authorization", "Bearer "+forged).Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(r, "Authorization", admin).Code)
}

func TestNewAdminAuthorizer(t *testing.T) {
	auth, err := NewAdminAuthorizer("", "pw", "", "")
	require.NoError(t, err)
	assert.IsType(t, SecretAuthorizer{}, auth)

	auth, err = NewAdminAuthorizer("JWT", "", "", "key")
	require.NoError(t, err)
	assert.IsType(t, JWTAuthorizer{}, auth)

	_, err = NewAdminAuthorizer("jwt", "", "", "")
	assert.Error(t, err)

	_, err = NewAdminAuthorizer("oauth", "", "", "")
	assert.Error(t, err)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestContextSetsID(t *testing.T) {
	r := gin.New()
	r.Use(RequestContext())
	r.GET("/", func(c *gin.Context) {
		assert.NotNil(t, RequestLogger(c))
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
