package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"risk-register-service/internal/workflow"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func authTestRouter() (*gin.Engine, *workflow.Identity) {
	gin.SetMode(gin.TestMode)
	captured := &workflow.Identity{}
	router := gin.New()
	router.GET("/protected", JWTAuth(testSecret), func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		*captured = ident
		c.Status(http.StatusOK)
	})
	return router, captured
}

func TestJWTAuth_ValidToken(t *testing.T) {
	router, captured := authTestRouter()

	token := signToken(t, jwt.MapClaims{
		"user_id":    float64(42),
		"nik":        "198800101",
		"name":       "Rina Kusuma",
		"session_id": "sess-1",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), captured.UserID)
	assert.Equal(t, "198800101", captured.NIK)
	assert.Equal(t, "Rina Kusuma", captured.DisplayName)
	assert.Equal(t, "sess-1", captured.SessionID)
}

func TestJWTAuth_StringUserIDClaim(t *testing.T) {
	router, captured := authTestRouter()

	token := signToken(t, jwt.MapClaims{"user_id": "77"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(77), captured.UserID)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router, _ := authTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	router, _ := authTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongSignature(t *testing.T) {
	router, _ := authTestRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(1)})
	signed, err := token.SignedString([]byte("other-secret"))
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_TokenWithoutIdentity(t *testing.T) {
	router, _ := authTestRouter()

	token := signToken(t, jwt.MapClaims{"sub": "whoever"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_NIKOnlyTokenAccepted(t *testing.T) {
	router, captured := authTestRouter()

	token := signToken(t, jwt.MapClaims{"nik": "198800103"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), captured.UserID)
	assert.Equal(t, "198800103", captured.NIK)
}

func TestIdentityFrom_MissingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := IdentityFrom(c)
	assert.False(t, ok)
}
