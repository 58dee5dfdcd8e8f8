// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	r.GET("/farmer-only", AuthRequired(), RoleRequired(models.RoleFarmer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/buyers", AuthRequired(), RoleRequired(models.RoleDistributor, models.RoleShopkeeper), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func tokenFor(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, err := utils.GenerateJWT(uuid.New(), "tester", string(role), 1)
	require.NoError(t, err)
	return token
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleFarmer))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleRequiredAllows(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/farmer-only", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleFarmer))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleRequiredDenies(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/farmer-only", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleTransporter))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoleRequiredMultipleRoles(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := setupAuthRouter()

	for _, role := range []models.UserRole{models.RoleDistributor, models.RoleShopkeeper} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/buyers", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "role %s should be allowed", role)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/buyers", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleConsumer))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
