package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(issuer *auth.Issuer, revoked cache.RevocationList) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(issuer, revoked, zap.NewNop()))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"student_id": GetStudentID(c).String()})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	revoked := cache.NewMemoryRevocationList()
	router := newAuthRouter(issuer, revoked)

	studentID := uuid.New()
	token, session, err := issuer.Issue(studentID, "a@campus.edu")
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"missing header", "/whoami", "", http.StatusUnauthorized},
		{"wrong scheme", "/whoami", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "/whoami", "Bearer garbage", http.StatusUnauthorized},
		{"valid header", "/whoami", "Bearer " + token, http.StatusOK},
		{"query token", "/whoami?token=" + token, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), studentID.String())
			}
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, revoked.Revoke(context.Background(), session.TokenID, session.ExpiresAt))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), auth.CodeInvalidToken)
	})
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(cache.NewMemoryRateLimiter(2, time.Minute), zap.NewNop()))
	r.POST("/signin", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signin", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestGetSession_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, auth.Session{}, GetSession(c))
	assert.Equal(t, uuid.Nil, GetStudentID(c))
}
