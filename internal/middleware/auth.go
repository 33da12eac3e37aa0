package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"go.uber.org/zap"
)

// ContextKeySession holds the caller's auth.Session in gin.Context.
const ContextKeySession = "session"

// AuthMiddleware validates the Bearer token, rejects revoked tokens and
// stores the session for handlers.
//
// Browsers cannot set headers on a WebSocket handshake, so a "token" query
// parameter is accepted when the header is absent.
func AuthMiddleware(issuer *auth.Issuer, revoked cache.RevocationList, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed authorization header, expected: Bearer <token>",
			})
			return
		}

		session, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": auth.Message(auth.CodeInvalidToken, "invalid or expired token"),
				"code":  auth.CodeInvalidToken,
			})
			return
		}

		isRevoked, err := revoked.IsRevoked(c.Request.Context(), session.TokenID)
		if err != nil {
			logger.Error("revocation check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			return
		}
		if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": auth.Message(auth.CodeInvalidToken, "token has been revoked"),
				"code":  auth.CodeInvalidToken,
			})
			return
		}

		c.Set(ContextKeySession, *session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetSession returns the session stored by AuthMiddleware, or the zero
// Session on unauthenticated routes.
func GetSession(c *gin.Context) auth.Session {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return auth.Session{}
	}
	s, ok := val.(auth.Session)
	if !ok {
		return auth.Session{}
	}
	return s
}

func GetStudentID(c *gin.Context) uuid.UUID {
	return GetSession(c).StudentID
}
