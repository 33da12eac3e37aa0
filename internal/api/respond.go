package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"go.uber.org/zap"
)

// respondError writes err as JSON. apperr values keep their message, code
// and field errors; anything else is logged and reported as msg with a 500.
func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	if e, ok := apperr.As(err); ok {
		body := gin.H{"error": e.Message}
		if e.Message == "" {
			body["error"] = e.Kind.Error()
		}
		if e.Code != "" {
			body["code"] = e.Code
		}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(apperr.Status(err), body)
		return
	}

	logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// pathID parses the named path parameter as a UUID, answering 400 when it
// is not one.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit reads the "limit" query parameter for take-first-N listings.
//
// "Load more" pagination:
//   - no "limit" = 0, the listing's own page size (8 for discovery, 5 for
//     teams and participations)
//   - "limit=N" = the first N items. Clients load more by raising N, so
//     there is no ceiling; has_more turns false once N reaches the total.
func queryLimit(c *gin.Context) (int, bool) {
	l := c.Query("limit")
	if l == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(l)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
		return 0, false
	}
	return limit, true
}
