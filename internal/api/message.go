package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

// MessageHandler serves the team and connection threads. Both share one
// request shape and differ only in which service call backs them.
type MessageHandler struct {
	threads *service.Threads
	logger  *zap.Logger
}

func NewMessageHandler(threads *service.Threads, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{threads: threads, logger: logger}
}

type postMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type (
	postFunc func(ctx context.Context, s auth.Session, id uuid.UUID, text string) (*models.Message, error)
	listFunc func(ctx context.Context, s auth.Session, id uuid.UUID) ([]models.Message, error)
)

// PostTeam handles POST /v1/teams/:id/messages
func (h *MessageHandler) PostTeam(c *gin.Context) {
	h.post(c, "team", h.threads.PostTeamMessage)
}

// ListTeam handles GET /v1/teams/:id/messages
//
// Returns the whole thread oldest first:
//   - only team members may read it (403 otherwise)
//   - messages from students who have since deleted their profile stay
func (h *MessageHandler) ListTeam(c *gin.Context) {
	h.list(c, "team", h.threads.TeamMessages)
}

// PostConnection handles POST /v1/connections/:id/messages
func (h *MessageHandler) PostConnection(c *gin.Context) {
	h.post(c, "connection", h.threads.PostConnectionMessage)
}

// ListConnection handles GET /v1/connections/:id/messages
func (h *MessageHandler) ListConnection(c *gin.Context) {
	h.list(c, "connection", h.threads.ConnectionMessages)
}

func (h *MessageHandler) post(c *gin.Context, what string, send postFunc) {
	id, ok := pathID(c, "id", what)
	if !ok {
		return
	}
	var req postMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := send(c.Request.Context(), middleware.GetSession(c), id, req.Text)
	if err != nil {
		respondError(c, h.logger, "failed to send message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) list(c *gin.Context, what string, read listFunc) {
	id, ok := pathID(c, "id", what)
	if !ok {
		return
	}
	msgs, err := read(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, h.logger, "failed to list messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
