package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

// ConnectionHandler serves connection requests and the connection list.
type ConnectionHandler struct {
	connections *service.Connections
	logger      *zap.Logger
}

func NewConnectionHandler(connections *service.Connections, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, logger: logger}
}

type sendRequestRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
}

// SendRequest handles POST /v1/requests
func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	var req sendRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.connections.SendRequest(c.Request.Context(), middleware.GetSession(c), req.ReceiverID)
	if err != nil {
		respondError(c, h.logger, "failed to send request", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Incoming handles GET /v1/requests/incoming
func (h *ConnectionHandler) Incoming(c *gin.Context) {
	reqs, err := h.connections.IncomingRequests(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, h.logger, "failed to list requests", err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// Outgoing handles GET /v1/requests/outgoing
func (h *ConnectionHandler) Outgoing(c *gin.Context) {
	reqs, err := h.connections.OutgoingRequests(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, h.logger, "failed to list requests", err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// Accept handles POST /v1/requests/:id/accept
func (h *ConnectionHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "id", "request")
	if !ok {
		return
	}
	conn, err := h.connections.AcceptRequest(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, h.logger, "failed to accept request", err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

// Reject handles POST /v1/requests/:id/reject
func (h *ConnectionHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id", "request")
	if !ok {
		return
	}
	if err := h.connections.RejectRequest(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		respondError(c, h.logger, "failed to reject request", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Cancel handles DELETE /v1/requests/:id
func (h *ConnectionHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", "request")
	if !ok {
		return
	}
	if err := h.connections.CancelRequest(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		respondError(c, h.logger, "failed to cancel request", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /v1/connections
func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.connections.Connections(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, h.logger, "failed to list connections", err)
		return
	}
	c.JSON(http.StatusOK, conns)
}
