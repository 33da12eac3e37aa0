package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

type ParticipationHandler struct {
	participations *service.Participations
	logger         *zap.Logger
}

func NewParticipationHandler(participations *service.Participations, logger *zap.Logger) *ParticipationHandler {
	return &ParticipationHandler{participations: participations, logger: logger}
}

// Field rules (date format, category, result) live in validate.
type participationRequest struct {
	Title       string                       `json:"title" binding:"required"`
	Description string                       `json:"description"`
	Date        string                       `json:"date" binding:"required"`
	Category    models.ParticipationCategory `json:"category" binding:"required"`
	Result      string                       `json:"result" binding:"required"`
}

func (r participationRequest) input() service.ParticipationInput {
	return service.ParticipationInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Category:    r.Category,
		Result:      r.Result,
	}
}

// List handles GET /v1/me/participations
func (h *ParticipationHandler) List(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.participations.List(c.Request.Context(), middleware.GetSession(c), limit)
	if err != nil {
		respondError(c, h.logger, "failed to list participations", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create handles POST /v1/me/participations
func (h *ParticipationHandler) Create(c *gin.Context) {
	var req participationRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.participations.Add(c.Request.Context(), middleware.GetSession(c), req.input())
	if err != nil {
		respondError(c, h.logger, "failed to add participation", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/me/participations/:id
func (h *ParticipationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "participation")
	if !ok {
		return
	}
	var req participationRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.participations.Update(c.Request.Context(), middleware.GetSession(c), id, req.input())
	if err != nil {
		respondError(c, h.logger, "failed to update participation", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/me/participations/:id
func (h *ParticipationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "participation")
	if !ok {
		return
	}
	if err := h.participations.Delete(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		respondError(c, h.logger, "failed to delete participation", err)
		return
	}
	c.Status(http.StatusNoContent)
}
