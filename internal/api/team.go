package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

type TeamHandler struct {
	teams  *service.Teams
	logger *zap.Logger
}

func NewTeamHandler(teams *service.Teams, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

type createTeamRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description" binding:"required"`
	MemberIDs   []uuid.UUID `json:"member_ids" binding:"required"`
}

type addMemberRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
}

type registerTeamRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// Create handles POST /v1/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req createTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teams.Create(c.Request.Context(), middleware.GetSession(c), service.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respondError(c, h.logger, "failed to create team", err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// List handles GET /v1/teams?q=hack&limit=10
func (h *TeamHandler) List(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.teams.ListMine(c.Request.Context(), middleware.GetSession(c), c.Query("q"), limit)
	if err != nil {
		respondError(c, h.logger, "failed to list teams", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	teamID, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	view, err := h.teams.Get(c.Request.Context(), middleware.GetSession(c), teamID)
	if err != nil {
		respondError(c, h.logger, "failed to get team", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddMember handles POST /v1/teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	teamID, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	var req addMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teams.AddMember(c.Request.Context(), middleware.GetSession(c), teamID, req.StudentID)
	if err != nil {
		respondError(c, h.logger, "failed to add member", err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// Register handles POST /v1/teams/:id/register
func (h *TeamHandler) Register(c *gin.Context) {
	teamID, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	var req registerTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teams.Register(c.Request.Context(), middleware.GetSession(c), teamID, req.PaymentMethod)
	if err != nil {
		respondError(c, h.logger, "failed to register team", err)
		return
	}
	c.JSON(http.StatusOK, team)
}
