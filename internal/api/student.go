package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

type StudentHandler struct {
	students  *service.Students
	discovery *service.Discovery
	logger    *zap.Logger
}

func NewStudentHandler(students *service.Students, discovery *service.Discovery, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{students: students, discovery: discovery, logger: logger}
}

type updateProfileRequest struct {
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	ProfilePictureURL string   `json:"profile_picture_url"`
	Bio               string   `json:"bio"`
	InterestIDs       []string `json:"interest_ids"`
	SkillIDs          []string `json:"skill_ids"`
}

// Me handles GET /v1/me
func (h *StudentHandler) Me(c *gin.Context) {
	st, err := h.students.Me(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, h.logger, "failed to get profile", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateMe handles PATCH /v1/me
func (h *StudentHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	st, err := h.students.UpdateProfile(c.Request.Context(), middleware.GetSession(c), service.ProfileUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ProfilePictureURL: req.ProfilePictureURL,
		Bio:               req.Bio,
		InterestIDs:       req.InterestIDs,
		SkillIDs:          req.SkillIDs,
	})
	if err != nil {
		respondError(c, h.logger, "failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Get handles GET /v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "student")
	if !ok {
		return
	}
	st, err := h.students.Get(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, h.logger, "failed to get student", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Discover handles GET /v1/discover?q=react&limit=16
func (h *StudentHandler) Discover(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.discovery.Search(c.Request.Context(), middleware.GetSession(c), c.Query("q"), limit)
	if err != nil {
		respondError(c, h.logger, "failed to search students", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
