package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

// AuthHandler serves sign-up, sign-in, sign-out and account deletion.
// Sign-up and sign-in are the only public endpoints besides health.
type AuthHandler struct {
	accounts *service.Accounts
	logger   *zap.Logger
}

func NewAuthHandler(accounts *service.Accounts, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// Only presence is checked here; format rules are reported by the service
// with identity error codes.
type signupRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	CollegeID string `json:"college_id" binding:"required"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.accounts.SignUp(c.Request.Context(), service.SignUpInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CollegeID: req.CollegeID,
	})
	if err != nil {
		respondError(c, h.logger, "signup failed", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Signin handles POST /v1/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "signin failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Signout handles POST /v1/auth/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	if err := h.accounts.SignOut(c.Request.Context(), middleware.GetSession(c)); err != nil {
		respondError(c, h.logger, "signout failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAccount handles DELETE /v1/me
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), middleware.GetSession(c)); err != nil {
		respondError(c, h.logger, "failed to delete account", err)
		return
	}
	c.Status(http.StatusNoContent)
}
