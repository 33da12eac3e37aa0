package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

// Services are the domain services the router exposes.
type Services struct {
	Accounts       *service.Accounts
	Students       *service.Students
	Discovery      *service.Discovery
	Connections    *service.Connections
	Teams          *service.Teams
	Threads        *service.Threads
	Participations *service.Participations
	Announcements  *service.Announcements
}

// RouterConfig carries the infrastructure the middleware and the WebSocket
// endpoint need.
type RouterConfig struct {
	Issuer      *auth.Issuer
	Revoked     cache.RevocationList
	AuthLimiter cache.RateLimiter
	Hub         *realtime.Hub
	Catalog     *catalog.Catalog
	// Health reports backing store reachability. Nil means always healthy.
	Health func(ctx context.Context) error
	Logger *zap.Logger
}

func NewRouter(svc Services, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	// Health check is public so load balancers can reach it.
	r.GET("/v1/health", func(c *gin.Context) {
		if cfg.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Health(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(svc.Accounts, logger)
	students := NewStudentHandler(svc.Students, svc.Discovery, logger)
	connections := NewConnectionHandler(svc.Connections, logger)
	teams := NewTeamHandler(svc.Teams, logger)
	messages := NewMessageHandler(svc.Threads, logger)
	participations := NewParticipationHandler(svc.Participations, logger)
	catalogHandler := NewCatalogHandler(svc.Announcements, cfg.Catalog)
	ws := NewWSHandler(cfg.Hub, svc.Threads, logger)

	public := r.Group("/v1/auth")
	public.Use(middleware.RateLimit(cfg.AuthLimiter, logger))
	public.POST("/signup", authHandler.Signup)
	public.POST("/signin", authHandler.Signin)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Issuer, cfg.Revoked, logger))

	v1.POST("/auth/signout", authHandler.Signout)

	v1.GET("/me", students.Me)
	v1.PATCH("/me", students.UpdateMe)
	v1.DELETE("/me", authHandler.DeleteAccount)
	v1.GET("/students/:id", students.Get)
	v1.GET("/discover", students.Discover)

	v1.POST("/requests", connections.SendRequest)
	v1.GET("/requests/incoming", connections.Incoming)
	v1.GET("/requests/outgoing", connections.Outgoing)
	v1.POST("/requests/:id/accept", connections.Accept)
	v1.POST("/requests/:id/reject", connections.Reject)
	v1.DELETE("/requests/:id", connections.Cancel)

	v1.GET("/connections", connections.List)
	v1.GET("/connections/:id/messages", messages.ListConnection)
	v1.POST("/connections/:id/messages", messages.PostConnection)

	v1.GET("/teams", teams.List)
	v1.POST("/teams", teams.Create)
	v1.GET("/teams/:id", teams.Get)
	v1.POST("/teams/:id/members", teams.AddMember)
	v1.POST("/teams/:id/register", teams.Register)
	v1.GET("/teams/:id/messages", messages.ListTeam)
	v1.POST("/teams/:id/messages", messages.PostTeam)

	v1.GET("/me/participations", participations.List)
	v1.POST("/me/participations", participations.Create)
	v1.PUT("/me/participations/:id", participations.Update)
	v1.DELETE("/me/participations/:id", participations.Delete)

	v1.GET("/announcements", catalogHandler.Announcements)
	v1.GET("/calendar", catalogHandler.Calendar)
	v1.GET("/catalog/navigation", catalogHandler.Navigation)
	v1.GET("/catalog/interests", catalogHandler.Interests)
	v1.GET("/catalog/skills", catalogHandler.Skills)
	v1.GET("/catalog/payment-methods", catalogHandler.PaymentMethods)

	v1.GET("/ws", ws.Connect)

	return r
}
