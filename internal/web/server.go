// Package web exposes the study service over HTTP. Routing and DTO mapping
// live here; all domain decisions stay in the services.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easysks/easysks/internal/apperr"
	"github.com/easysks/easysks/internal/domain"
	"github.com/easysks/easysks/internal/study"
)

// StudyService is the part of the study service the handlers need.
type StudyService interface {
	GetDueCards(ctx context.Context, req study.QueueRequest) ([]domain.StudyCard, error)
	GetPracticeCards(ctx context.Context, req study.QueueRequest) ([]domain.StudyCard, error)
	ReviewCard(ctx context.Context, req study.ReviewRequest) (*domain.StudyCard, error)
	GetCard(ctx context.Context, cardID string) (*domain.Card, error)
	Dashboard(ctx context.Context, userID string) (*domain.DashboardSummary, error)
}

// AuthMiddleware guards the authenticated route group.
type AuthMiddleware interface {
	RequireAuth() gin.HandlerFunc
}

// Auth bundles the guard middleware with the context accessors it populates,
// so tests can swap in fakes without minting tokens.
type Auth struct {
	Middleware  AuthMiddleware
	CurrentUser func(c *gin.Context) (domain.AppUser, bool)
	Identity    func(c *gin.Context) (domain.AuthenticatedUser, bool)
}

// Server holds the HTTP dependencies and the router.
type Server struct {
	router *gin.Engine
	study  StudyService
	auth   Auth
	log    *zap.Logger
}

// Options configures the server.
type Options struct {
	AllowedOrigins []string
	Mode           string // gin mode; "" keeps release mode
}

// NewServer wires routes and middleware.
func NewServer(studySvc StudyService, auth Auth, log *zap.Logger, opts Options) *Server {
	if opts.Mode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(opts.Mode)
	}

	s := &Server{
		router: gin.New(),
		study:  studySvc,
		auth:   auth,
		log:    log.With(zap.String("component", "web")),
	}

	s.router.Use(gin.Recovery())
	if len(opts.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = opts.AllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		corsCfg.MaxAge = 12 * time.Hour
		s.router.Use(cors.New(corsCfg))
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth())

	api := s.router.Group("/api/v1")
	api.GET("/topics", s.handleTopics())

	authed := api.Group("")
	authed.Use(s.auth.Middleware.RequireAuth())
	authed.GET("/study/due", s.handleQueue(s.study.GetDueCards))
	authed.GET("/study/practice", s.handleQueue(s.study.GetPracticeCards))
	authed.POST("/study/review", s.handleReview())
	authed.GET("/dashboard", s.handleDashboard())
	authed.GET("/cards/:card_id", s.handleGetCard())
	authed.GET("/me", s.handleMe())
}

// respondError maps a classified error to its HTTP shape. Unclassified
// errors answer 500 without leaking their message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.CodeOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		code = "internal"
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}
