// Package portal serves the placement portal to browsers. It holds one
// session per browser and calls the backend on the browser's behalf.
package portal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/config"
	"github.com/placementcell/portal/internal/guard"
	"github.com/placementcell/portal/internal/metrics"
	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

// Server represents the portal HTTP server
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    zerolog.Logger
	api       *apiclient.Client
	persister session.Persister
	dest      guard.Destinations
	version   string
}

// New creates a new server instance. persister stores browser sessions.
func New(cfg *config.Config, zlog zerolog.Logger, persister session.Persister, version string) (*Server, error) {
	api, err := apiclient.New(cfg.API.BaseURL, nil, zlog)
	if err != nil {
		return nil, err
	}
	api.SetHTTPClient(&http.Client{Timeout: cfg.API.Timeout})

	registerValidators()

	server := &Server{
		config:    cfg,
		logger:    zlog,
		api:       api,
		persister: persister,
		dest:      guard.DefaultDestinations(),
		version:   version,
	}

	server.setupRouter()

	return server, nil
}

// registerValidators adds the portal's custom form validations to gin's validator
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and metrics (no session)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := s.router.Group("/")
	pages.Use(s.sessionMiddleware())
	{
		// Public pages
		pages.GET("/", s.home)
		pages.GET("/login", s.loginPage(models.RoleStudent))
		pages.POST("/login", s.login(models.RoleStudent))
		pages.GET("/admin/login", s.loginPage(models.RoleAdmin))
		pages.POST("/admin/login", s.login(models.RoleAdmin))
		pages.POST("/logout", s.logout)
		pages.GET("/unauthorized", s.unauthorized)

		// Any authenticated role
		shared := pages.Group("")
		shared.Use(s.guard())
		{
			shared.GET("/profile", s.profile)
		}

		student := pages.Group("/student")
		student.Use(s.guard(models.RoleStudent))
		{
			student.GET("/dashboard", s.studentDashboard)
			student.GET("/jobs", s.listJobs)
			student.GET("/jobs/:id", s.showJob)
			student.POST("/jobs/:id/comments", s.addComment)
			student.GET("/notifications", s.listNotifications)
			student.POST("/notifications/read-all", s.markAllNotificationsRead)
			student.POST("/notifications/:id/read", s.markNotificationRead)
			student.GET("/notices", s.listNotices)
			student.GET("/cycles", s.listCycles)
			student.POST("/resume", s.uploadResume)
		}

		admin := pages.Group("/admin")
		admin.Use(s.guard(models.RoleAdmin))
		{
			admin.GET("/dashboard", s.adminDashboard)
			admin.GET("/jobs", s.listJobs)
			admin.POST("/jobs", s.createJob)
			admin.DELETE("/jobs/:id", s.deleteJob)
			admin.POST("/jobs/:id/delete", s.deleteJob)
			admin.GET("/notices", s.listNotices)
			admin.POST("/notices", s.createNotice)
			admin.GET("/cycles", s.listCycles)
			admin.GET("/cycles/:id", s.showCycle)
		}
	}
}

// guard gates a route group to the given roles (any role when empty)
func (s *Server) guard(roles ...models.Role) gin.HandlerFunc {
	return guard.Middleware(roles, s.dest, snapshot, s.logger)
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, strconv.Itoa(status)).Inc()

		event := s.logger.Info()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "placement-portal",
		"version":   s.version,
	})
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		return err
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
