package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/naijamap/internal/account"
	"github.com/jon4hz/naijamap/internal/api/auth"
	"github.com/jon4hz/naijamap/internal/api/handler"
	"github.com/jon4hz/naijamap/internal/cache"
	"github.com/jon4hz/naijamap/internal/config"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/jon4hz/naijamap/internal/gravatar"
	"github.com/jon4hz/naijamap/internal/progress"
	"github.com/jon4hz/naijamap/internal/static"
	"golang.org/x/sync/errgroup"
)

const sessionName = "naijamap_session"

type Server struct {
	cfg        *config.Config
	ginEngine  *gin.Engine
	db         database.DB
	auth       *auth.Manager
	handler    *handler.Handler
	httpServer *http.Server
}

// New builds the server and registers every route. progressCache may be nil.
func New(cfg *config.Config, db database.DB, progressCache *cache.ProgressCache, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if err := gravatar.Validate(cfg.Gravatar); err != nil {
		return nil, err
	}

	accounts, err := account.New(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}

	if !debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager := auth.New(db, cfg.Gravatar)
	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		db:        db,
		auth:      authManager,
		handler:   handler.New(db, accounts, progress.New(db, progressCache), authManager),
	}

	s.ginEngine.Use(gin.Recovery(), requestID(), requestLogger())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupCORS()
	s.setupSession()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupSession() {
	store := auth.NewStore(s.cfg.SessionStore, []byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store))
}

func (s *Server) setupCORS() {
	if s.cfg.CORS == nil || len(s.cfg.CORS.AllowedOrigins) == 0 {
		return
	}
	s.ginEngine.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func (s *Server) setupRoutes() error {
	h := s.handler

	assets, err := static.FileSystem()
	if err != nil {
		return err
	}
	s.ginEngine.StaticFS("/static", assets)

	s.ginEngine.GET("/", h.Index)
	s.ginEngine.GET("/signup", h.SignupPage)
	s.ginEngine.POST("/signup", h.Signup)
	s.ginEngine.GET("/login", h.LoginPage)
	s.ginEngine.POST("/login", h.Login)
	s.ginEngine.GET("/logout", h.Logout)
	s.ginEngine.GET("/state/:name", h.StateDetail)
	s.ginEngine.POST("/reset", h.Reset)
	s.ginEngine.GET("/healthz", h.Health)

	protected := s.ginEngine.Group("/")
	protected.Use(s.auth.RequireAuth())
	protected.GET("/game", h.Game)

	ajax := s.ginEngine.Group("/")
	ajax.Use(s.auth.RequireAuthAPI())
	ajax.POST("/save_progress", h.SaveProgress)

	return nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting API server", "listen", s.cfg.Listen)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down API server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
		for _, err := range c.Errors {
			log.Error("request failed", "path", c.Request.URL.Path, "error", err.Err, "request_id", c.GetString("request_id"))
		}
	}
}
