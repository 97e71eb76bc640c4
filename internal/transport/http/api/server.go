// Package api serves the analyst HTTP surface: DAO health, proposal
// analysis, treasury intelligence and action dispatch.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "AIDA - AI-Driven DAO Analyst"
	serviceVersion = "1.0.0"

	defaultAddr            = ":8000"
	defaultRateLimitPerMin = 120
	shutdownDrain          = 5 * time.Second
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Server hosts the analyst API.
type Server struct {
	addr    string
	router  *gin.Engine
	limiter *ipRateLimiter
}

// ServerConfig describes the HTTP server dependencies.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	// RateLimitPerMin caps requests per client IP; 0 applies the default,
	// negative disables limiting.
	RateLimitPerMin int
	Router          *Router
}

// NewServer builds the HTTP server around the given router.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Router == nil {
		return nil, errors.New("api server requires a router")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaultAllowedOrigins
	}
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = defaultRateLimitPerMin
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	limiter := newIPRateLimiter(cfg.RateLimitPerMin)
	router.Use(gin.Recovery(), requestLogger(), securityHeaders())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	if limiter != nil {
		router.Use(limiter.middleware())
	}

	router.GET("/", handleRoot)
	router.GET("/health", handleHealth)
	cfg.Router.Register(router.Group("/api"))

	return &Server{addr: cfg.Addr, router: router, limiter: limiter}, nil
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    serviceName,
		"version": serviceVersion,
		"status":  "operational",
	})
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "AIDA",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	if s.limiter != nil {
		go s.limiter.janitor(ctx.Done())
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownDrain)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
