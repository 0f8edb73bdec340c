// Package devserver is a local implementation of the portal API backed by
// SQLite. It exists so the client can be exercised without the production
// backend.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/miportal/portal/internal/common"
	"github.com/miportal/portal/internal/config"
	"github.com/sirupsen/logrus"
)

const APIBasePath = "/api/v1"

// Server is the development API server.
type Server struct {
	Config        *config.Config
	Store         *Store
	Tokens        *TokenIssuer
	Cache         Cache
	Limiter       *LoginLimiter
	StartTime     time.Time
	TotalRequests int64
	server        *http.Server
}

// New assembles a server from already opened dependencies. A nil cache
// disables caching.
func New(cfg *config.Config, store *Store, tokens *TokenIssuer, cache Cache) *Server {
	if cache == nil {
		cache = noopCache{}
	}
	return &Server{
		Config:    cfg,
		Store:     store,
		Tokens:    tokens,
		Cache:     cache,
		Limiter:   NewLoginLimiter(cfg.DevServer.RateLimit.Rate, cfg.DevServer.RateLimit.Burst),
		StartTime: time.Now().UTC(),
	}
}

// Open creates the server's database, signing key and cache from cfg.
func Open(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := OpenStore(cfg.GetDevServerDatabase())
	if err != nil {
		return nil, err
	}

	secret, generated, err := common.EnsureSecret(cfg.DevServer.Secret, 48)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	if generated {
		logrus.Warnln("No devserver.secret configured, using a random one. Tokens will not survive a restart")
	}

	var cache Cache
	if len(cfg.DevServer.RedisURL) > 0 {
		redisCache, err := NewRedisCache(ctx, cfg.DevServer.RedisURL, cfg.DevServer.CacheTTL)
		if err != nil {
			logrus.WithError(err).Warnln("Redis unavailable, serving without a read cache")
		} else {
			cache = redisCache
		}
	}

	return New(cfg, store, NewTokenIssuer(secret, cfg.DevServer.TokenTTL), cache), nil
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(requestLogger())
	router.Use(recovery())
	router.Use(s.requestCounterMiddleware())

	allowedOrigins := s.Config.DevServer.CORS.AllowedOrigins

	logrus.WithFields(logrus.Fields{
		"allowedOrigins": allowedOrigins,
	}).Debugln("CORS configuration")

	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"X-Client",
			},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithDetail(c, http.StatusNotFound, "Not Found")
	})

	api := router.Group(APIBasePath)
	{
		api.GET("/health", s.healthHandler)

		api.POST("/login/access-token", s.Limiter.Middleware(), s.postAccessToken)
		api.POST("/users/", s.postUser)

		authenticated := api.Group("", s.authMiddleware())
		{
			authenticated.GET("/users/me", s.getCurrentUser)
			authenticated.PATCH("/users/me", s.patchCurrentUser)

			authenticated.GET("/academic/subjects", s.getSubjects)
			authenticated.GET("/academic/grades", s.getGrades)
			authenticated.GET("/academic/schedule", s.getSchedule)
		}
	}

	return router
}

func (s *Server) healthHandler(c *gin.Context) {
	status := http.StatusOK
	state := "ok"

	if sqlDB, err := s.Store.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   state,
		"version":  common.GetVersion(),
		"uptime":   common.FormatDuration(time.Since(s.StartTime)),
		"requests": atomic.LoadInt64(&s.TotalRequests),
	})
}

// Start listens in the background. It returns an error if the listener
// fails immediately.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	addr := s.Config.GetDevServerAddress()
	limits := s.Config.DevServer.Limits

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  limits.ReadTimeout,
		WriteTimeout: limits.WriteTimeout,
		IdleTimeout:  limits.IdleTimeout,
	}

	s.server = server

	errChan := make(chan error, 1)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait a moment to see if the server fails to start
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start server: %w", err)
	case <-time.After(100 * time.Millisecond):
		logrus.WithFields(logrus.Fields{
			"address": addr,
		}).Infoln("Development API server started")
		return nil
	}
}

// Stop shuts the listener down and releases every dependency.
func (s *Server) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			logrus.WithError(err).Warnln("Server shutdown")
		}
	}

	if err := s.Close(); err != nil {
		logrus.WithError(err).Warnln("Failed to release server resources")
	}
}

// Close releases the cache and database.
func (s *Server) Close() error {
	return errors.Join(s.Cache.Close(), s.Store.Close())
}
