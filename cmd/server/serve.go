package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/scrumboard-api/internal/auth"
	"github.com/yukikurage/scrumboard-api/internal/config"
	"github.com/yukikurage/scrumboard-api/internal/constants"
	"github.com/yukikurage/scrumboard-api/internal/handlers"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"github.com/yukikurage/scrumboard-api/internal/services"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	gin.SetMode(cfg.GinMode)

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	logger := slog.Default()
	repos := repository.New(db)
	cascade := services.NewCascadeDeleter(repos)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)

	// A nil suggester disables user story suggestions.
	var suggester services.StorySuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	}

	h := handlers.Handlers{
		Auth:        handlers.NewAuthHandler(services.NewAuthService(repos), tokens, cfg.JWTExpiration, logger),
		Projects:    handlers.NewProjectHandler(services.NewProjectService(repos, cascade), logger),
		Sprints:     handlers.NewSprintHandler(services.NewSprintService(repos), logger),
		UserStories: handlers.NewUserStoryHandler(services.NewUserStoryService(repos, cascade, suggester), logger),
		Tasks:       handlers.NewTaskHandler(services.NewTaskService(repos), logger),
		Versions:    handlers.NewVersionHandler(services.NewVersionService(repos), logger),
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.GET("/health", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Database is unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Scrumboard API is running"})
	})

	handlers.RegisterRoutes(r.Group("/api"), h, middleware.NewProjectGuard(repos, logger), tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.ServerPort, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to listen: %w", err)
		}
		return nil
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited")
	return nil
}

// newSessionStore uses Redis when REDIS_HOST is set and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(10, "tcp", redisAddr, "", "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		slog.Info("using redis session store", "addr", redisAddr)
		store = rs
	} else {
		slog.Warn("REDIS_HOST not set, using cookie session store")
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == "release",
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
