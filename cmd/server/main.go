package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/headless-pm/progress-tracker/internal/api"
	"github.com/headless-pm/progress-tracker/internal/database"
	"github.com/headless-pm/progress-tracker/internal/service"
	"github.com/headless-pm/progress-tracker/pkg/auth"
	"github.com/headless-pm/progress-tracker/pkg/config"
	"gorm.io/gorm/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to optional JSON config file (overrides env vars)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("startup:config-failed", "err", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	if err := run(cfg); err != nil {
		slog.Error("server:failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database.DataDir, gormLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer db.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	svc := service.New(db, service.Options{
		Location:      loc,
		ClaimAttempts: cfg.Claims.RetryAttempts,
	})

	sweeper := service.NewSweeper(db, svc.Projects, cfg.Sweep.Schedule, loc)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	if !strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(api.NewHandler(svc), api.RouterConfig{
		Verifier:       auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server:listening", "addr", srv.Addr, "sweep", cfg.Sweep.Schedule)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server:shutting-down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With("service", "progress-tracker"))
}

func gormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
