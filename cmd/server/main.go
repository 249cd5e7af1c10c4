package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sprucegoose-dev/antinomy-be/internal/cache"
	"github.com/sprucegoose-dev/antinomy-be/internal/config"
	"github.com/sprucegoose-dev/antinomy-be/internal/database"
	"github.com/sprucegoose-dev/antinomy-be/internal/game"
	"github.com/sprucegoose-dev/antinomy-be/internal/server"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(log.GetLevel())
	logrus.SetFormatter(log.Formatter)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.Connect(ctx, cfg.Database.URL); err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer database.DB.Close()
	if err := database.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	if err := cache.Init(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		// The server degrades gracefully without Redis: action history
		// and cross-process fanout are skipped.
		log.WithError(err).Warn("redis unavailable, continuing without cache")
	}

	store := game.NewStore()
	srv := server.New(cfg, store, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown error")
		}
	}
}
