package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/easysks/easysks/internal/auth"
	"github.com/easysks/easysks/internal/config"
	"github.com/easysks/easysks/internal/fsrs"
	"github.com/easysks/easysks/internal/logger"
	"github.com/easysks/easysks/internal/scheduling"
	"github.com/easysks/easysks/internal/storage"
	"github.com/easysks/easysks/internal/study"
	"github.com/easysks/easysks/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "easysks: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("easysks", pflag.ExitOnError)
	configPath := flags.String("config", "config.yaml", "path to the configuration file")
	flags.String("server.host", "", "listen address")
	flags.Int("server.port", 0, "listen port")
	flags.String("database.path", "", "path to the SQLite database")
	flags.String("log.mode", "", "logging mode: dev or prod")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set (EASYSKS_AUTH__JWT_SECRET)")
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database opened", zap.String("path", cfg.Database.Path))

	scheduler, err := scheduling.NewService(fsrs.Config{
		DesiredRetention: cfg.Scheduler.DesiredRetention,
		MaximumInterval:  cfg.Scheduler.MaximumIntervalDays,
	})
	if err != nil {
		return err
	}

	var studyOpts []study.Option
	if cfg.Scheduler.QueueCap > 0 {
		studyOpts = append(studyOpts, study.WithQueueCap(cfg.Scheduler.QueueCap))
	}
	studySvc := study.NewService(db, scheduler, studyOpts...)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret,
		auth.WithIssuer(cfg.Auth.Issuer), auth.WithAudience(cfg.Auth.Audience))
	authMW := auth.NewMiddleware(verifier, db.Users(), cfg.Auth.Provider, log)

	server := web.NewServer(studySvc, web.Auth{
		Middleware:  authMW,
		CurrentUser: auth.CurrentUser,
		Identity:    auth.Identity,
	}, log, web.Options{AllowedOrigins: cfg.Server.AllowedOrigins})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
