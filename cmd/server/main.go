package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"focussync/internal/config"
	"focussync/internal/db"
	"focussync/internal/handler"
	"focussync/internal/repository"
	"focussync/internal/router"
	"focussync/internal/service"
)

func main() {
	cfg := config.LoadServer()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, db.Migrations(cfg.MigrationsDir)); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	authService := service.NewAuthService(repository.NewUserRepository(database), cfg.JWTSecret, cfg.TokenTTL)
	timeTrackingService := service.NewTimeTrackingService(repository.NewTimeLogRepository(database))

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(
			authService,
			handler.NewAuthHandler(authService),
			handler.NewTimeTrackingHandler(timeTrackingService),
			cfg.CORSOrigins,
		),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("time tracking backend listening on %s", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("run server: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
