package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"uservault/internal/api"
	"uservault/internal/api/middleware"
	"uservault/internal/database"
	"uservault/pkg/factory"
)

func main() {
	appFactory, err := factory.NewFactory()
	if err != nil {
		fmt.Printf("failed to build application: %v\n", err)
		os.Exit(1)
	}

	log := appFactory.GetLogger()
	cfg := appFactory.GetConfig()
	db := appFactory.GetDB()

	defer db.Close()

	log.Info("starting application", map[string]interface{}{"env": cfg.AppEnv})

	migrationService := database.NewMigrationService(db, log)
	if err := migrationService.RunMigrations(); err != nil {
		log.Fatal("failed to run migrations", map[string]interface{}{"error": err.Error()})
	}

	authHandler := api.NewAuthHandler(appFactory.GetAuthService(), log)
	userHandler := api.NewUserHandler(appFactory.GetUserService(), log)
	healthHandler := api.NewHealthHandler(db, appFactory.GetCache(), log)

	authGuard := middleware.AuthMiddleware(appFactory.GetTokenIssuer(), log)

	mux := http.NewServeMux()

	authHandler.RegisterRoutes(mux)
	userHandler.RegisterRoutes(mux, authGuard)
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RecoveryMiddleware(log)(
		middleware.LoggingMiddleware(log)(
			middleware.MetricsMiddleware(mux),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"port": cfg.Server.Port})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server", map[string]interface{}{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("server stopped", map[string]interface{}{})
}
