// Package main serves the Rail Madad staff dashboard: the complaint status
// log and the navbar, rendered over the complaint API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/config"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/dashboard"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadDashboard()

	logger, _ := zap.NewProduction()
	if cfg.Environment == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	translator, err := dashboard.LoadTranslator()
	if err != nil {
		sugar.Fatalf("Failed to load locales: %v", err)
	}

	view := dashboard.NewLogView(dashboard.NewClient(cfg.APIBaseURL, cfg.APITimeout), dashboard.NewRandomUrgency(), sugar)
	server, err := dashboard.NewServer(view, translator, cfg.DefaultLang, sugar)
	if err != nil {
		sugar.Fatalf("Failed to parse templates: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.APITimeout + 5*time.Second))
	r.Use(middleware.SecurityHeaders())
	server.Routes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.APITimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("Dashboard listening", "port", cfg.Port, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("Forced shutdown: %v", err)
	}
}
