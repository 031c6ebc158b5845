// Package main is the entry point for the Rail Madad complaint API server.
// It accepts passenger complaints with an evidence image, classifies the
// image through the ML service, stores it in object storage and persists the
// complaint for staff to triage and resolve.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/auth"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/classifier"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/config"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/handlers"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/metrics"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/middleware"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/resilience"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := newLogger(cfg.Environment)
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting Rail Madad API",
		"port", cfg.Port,
		"env", cfg.Environment,
		"store", cfg.StoreDriver,
		"storage", cfg.StorageProvider,
		"classifier_url", cfg.ClassifierURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Upstream calls share one breaker registry, keyed by operation
	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}, sugar)

	// Initialize datastore
	store, closeStore, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("Failed to open datastore: %v", err)
	}
	defer closeStore()

	objects, err := openObjectStore(ctx, cfg, executor, sugar)
	if err != nil {
		sugar.Fatalf("Failed to configure object storage: %v", err)
	}

	events, closeEvents := openEvents(cfg, executor, sugar)
	defer closeEvents()

	var (
		m        *metrics.Metrics
		observer services.StageObserver
	)
	if cfg.MetricsEnabled {
		m = metrics.New("api")
		observer = m
	}

	// Initialize services
	activitySvc := services.NewActivityLogService(store, sugar)
	complaintSvc := services.NewComplaintService(store, activitySvc, events, sugar)
	analyticsSvc := services.NewAnalyticsService(store, sugar)
	submissionSvc := services.NewSubmissionService(
		classifier.New(cfg.ClassifierURL, cfg.ClassifierTimeout, executor, sugar),
		objects,
		complaintSvc,
		observer,
		sugar,
	)

	// Refresh per-status gauges in the background
	if m != nil {
		go services.NewStatusGaugeWorker(store, m, sugar).Start(ctx, cfg.StatusGaugeInterval)
	}

	tokens := auth.NewManager(cfg.JWTSecret, 12*time.Hour)
	limiter := newLimiter(ctx, cfg, sugar)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(submissionSvc, cfg.MaxUploadBytes(), sugar)
	complaintHandler := handlers.NewComplaintHandler(complaintSvc, sugar)
	activityHandler := handlers.NewActivityHandler(activitySvc, sugar)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc, complaintSvc, sugar)
	authHandler := handlers.NewAuthHandler(tokens, cfg.StaffUsername, cfg.StaffPasswordHash, sugar)
	healthHandler := handlers.NewHealthHandler(store, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(chimw.Timeout(cfg.ClassifierTimeout + cfg.StorageTimeout + cfg.DBTimeout))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(limiter, sugar))

	// Health and metrics
	r.Get("/health", healthHandler.Check)
	r.Get("/health/ready", healthHandler.Ready)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Post("/auth/login", authHandler.Login)

	// Intake routes stay open; a staff token only attributes the action
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(tokens))
		r.Post("/upload-media", uploadHandler.UploadMedia)
		r.Post("/resolve-complaint/{id}", uploadHandler.ResolveComplaint)
	})

	r.Route("/complaintslogs", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(tokens))
		r.Get("/all", complaintHandler.ListAll)
		r.With(middleware.RequireAuth(tokens)).Get("/export.xlsx", analyticsHandler.Export)
		r.Get("/{id}", complaintHandler.Get)
		r.Put("/{id}", complaintHandler.UpdateStatus)
		r.Get("/{id}/activity", activityHandler.ByComplaint)
	})

	// Staff-only reporting
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))
		r.Get("/activity/recent", activityHandler.Recent)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/status", analyticsHandler.Status)
			r.Get("/categories", analyticsHandler.Categories)
			r.Get("/monthly-resolutions", analyticsHandler.MonthlyResolutions)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.ClassifierTimeout + cfg.StorageTimeout + cfg.DBTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	sugar.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
