package services

import (
	"context"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"go.uber.org/zap"
)

// AnalyticsStore aggregates complaint metadata for staff reports.
type AnalyticsStore interface {
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)
	CategoryDistribution(ctx context.Context) ([]models.CategoryDistribution, error)
	MonthlyResolutions(ctx context.Context) ([]models.MonthlyResolution, error)
}

// AnalyticsService serves the staff analytics endpoints
type AnalyticsService struct {
	store  AnalyticsStore
	logger *zap.SugaredLogger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(store AnalyticsStore, logger *zap.SugaredLogger) *AnalyticsService {
	return &AnalyticsService{store: store, logger: logger}
}

// StatusCounts returns one entry per known status, zero-filled.
func (s *AnalyticsService) StatusCounts(ctx context.Context) ([]models.StatusCount, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.StatusCount, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		out = append(out, models.StatusCount{Status: st, Count: counts[st]})
	}
	return out, nil
}

// Categories returns the ML category distribution, largest first
func (s *AnalyticsService) Categories(ctx context.Context) ([]models.CategoryDistribution, error) {
	return s.store.CategoryDistribution(ctx)
}

// MonthlyResolutions returns resolved counts per YYYY-MM, newest first
func (s *AnalyticsService) MonthlyResolutions(ctx context.Context) ([]models.MonthlyResolution, error) {
	return s.store.MonthlyResolutions(ctx)
}

// StatusGauge receives the latest per-status totals.
type StatusGauge interface {
	SetStatusCounts(counts map[models.Status]int64)
}

// StatusGaugeWorker periodically refreshes the per-status gauges
type StatusGaugeWorker struct {
	store  AnalyticsStore
	gauge  StatusGauge
	logger *zap.SugaredLogger
}

// NewStatusGaugeWorker creates a new background gauge worker
func NewStatusGaugeWorker(store AnalyticsStore, gauge StatusGauge, logger *zap.SugaredLogger) *StatusGaugeWorker {
	return &StatusGaugeWorker{store: store, gauge: gauge, logger: logger}
}

// DefaultGaugeInterval replaces a non-positive refresh interval.
const DefaultGaugeInterval = time.Minute

// Start begins the periodic refresh loop
func (w *StatusGaugeWorker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		w.logger.Warnw("Invalid status gauge interval, using default", "interval", interval, "default", DefaultGaugeInterval)
		interval = DefaultGaugeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial refresh
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Status gauge worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatusGaugeWorker) refresh(ctx context.Context) {
	counts, err := w.store.CountByStatus(ctx)
	if err != nil {
		w.logger.Warnw("Status gauge refresh failed", "error", err)
		return
	}
	w.gauge.SetStatusCounts(counts)
	w.logger.Debugw("Status gauges refreshed", "statuses", len(counts))
}
