package services

import (
	"context"
	"fmt"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityStore persists the per-complaint activity trail.
type ActivityStore interface {
	AppendActivity(ctx context.Context, entry *models.ActivityLog) error
	ListActivity(ctx context.Context, complaintID string, limit int) ([]models.ActivityLog, error)
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// ActivityLogService handles activity log business logic
type ActivityLogService struct {
	store  ActivityStore
	logger *zap.SugaredLogger
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(store ActivityStore, logger *zap.SugaredLogger) *ActivityLogService {
	return &ActivityLogService{store: store, logger: logger}
}

// Log records a staff or system action. Failures are logged and returned
// but never roll back the action itself.
func (s *ActivityLogService) Log(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.store.AppendActivity(ctx, entry); err != nil {
		s.logger.Warnw("Failed to record activity",
			"complaint_id", entry.ComplaintID,
			"type", entry.ActivityType,
			"error", err,
		)
		return fmt.Errorf("insert activity log: %w", err)
	}

	s.logger.Infow("Activity logged",
		"actor", entry.Actor,
		"type", entry.ActivityType,
		"action", entry.ActionDescription,
	)
	return nil
}

// FetchByComplaint returns the activity trail of one complaint, newest first
func (s *ActivityLogService) FetchByComplaint(ctx context.Context, complaintID string, limit int) ([]models.ActivityLog, error) {
	return s.store.ListActivity(ctx, complaintID, clampLimit(limit))
}

// FetchRecent returns recent activity across all complaints
func (s *ActivityLogService) FetchRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return s.store.RecentActivity(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultActivityLimit
	case limit > maxActivityLimit:
		return maxActivityLimit
	default:
		return limit
	}
}
