// Package services contains business logic layers.
// Services are called by handlers and talk to storage through narrow interfaces.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"go.uber.org/zap"
)

// ComplaintStore persists complaint documents. Save overwrites the whole
// document; concurrent writers follow last-write-wins.
type ComplaintStore interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	Save(ctx context.Context, c *models.Complaint) error
	List(ctx context.Context) ([]models.Complaint, error)
}

// EventPublisher announces persisted lifecycle changes.
type EventPublisher interface {
	Publish(ctx context.Context, evt models.ComplaintEvent) error
}

// Transition moves c to target and re-derives the archive flag. Entering
// Resolved stamps resolvedAt and resolvedMonth; a Resolved to Resolved
// status update and leaving Resolved both keep them.
func Transition(c *models.Complaint, target models.Status, now time.Time) {
	entering := target == models.StatusResolved &&
		(c.Status != models.StatusResolved || c.ResolvedAt == nil)
	now = now.UTC()
	c.Status = target
	c.IsArchived = target == models.StatusResolved
	if entering {
		stampResolved(c, now)
	}
	c.UpdatedAt = now
}

func stampResolved(c *models.Complaint, now time.Time) {
	month := now.Format("2006-01")
	c.ResolvedAt = &now
	c.ResolvedMonth = &month
}

// ComplaintService handles complaint business logic
type ComplaintService struct {
	store    ComplaintStore
	activity *ActivityLogService
	events   EventPublisher
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewComplaintService creates a new complaint service. activity and events may be nil.
func NewComplaintService(store ComplaintStore, activity *ActivityLogService, events EventPublisher, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{
		store:    store,
		activity: activity,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a new complaint in the Under Review state
func (s *ComplaintService) Create(ctx context.Context, c *models.Complaint) error {
	now := s.now().UTC()
	c.CreatedAt = now
	Transition(c, models.StatusUnderReview, now)

	if err := s.store.Create(ctx, c); err != nil {
		return err
	}

	s.record(ctx, c, models.ActivitySubmission, "Complaint received and queued for review", "SYSTEM")
	s.publish(ctx, models.EventCreated, c)

	s.logger.Infow("Complaint created",
		"id", c.ID,
		"category", models.StrVal(c.Category),
		"has_file", c.File != nil,
	)
	return nil
}

// Get looks up a complaint by id
func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	if id == "" {
		return nil, models.WrapError(models.ErrValidation, "get complaint", fmt.Errorf("id is required"))
	}
	return s.store.FindByID(ctx, id)
}

// List returns every complaint in insertion order
func (s *ComplaintService) List(ctx context.Context) ([]models.Complaint, error) {
	return s.store.List(ctx)
}

// UpdateStatus applies a staff status change. There is no version check:
// two concurrent updates race and the later write wins.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id, rawStatus, actor string) (*models.Complaint, error) {
	target, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := c.Status
	Transition(c, target, s.now())
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, c, models.ActivityStatusUpdate, fmt.Sprintf("Status changed from %s to %s", from, target), actor)
	evt := models.EventStatusUpdated
	if target == models.StatusResolved {
		evt = models.EventResolved
	}
	s.publish(ctx, evt, c)

	s.logger.Infow("Complaint status updated", "id", id, "from", from, "to", target)
	return c, nil
}

// Resolve marks a complaint Resolved with the staff resolution evidence.
// It is not idempotent: a second call overwrites resolvedAt/resolvedMonth.
func (s *ComplaintService) Resolve(ctx context.Context, id, resolutionText, resolutionImageURL, actor string) (*models.Complaint, error) {
	if resolutionText == "" {
		return nil, models.WrapError(models.ErrValidation, "resolve complaint", fmt.Errorf("resolution text is required"))
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.ResolutionText = models.StrPtr(resolutionText)
	c.ResolutionImageURL = models.StrPtr(resolutionImageURL)
	Transition(c, models.StatusResolved, s.now())
	// A new resolution always re-stamps, even on an already resolved complaint.
	stampResolved(c, c.UpdatedAt)

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, c, models.ActivityResolution, "Complaint resolved with evidence image", actor)
	s.publish(ctx, models.EventResolved, c)

	s.logger.Infow("Complaint resolved", "id", id, "resolved_month", models.StrVal(c.ResolvedMonth))
	return c, nil
}

func (s *ComplaintService) record(ctx context.Context, c *models.Complaint, kind models.ActivityType, action, actor string) {
	if s.activity == nil {
		return
	}
	if actor == "" {
		actor = "STAFF"
	}
	_ = s.activity.Log(ctx, &models.ActivityLog{
		ComplaintID:       c.ID,
		ActivityType:      kind,
		ActionDescription: action,
		Actor:             actor,
	})
}

func (s *ComplaintService) publish(ctx context.Context, kind models.EventType, c *models.Complaint) {
	if s.events == nil {
		return
	}
	evt := models.ComplaintEvent{
		Type:        kind,
		ComplaintID: c.ID,
		Status:      c.Status,
		Category:    models.StrVal(c.Category),
		OccurredAt:  c.UpdatedAt,
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warnw("Failed to publish complaint event", "id", c.ID, "type", kind, "error", err)
	}
}
