package services

import (
	"context"
	"testing"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestComplaintService(store *memStore, events EventPublisher) *ComplaintService {
	logger := zap.NewNop().Sugar()
	return NewComplaintService(store, NewActivityLogService(store, logger), events, logger)
}

func TestTransitionKeepsArchiveFlagInSyncWithStatus(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			c := &models.Complaint{}
			Transition(c, from, now)
			Transition(c, to, now.Add(time.Hour))

			assert.Equal(t, to, c.Status)
			assert.Equal(t, to == models.StatusResolved, c.IsArchived, "from %s to %s", from, to)
		}
	}
}

func TestTransitionStampsResolutionFieldsOnlyForResolved(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)

	c := &models.Complaint{}
	Transition(c, models.StatusAssigned, now)
	assert.Nil(t, c.ResolvedAt)
	assert.Nil(t, c.ResolvedMonth)

	Transition(c, models.StatusResolved, now)
	require.NotNil(t, c.ResolvedAt)
	require.NotNil(t, c.ResolvedMonth)
	assert.Equal(t, now, *c.ResolvedAt)
	assert.Equal(t, "2024-12", *c.ResolvedMonth)

	// Reopening clears the archive flag but never the timestamps.
	Transition(c, models.StatusOpen, now.Add(time.Hour))
	assert.False(t, c.IsArchived)
	require.NotNil(t, c.ResolvedAt)
	assert.Equal(t, now, *c.ResolvedAt)
}

func TestTransitionResolvedToResolvedKeepsStamp(t *testing.T) {
	first := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	later := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)

	c := &models.Complaint{}
	Transition(c, models.StatusResolved, first)
	Transition(c, models.StatusResolved, later)

	assert.Equal(t, first, *c.ResolvedAt)
	assert.Equal(t, "2024-01", *c.ResolvedMonth)
	assert.Equal(t, later, c.UpdatedAt)

	// Leaving and re-entering Resolved is a new resolution.
	Transition(c, models.StatusOpen, later)
	Transition(c, models.StatusResolved, later)
	assert.Equal(t, later, *c.ResolvedAt)
	assert.Equal(t, "2024-02", *c.ResolvedMonth)
}

func TestUpdateStatusResolvedTwiceKeepsResolvedMonth(t *testing.T) {
	store := newMemStore()
	svc := newTestComplaintService(store, nil)
	ctx := context.Background()

	first := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	second := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	c := &models.Complaint{UserID: "u1"}
	require.NoError(t, svc.Create(ctx, c))

	svc.now = func() time.Time { return first }
	_, err := svc.UpdateStatus(ctx, c.ID, "Resolved", "staff")
	require.NoError(t, err)

	svc.now = func() time.Time { return second }
	got, err := svc.UpdateStatus(ctx, c.ID, "Resolved", "staff")
	require.NoError(t, err)

	assert.Equal(t, first, *got.ResolvedAt)
	assert.Equal(t, "2024-01", *got.ResolvedMonth)

	stored, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01", *stored.ResolvedMonth)
}

func TestCreateStoresUnderReview(t *testing.T) {
	store := newMemStore()
	events := &recordingPublisher{}
	svc := newTestComplaintService(store, events)

	c := &models.Complaint{UserID: "u1", Status: models.StatusResolved, IsArchived: true}
	require.NoError(t, svc.Create(context.Background(), c))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.StatusUnderReview, c.Status)
	assert.False(t, c.IsArchived)
	assert.False(t, c.CreatedAt.IsZero())
	require.Len(t, events.events, 1)
	assert.Equal(t, models.EventCreated, events.events[0].Type)
	require.Len(t, store.activity, 1)
	assert.Equal(t, models.ActivitySubmission, store.activity[0].ActivityType)
}

func TestUpdateStatusToResolvedArchivesAndStamps(t *testing.T) {
	store := newMemStore()
	svc := newTestComplaintService(store, nil)
	ctx := context.Background()

	c := &models.Complaint{UserID: "u1"}
	require.NoError(t, svc.Create(ctx, c))

	updated, err := svc.UpdateStatus(ctx, c.ID, "Resolved", "staff-1")
	require.NoError(t, err)
	assert.True(t, updated.IsArchived)
	assert.NotNil(t, updated.ResolvedAt)
	assert.NotNil(t, updated.ResolvedMonth)

	stored, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, stored.Status)
	assert.True(t, stored.IsArchived)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestComplaintService(store, nil)
	ctx := context.Background()

	c := &models.Complaint{UserID: "u1"}
	require.NoError(t, svc.Create(ctx, c))

	_, err := svc.UpdateStatus(ctx, c.ID, "Closed", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, store.saveCalls)
}

func TestUpdateStatusUnknownID(t *testing.T) {
	svc := newTestComplaintService(newMemStore(), nil)

	_, err := svc.UpdateStatus(context.Background(), "missing", "Open", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateStatusLastWriteWins(t *testing.T) {
	store := newMemStore()
	svc := newTestComplaintService(store, nil)
	ctx := context.Background()

	c := &models.Complaint{UserID: "u1"}
	require.NoError(t, svc.Create(ctx, c))

	_, err := svc.UpdateStatus(ctx, c.ID, "Assigned", "a")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, c.ID, "Open", "b")
	require.NoError(t, err)

	stored, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, stored.Status)
}

func TestResolveTwiceOverwritesResolvedAt(t *testing.T) {
	store := newMemStore()
	svc := newTestComplaintService(store, nil)
	ctx := context.Background()

	first := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	second := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	c := &models.Complaint{UserID: "u1"}
	require.NoError(t, svc.Create(ctx, c))

	svc.now = func() time.Time { return first }
	r1, err := svc.Resolve(ctx, c.ID, "cleaned", "https://bucket.example/a.jpg", "staff")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", *r1.ResolvedMonth)

	svc.now = func() time.Time { return second }
	r2, err := svc.Resolve(ctx, c.ID, "cleaned again", "https://bucket.example/b.jpg", "staff")
	require.NoError(t, err)

	assert.Equal(t, second, *r2.ResolvedAt)
	assert.Equal(t, "2024-02", *r2.ResolvedMonth)
	assert.Equal(t, "cleaned again", *r2.ResolutionText)
	assert.Equal(t, "https://bucket.example/b.jpg", *r2.ResolutionImageURL)
	assert.True(t, r2.IsArchived)
}

func TestResolveRequiresText(t *testing.T) {
	svc := newTestComplaintService(newMemStore(), nil)

	_, err := svc.Resolve(context.Background(), "c-1", "", "https://x", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestActivityTrailNewestFirst(t *testing.T) {
	store := newMemStore()
	logger := zap.NewNop().Sugar()
	activity := NewActivityLogService(store, logger)
	svc := NewComplaintService(store, activity, nil, logger)
	ctx := context.Background()

	c := &models.Complaint{UserID: "u1"}
	require.NoError(t, svc.Create(ctx, c))
	_, err := svc.UpdateStatus(ctx, c.ID, "Assigned", "staff-7")
	require.NoError(t, err)

	logs, err := activity.FetchByComplaint(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActivityStatusUpdate, logs[0].ActivityType)
	assert.Equal(t, "staff-7", logs[0].Actor)
	assert.Equal(t, models.ActivitySubmission, logs[1].ActivityType)
}

func TestStatusCountsZeroFilled(t *testing.T) {
	store := newMemStore()
	svc := newTestComplaintService(store, nil)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, &models.Complaint{UserID: "u1"}))

	counts, err := NewAnalyticsService(store, zap.NewNop().Sugar()).StatusCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(models.Statuses))
	assert.Equal(t, models.StatusUnderReview, counts[0].Status)
	assert.Equal(t, int64(1), counts[0].Count)
	assert.Equal(t, int64(0), counts[3].Count)
}
