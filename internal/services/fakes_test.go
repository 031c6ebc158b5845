package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory ComplaintStore/ActivityStore/AnalyticsStore.
type memStore struct {
	mu         sync.Mutex
	seq        int
	order      []string
	complaints map[string]models.Complaint
	activity   []models.ActivityLog

	createCalls int
	saveCalls   int
	createErr   error
	saveErr     error
}

func newMemStore() *memStore {
	return &memStore{complaints: make(map[string]models.Complaint)}
}

func (m *memStore) Create(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	c.ID = fmt.Sprintf("c-%d", m.seq)
	m.complaints[c.ID] = *c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, models.WrapError(models.ErrNotFound, "find complaint", fmt.Errorf("id=%s", id))
	}
	return &c, nil
}

func (m *memStore) Save(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.complaints[c.ID]; !ok {
		return models.WrapError(models.ErrNotFound, "save complaint", fmt.Errorf("id=%s", c.ID))
	}
	m.complaints[c.ID] = *c
	return nil
}

func (m *memStore) List(_ context.Context) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Complaint, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.complaints[id])
	}
	return out, nil
}

func (m *memStore) AppendActivity(_ context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, *entry)
	return nil
}

func (m *memStore) ListActivity(_ context.Context, complaintID string, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for i := len(m.activity) - 1; i >= 0 && len(out) < limit; i-- {
		if m.activity[i].ComplaintID == complaintID {
			out = append(out, m.activity[i])
		}
	}
	return out, nil
}

func (m *memStore) RecentActivity(_ context.Context, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for i := len(m.activity) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.activity[i])
	}
	return out, nil
}

func (m *memStore) CountByStatus(_ context.Context) (map[models.Status]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.Status]int64)
	for _, c := range m.complaints {
		out[c.Status]++
	}
	return out, nil
}

func (m *memStore) CategoryDistribution(context.Context) ([]models.CategoryDistribution, error) {
	return nil, nil
}

func (m *memStore) MonthlyResolutions(context.Context) ([]models.MonthlyResolution, error) {
	return nil, nil
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, file models.Upload) (*models.Classification, error) {
	args := m.Called(ctx, file)
	if cls, ok := args.Get(0).(*models.Classification); ok {
		return cls, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Put(ctx context.Context, file models.Upload) (*models.StoredObject, error) {
	args := m.Called(ctx, file)
	if obj, ok := args.Get(0).(*models.StoredObject); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ComplaintEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt models.ComplaintEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}
