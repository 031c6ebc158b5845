package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
)

type memStore struct {
	mu         sync.Mutex
	seq        int
	order      []string
	complaints map[string]models.Complaint
	activity   []models.ActivityLog

	createCalls int
	findCalls   int
	listErr     error
	activityErr error
}

func newMemStore() *memStore {
	return &memStore{complaints: make(map[string]models.Complaint)}
}

func (m *memStore) Create(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.seq++
	c.ID = fmt.Sprintf("c-%d", m.seq)
	m.complaints[c.ID] = *c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	c, ok := m.complaints[id]
	if !ok {
		return nil, models.WrapError(models.ErrNotFound, "find complaint", fmt.Errorf("id=%s", id))
	}
	return &c, nil
}

func (m *memStore) Save(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.complaints[c.ID]; !ok {
		return models.WrapError(models.ErrNotFound, "save complaint", fmt.Errorf("id=%s", c.ID))
	}
	m.complaints[c.ID] = *c
	return nil
}

func (m *memStore) List(_ context.Context) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
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
	if m.activityErr != nil {
		return nil, m.activityErr
	}
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
	if m.activityErr != nil {
		return nil, m.activityErr
	}
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

type stubClassifier struct {
	result *models.Classification
	err    error
	calls  int
}

func (s *stubClassifier) Classify(context.Context, models.Upload) (*models.Classification, error) {
	s.calls++
	return s.result, s.err
}

type stubObjects struct {
	mu      sync.Mutex
	url     string
	err     error
	puts    []models.Upload
	deleted []string
}

func (s *stubObjects) Put(_ context.Context, file models.Upload) (*models.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, file)
	if s.err != nil {
		return nil, s.err
	}
	return &models.StoredObject{Key: "obj-" + file.Filename, URL: s.url}, nil
}

func (s *stubObjects) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}
