package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"go.uber.org/zap"
)

// FilterAll selects every status.
const FilterAll = "All"

// FilterOptions lists the status filter choices in display order.
var FilterOptions = []string{
	FilterAll,
	string(models.StatusOpen),
	string(models.StatusAssigned),
	string(models.StatusResolved),
	string(models.StatusUnderReview),
}

// Row is one complaint decorated for display.
type Row struct {
	models.Complaint
	Urgency Urgency
}

// Filter narrows the rows shown in the log.
type Filter struct {
	Status string
	Search string
}

// Match reports whether row passes both the status and the search filter.
// Search is a case-insensitive substring of the id or the category.
func (f Filter) Match(row Row) bool {
	if f.Status != "" && f.Status != FilterAll && string(row.Status) != f.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(row.ID), term) ||
		strings.Contains(strings.ToLower(models.StrVal(row.Category)), term)
}

// Apply returns the rows that pass f, preserving order.
func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// LogView holds the most recently loaded complaint rows.
type LogView struct {
	api     API
	urgency UrgencyStrategy
	logger  *zap.SugaredLogger

	mu   sync.RWMutex
	rows []Row
}

// NewLogView creates a log view. urgency defaults to RandomUrgency.
func NewLogView(api API, urgency UrgencyStrategy, logger *zap.SugaredLogger) *LogView {
	if urgency == nil {
		urgency = NewRandomUrgency()
	}
	return &LogView{api: api, urgency: urgency, logger: logger}
}

// Load fetches every complaint and tags each with a fresh urgency.
// On failure the previous rows are kept.
func (v *LogView) Load(ctx context.Context) error {
	complaints, err := v.api.ListComplaints(ctx)
	if err != nil {
		v.logger.Errorw("Error fetching complaints", "error", err)
		return err
	}

	rows := make([]Row, 0, len(complaints))
	for _, c := range complaints {
		rows = append(rows, Row{Complaint: c, Urgency: v.urgency.Urgency(c)})
	}

	v.mu.Lock()
	v.rows = rows
	v.mu.Unlock()
	return nil
}

// Rows returns the loaded rows that pass f.
func (v *LogView) Rows(f Filter) []Row {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return f.Apply(v.rows)
}

// UpdateStatus sends the change to the API and patches the local row only
// after the API accepted it.
func (v *LogView) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	if _, err := v.api.UpdateStatus(ctx, id, status); err != nil {
		v.logger.Errorw("Error updating complaint status", "id", id, "status", status, "error", err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.rows {
		if v.rows[i].ID == id {
			v.rows[i].Status = status
			v.rows[i].IsArchived = status == models.StatusResolved
		}
	}
	return nil
}
