package dashboard

import (
	"math/rand/v2"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
)

// Urgency is a display-only tag derived per load. It is never persisted.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

var urgencies = []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow}

// UrgencyStrategy assigns an urgency to a complaint row.
type UrgencyStrategy interface {
	Urgency(c models.Complaint) Urgency
}

// RandomUrgency picks uniformly from high, medium and low.
type RandomUrgency struct {
	intn func(n int) int
}

// NewRandomUrgency returns the default strategy.
func NewRandomUrgency() *RandomUrgency {
	return &RandomUrgency{intn: rand.IntN}
}

func (r *RandomUrgency) Urgency(models.Complaint) Urgency {
	return urgencies[r.intn(len(urgencies))]
}

// StatusBadge maps a status to its badge colour.
func StatusBadge(s models.Status) string {
	switch s {
	case models.StatusUnderReview:
		return "danger"
	case models.StatusAssigned:
		return "warning"
	case models.StatusResolved:
		return "success"
	default:
		return "secondary"
	}
}

// UrgencyBadge maps an urgency to its badge colour.
func UrgencyBadge(u Urgency) string {
	switch u {
	case UrgencyHigh:
		return "danger"
	case UrgencyMedium:
		return "warning"
	case UrgencyLow:
		return "success"
	default:
		return "secondary"
	}
}
