// Package models defines the data structures used across the application.
// JSON names follow the wire format the dashboard and mobile clients consume.
package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusUnderReview Status = "Under Review"
	StatusOpen        Status = "Open"
	StatusAssigned    Status = "Assigned"
	StatusResolved    Status = "Resolved"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusUnderReview, StatusOpen, StatusAssigned, StatusResolved}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", WrapError(ErrValidation, "parse status", fmt.Errorf("unknown status %q", raw))
}

// Complaint is a citizen-submitted issue and its resolution lifecycle.
// IsArchived always mirrors Status == StatusResolved.
type Complaint struct {
	ID     string `json:"_id" bson:"-"`
	UserID string `json:"userId" bson:"userId"`

	TrainNo         *string `json:"trainNo" bson:"trainNo"`
	PNRNo           *string `json:"pnrNo" bson:"pnrNo"`
	CoachNo         *string `json:"coachNo" bson:"coachNo"`
	SeatNo          *string `json:"seatNo" bson:"seatNo"`
	TrainName       *string `json:"trainName" bson:"trainName"`
	CurrentLocation *string `json:"currentLocation" bson:"currentLocation"`
	Description     *string `json:"description" bson:"description"`

	File                 *string `json:"file" bson:"file"`
	Category             *string `json:"category" bson:"category"`
	ComplaintDescription *string `json:"complaint_description" bson:"complaint_description"`
	Department           *string `json:"department" bson:"department"`

	Status             Status     `json:"status" bson:"status"`
	ResolutionText     *string    `json:"resolutionText" bson:"resolutionText"`
	ResolutionImageURL *string    `json:"resolutionImageUrl" bson:"resolutionImageUrl"`
	IsArchived         bool       `json:"isArchived" bson:"isArchived"`
	ResolvedAt         *time.Time `json:"resolvedAt" bson:"resolvedAt"`
	ResolvedMonth      *string    `json:"resolvedMonth" bson:"resolvedMonth"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ComplaintSubmission carries the submitter-supplied form fields of an upload.
type ComplaintSubmission struct {
	UserID          string
	TrainNo         *string
	PNRNo           *string
	CoachNo         *string
	SeatNo          *string
	Description     *string
	ResolutionText  *string
	TrainName       *string
	CurrentLocation *string
}

// StatusUpdate is the request body for PUT /complaintslogs/{id}
type StatusUpdate struct {
	Status string `json:"status"`
}

// Classification is the ML service verdict for an uploaded image.
// Raw holds the decoded response body unchanged.
type Classification struct {
	Category             string         `json:"category"`
	ComplaintDescription string         `json:"complaint_description"`
	Raw                  map[string]any `json:"-"`
}

// Upload is a single in-memory multipart file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredObject is the result of a successful object storage upload.
type StoredObject struct {
	Key string
	URL string
}

// ActivityType names an entry in a complaint's activity trail.
type ActivityType string

const (
	ActivitySubmission   ActivityType = "submission"
	ActivityStatusUpdate ActivityType = "status_update"
	ActivityResolution   ActivityType = "resolution"
)

// ActivityLog records a staff or system action for accountability tracking
type ActivityLog struct {
	ID                string       `json:"id" bson:"_id"`
	ComplaintID       string       `json:"complaintId" bson:"complaintId"`
	ActivityType      ActivityType `json:"activityType" bson:"activityType"`
	ActionDescription string       `json:"actionDescription" bson:"actionDescription"`
	Actor             string       `json:"actor" bson:"actor"`
	CreatedAt         time.Time    `json:"createdAt" bson:"createdAt"`
}

// EventType names a complaint lifecycle event.
type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusUpdated EventType = "status_updated"
	EventResolved      EventType = "resolved"
)

// ComplaintEvent is published after a lifecycle change has been persisted.
type ComplaintEvent struct {
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaintId"`
	Status      Status    `json:"status"`
	Category    string    `json:"category,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// SubmitResponse is the body of a successful POST /upload-media
type SubmitResponse struct {
	Message   string     `json:"message"`
	Complaint *Complaint `json:"complaint"`
	URL       string     `json:"url"`
}

// ResolveResponse is the body of a successful POST /resolve-complaint/{id}
type ResolveResponse struct {
	Message   string     `json:"message"`
	Complaint *Complaint `json:"complaint"`
}

// StatusCount for the dashboard summary
type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}

// CategoryDistribution for pie/bar charts
type CategoryDistribution struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// MonthlyResolution counts complaints resolved per YYYY-MM
type MonthlyResolution struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
}

// StrPtr returns nil for empty strings, mirroring `value || null`.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal dereferences s, returning "" for nil.
func StrVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
