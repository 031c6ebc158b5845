// Package repository persists complaints and their activity trail in
// PostgreSQL or MongoDB. Both backends satisfy the same service interfaces.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/google/uuid"
)

const complaintColumns = `id, user_id, train_no, pnr_no, coach_no, seat_no, train_name, current_location,
	description, file, category, complaint_description, department, status, resolution_text,
	resolution_image_url, is_archived, resolved_at, resolved_month, created_at, updated_at`

// PostgresStore implements the complaint, activity and analytics stores.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresStore wraps db. timeout bounds each call; zero disables it.
func NewPostgresStore(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (r *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureSchema creates the tables and indexes when missing.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2024092101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS complaints (
	seq BIGSERIAL UNIQUE,
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	train_no TEXT,
	pnr_no TEXT,
	coach_no TEXT,
	seat_no TEXT,
	train_name TEXT,
	current_location TEXT,
	description TEXT,
	file TEXT,
	category TEXT,
	complaint_description TEXT,
	department TEXT,
	status TEXT NOT NULL,
	resolution_text TEXT,
	resolution_image_url TEXT,
	is_archived BOOLEAN NOT NULL DEFAULT FALSE,
	resolved_at TIMESTAMPTZ,
	resolved_month TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints (status);
CREATE INDEX IF NOT EXISTS idx_complaints_resolved_month ON complaints (resolved_month);

CREATE TABLE IF NOT EXISTS activity_logs (
	id TEXT PRIMARY KEY,
	complaint_id TEXT NOT NULL,
	activity_type TEXT NOT NULL,
	action_description TEXT NOT NULL,
	actor TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_logs_complaint ON activity_logs (complaint_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Ping checks connectivity for the readiness check.
func (r *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.PingContext(ctx)
}

// Create inserts c and assigns its id.
func (r *PostgresStore) Create(ctx context.Context, c *models.Complaint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO complaints (`+complaintColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
`, id, c.UserID, c.TrainNo, c.PNRNo, c.CoachNo, c.SeatNo, c.TrainName, c.CurrentLocation,
		c.Description, c.File, c.Category, c.ComplaintDescription, c.Department, string(c.Status), c.ResolutionText,
		c.ResolutionImageURL, c.IsArchived, c.ResolvedAt, c.ResolvedMonth, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.WrapError(models.ErrPersistence, "insert complaint", err)
	}
	c.ID = id
	return nil
}

// FindByID returns the complaint or ErrNotFound.
func (r *PostgresStore) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.WrapError(models.ErrNotFound, "find complaint", fmt.Errorf("id=%s", id))
		}
		return nil, models.WrapError(models.ErrPersistence, "find complaint", err)
	}
	return &c, nil
}

// Save overwrites every mutable column of c.
func (r *PostgresStore) Save(ctx context.Context, c *models.Complaint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
UPDATE complaints
SET user_id = $2, train_no = $3, pnr_no = $4, coach_no = $5, seat_no = $6, train_name = $7,
	current_location = $8, description = $9, file = $10, category = $11, complaint_description = $12,
	department = $13, status = $14, resolution_text = $15, resolution_image_url = $16, is_archived = $17,
	resolved_at = $18, resolved_month = $19, updated_at = $20
WHERE id = $1
`, c.ID, c.UserID, c.TrainNo, c.PNRNo, c.CoachNo, c.SeatNo, c.TrainName,
		c.CurrentLocation, c.Description, c.File, c.Category, c.ComplaintDescription,
		c.Department, string(c.Status), c.ResolutionText, c.ResolutionImageURL, c.IsArchived,
		c.ResolvedAt, c.ResolvedMonth, c.UpdatedAt)
	if err != nil {
		return models.WrapError(models.ErrPersistence, "update complaint", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.WrapError(models.ErrPersistence, "update complaint rows affected", err)
	}
	if rows == 0 {
		return models.WrapError(models.ErrNotFound, "update complaint", fmt.Errorf("id=%s", c.ID))
	}
	return nil
}

// List returns every complaint in insertion order.
func (r *PostgresStore) List(ctx context.Context) ([]models.Complaint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY seq ASC`)
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "list complaints", err)
	}
	defer rows.Close()

	out := make([]models.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, models.WrapError(models.ErrPersistence, "scan complaint", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapError(models.ErrPersistence, "iterate complaints", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(s rowScanner) (models.Complaint, error) {
	var c models.Complaint
	err := s.Scan(&c.ID, &c.UserID, &c.TrainNo, &c.PNRNo, &c.CoachNo, &c.SeatNo, &c.TrainName, &c.CurrentLocation,
		&c.Description, &c.File, &c.Category, &c.ComplaintDescription, &c.Department, &c.Status, &c.ResolutionText,
		&c.ResolutionImageURL, &c.IsArchived, &c.ResolvedAt, &c.ResolvedMonth, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
