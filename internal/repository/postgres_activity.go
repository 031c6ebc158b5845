package repository

import (
	"context"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
)

// AppendActivity inserts one activity entry.
func (r *PostgresStore) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO activity_logs (id, complaint_id, activity_type, action_description, actor, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, entry.ID, entry.ComplaintID, string(entry.ActivityType), entry.ActionDescription, entry.Actor, entry.CreatedAt)
	if err != nil {
		return models.WrapError(models.ErrPersistence, "insert activity", err)
	}
	return nil
}

// ListActivity returns a complaint's trail, newest first.
func (r *PostgresStore) ListActivity(ctx context.Context, complaintID string, limit int) ([]models.ActivityLog, error) {
	return r.queryActivity(ctx, `
SELECT id, complaint_id, activity_type, action_description, actor, created_at
FROM activity_logs
WHERE complaint_id = $1
ORDER BY created_at DESC
LIMIT $2
`, complaintID, limit)
}

// RecentActivity returns the latest entries across all complaints.
func (r *PostgresStore) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return r.queryActivity(ctx, `
SELECT id, complaint_id, activity_type, action_description, actor, created_at
FROM activity_logs
ORDER BY created_at DESC
LIMIT $1
`, limit)
}

func (r *PostgresStore) queryActivity(ctx context.Context, query string, args ...interface{}) ([]models.ActivityLog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "list activity", err)
	}
	defer rows.Close()

	logs := make([]models.ActivityLog, 0)
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.ComplaintID, &l.ActivityType, &l.ActionDescription, &l.Actor, &l.CreatedAt); err != nil {
			return nil, models.WrapError(models.ErrPersistence, "scan activity", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapError(models.ErrPersistence, "iterate activity", err)
	}
	return logs, nil
}
