package repository

import (
	"context"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
)

// CountByStatus returns complaint totals keyed by status.
func (r *PostgresStore) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "count by status", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int64)
	for rows.Next() {
		var (
			status models.Status
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, models.WrapError(models.ErrPersistence, "scan status count", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CategoryDistribution returns complaint totals per ML category, largest first.
func (r *PostgresStore) CategoryDistribution(ctx context.Context) ([]models.CategoryDistribution, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
SELECT category, COUNT(*) AS count
FROM complaints
WHERE category IS NOT NULL
GROUP BY category
ORDER BY count DESC, category ASC
`)
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "category distribution", err)
	}
	defer rows.Close()

	cats := make([]models.CategoryDistribution, 0)
	for rows.Next() {
		var c models.CategoryDistribution
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, models.WrapError(models.ErrPersistence, "scan category", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// MonthlyResolutions returns resolved totals per YYYY-MM, newest first.
func (r *PostgresStore) MonthlyResolutions(ctx context.Context) ([]models.MonthlyResolution, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
SELECT resolved_month, COUNT(*) AS count
FROM complaints
WHERE status = $1 AND resolved_month IS NOT NULL
GROUP BY resolved_month
ORDER BY resolved_month DESC
`, string(models.StatusResolved))
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "monthly resolutions", err)
	}
	defer rows.Close()

	out := make([]models.MonthlyResolution, 0)
	for rows.Next() {
		var m models.MonthlyResolution
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, models.WrapError(models.ErrPersistence, "scan monthly resolution", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
