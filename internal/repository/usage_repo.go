package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brad-luo/web-tools/internal/dbx"
)

// UsageRepository defines the interface for daily usage counters.
type UsageRepository interface {
	// Get returns the counter for (email, day); zero when no row exists.
	Get(ctx context.Context, email, day string) (int, error)

	// IncrementBelow adds one to the counter for (email, day) only when the
	// current count is below ceiling. ok is false when nothing was added.
	IncrementBelow(ctx context.Context, email, day string, ceiling int) (count int, ok bool, err error)
}

type usageRepo struct {
	db dbx.DBTX
}

// NewUsageRepository creates a new daily usage repository.
func NewUsageRepository(db dbx.DBTX) UsageRepository {
	return &usageRepo{db: db}
}

// Get returns the current count for a day.
func (r *usageRepo) Get(ctx context.Context, email, day string) (int, error) {
	query := `
		SELECT count FROM daily_usage
		WHERE user_email = $1 AND usage_date = $2::date`

	var count int
	err := r.db.QueryRowContext(ctx, query, email, day).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementBelow performs the check and the increment in one statement.
// The row lock taken by ON CONFLICT serializes concurrent callers, so at
// most ceiling increments succeed per (email, day).
func (r *usageRepo) IncrementBelow(ctx context.Context, email, day string, ceiling int) (int, bool, error) {
	query := `
		INSERT INTO daily_usage (user_email, usage_date, count)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (user_email, usage_date)
		DO UPDATE SET count = daily_usage.count + 1
		WHERE daily_usage.count < $3
		RETURNING count`

	var count int
	err := r.db.QueryRowContext(ctx, query, email, day, ceiling).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

