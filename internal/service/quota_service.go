package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/repository"
)

// DefaultDailyLimit is the number of metered actions allowed per UTC day.
const DefaultDailyLimit = 10

// QuotaLedger enforces a daily ceiling on a metered action per email.
type QuotaLedger interface {
	// CheckAndConsume spends one unit of today's allowance when any is left.
	// A denial is reported through Allowed, not as an error.
	CheckAndConsume(ctx context.Context, email string) (*models.QuotaDecision, error)

	// Peek reports today's usage without changing it.
	Peek(ctx context.Context, email string) (*models.QuotaStatus, error)

	// Limit returns the daily ceiling.
	Limit() int
}

type quotaService struct {
	usage   repository.UsageRepository
	ceiling int
	now     func() time.Time
	logger  *slog.Logger
}

// NewQuotaService creates a ledger with the given daily ceiling.
func NewQuotaService(usage repository.UsageRepository, ceiling int, logger *slog.Logger) (QuotaLedger, error) {
	return NewQuotaServiceWithClock(usage, ceiling, logger, time.Now)
}

// NewQuotaServiceWithClock creates a ledger that reads the time from now.
// This is primarily used for testing.
func NewQuotaServiceWithClock(usage repository.UsageRepository, ceiling int, logger *slog.Logger, now func() time.Time) (QuotaLedger, error) {
	if ceiling <= 0 {
		return nil, fmt.Errorf("daily ceiling must be positive, got %d", ceiling)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &quotaService{usage: usage, ceiling: ceiling, now: now, logger: logger}, nil
}

func (s *quotaService) Limit() int {
	return s.ceiling
}

func (s *quotaService) CheckAndConsume(ctx context.Context, email string) (*models.QuotaDecision, error) {
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	day := models.DayKey(s.now())

	count, ok, err := s.usage.IncrementBelow(ctx, email, day, s.ceiling)
	if err != nil {
		quotaDecisionsTotal.WithLabelValues(QuotaError).Inc()
		s.logger.Error("quota increment failed", slog.String("day", day), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if !ok {
		used, err := s.usage.Get(ctx, email, day)
		if err != nil {
			quotaDecisionsTotal.WithLabelValues(QuotaError).Inc()
			s.logger.Error("quota read failed", slog.String("day", day), slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		quotaDecisionsTotal.WithLabelValues(QuotaDenied).Inc()
		return &models.QuotaDecision{Allowed: false, Used: used, Remaining: 0, Limit: s.ceiling}, nil
	}

	quotaDecisionsTotal.WithLabelValues(QuotaAllowed).Inc()
	remaining := s.ceiling - count
	if remaining < 0 {
		remaining = 0
	}
	return &models.QuotaDecision{Allowed: true, Used: count, Remaining: remaining, Limit: s.ceiling}, nil
}

func (s *quotaService) Peek(ctx context.Context, email string) (*models.QuotaStatus, error) {
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	day := models.DayKey(s.now())

	used, err := s.usage.Get(ctx, email, day)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	status := models.NewQuotaStatus(used, s.ceiling)
	return &status, nil
}

// Compile-time check to ensure quotaService implements QuotaLedger.
var _ QuotaLedger = (*quotaService)(nil)
