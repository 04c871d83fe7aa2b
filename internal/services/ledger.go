package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/events"
	"pitaka/internal/lock"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/store"
)

// Option configures a service.
type Option func(*ledger)

// WithClock replaces the wall clock used for active-period checks.
func WithClock(now func() time.Time) Option {
	return func(l *ledger) { l.now = now }
}

// WithPublisher sets the publisher that announces committed changes.
func WithPublisher(p events.Publisher) Option {
	return func(l *ledger) { l.publisher = p }
}

// ledger holds what every service shares: the store, the per-allowance
// write locks, the event publisher and the clock.
type ledger struct {
	store     store.LedgerStore
	locks     *lock.Keyed
	publisher events.Publisher
	now       func() time.Time
}

func newLedger(st store.LedgerStore, locks *lock.Keyed, opts []Option) ledger {
	l := ledger{
		store:     st,
		locks:     locks,
		publisher: events.NewLogPublisher(),
		now:       time.Now,
	}
	if l.locks == nil {
		l.locks = &lock.Keyed{}
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// storageError maps store failures onto the application taxonomy. notFound
// is the error to report for store.ErrNotFound.
func storageError(err error, notFound *apperrors.AppError) error {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return notFound
	default:
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
}

// ownedAllowance loads the allowance and hides it from other users.
func ownedAllowance(ctx context.Context, st store.LedgerStore, userID, allowanceID string) (*models.Allowance, error) {
	allowance, err := st.GetAllowance(ctx, allowanceID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}
	if allowance.UserID != userID {
		return nil, apperrors.ErrAllowanceNotFound
	}
	return allowance, nil
}

// ownedGoal loads the goal and hides it from other users.
func ownedGoal(ctx context.Context, st store.LedgerStore, userID, goalID string) (*models.Goal, error) {
	goal, err := st.GetGoal(ctx, goalID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrGoalNotFound)
	}
	if goal.UserID != userID {
		return nil, apperrors.ErrGoalNotFound
	}
	return goal, nil
}

// summarize recomputes the allowance summary from the ledger and returns the
// entries it was computed from.
func (l *ledger) summarize(ctx context.Context, st store.LedgerStore, allowance *models.Allowance) (accounting.Summary, []models.Entry, error) {
	entries, err := st.ListEntries(ctx, allowance.ID)
	if err != nil {
		return accounting.Summary{}, nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}
	return accounting.Summarize(allowance, entries, l.now()), entries, nil
}

// publish announces a committed change. Failures are logged only.
func (l *ledger) publish(ctx context.Context, event events.LedgerEvent) {
	event.OccurredAt = l.now().UTC()
	if err := l.publisher.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish ledger event",
			"type", event.Type,
			"user_id", event.UserID,
			"error", err,
		)
	}
}

// maxAmount is the smallest magnitude that no longer fits a DECIMAL(20,2)
// column.
var maxAmount = decimal.New(1, 18)

// Exponent bounds checked before any rescaling arithmetic. Values outside
// them are either too large to store or carry far more digits than cents.
const (
	maxAmountExponent = 18
	minAmountExponent = -20
)

// exponentInRange reports whether d can be compared and rounded cheaply.
func exponentInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxAmountExponent && exp >= minAmountExponent
}

// tooLarge reports whether d does not fit a DECIMAL(20,2) column. d must not
// have an exponent below minAmountExponent.
func tooLarge(d decimal.Decimal) bool {
	return d.Exponent() > maxAmountExponent || !d.Abs().LessThan(maxAmount)
}

// amountTooLargeError reports field as exceeding max. The offending value is
// not echoed back.
func amountTooLargeError(field string, max decimal.Decimal) error {
	return apperrors.WithDetails(
		apperrors.WithMessage(apperrors.ErrInvalidAmount, field+" is too large"),
		map[string]any{"field": field, "max": max.String()},
	)
}

// validateAmount requires a strictly positive amount in whole cents that
// fits the ledger's storage precision.
func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		details := map[string]any{"field": field}
		if exponentInRange(amount) {
			details["value"] = amount.String()
		}
		return apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidAmount, field+" must be greater than zero"),
			details,
		)
	}
	if amount.Exponent() < minAmountExponent {
		return apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidAmount, field+" must have at most two decimal places"),
			map[string]any{"field": field},
		)
	}
	if tooLarge(amount) {
		return amountTooLargeError(field, maxAmount)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidAmount, field+" must have at most two decimal places"),
			map[string]any{"field": field, "value": amount.String()},
		)
	}
	return nil
}

// validateLimit requires 0 <= limit <= total in whole cents. When positive
// is set a zero limit is rejected too.
func validateLimit(limit, total decimal.Decimal, positive bool) error {
	if !exponentInRange(limit) {
		return apperrors.WithDetails(apperrors.ErrInvalidLimit, map[string]any{
			"field": "spending_limit",
			"max":   total.String(),
		})
	}
	tooLow := limit.IsNegative() || (positive && limit.IsZero())
	if tooLow || limit.GreaterThan(total) || !limit.Equal(limit.Round(2)) {
		return apperrors.WithDetails(apperrors.ErrInvalidLimit, map[string]any{
			"field": "spending_limit",
			"value": limit.String(),
			"max":   total.String(),
		})
	}
	return nil
}

func ptr(s string) *string { return &s }
