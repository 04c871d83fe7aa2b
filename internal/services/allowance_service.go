package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pitaka/internal/accounting"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/events"
	"pitaka/internal/lock"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/store"
)

// historyWorkers bounds how many past allowances are summarized at once.
const historyWorkers = 4

// allowanceService records allowance funding and derives summaries.
type allowanceService struct {
	ledger
}

// NewAllowanceService creates a new AllowanceServicer. Services that write to
// the same ledger must share locks.
func NewAllowanceService(st store.LedgerStore, locks *lock.Keyed, opts ...Option) AllowanceServicer {
	return &allowanceService{ledger: newLedger(st, locks, opts)}
}

// RecordFunding creates a new allowance and its income entry.
func (s *allowanceService) RecordFunding(
	ctx context.Context,
	userID string,
	totalAmount, spendingLimit decimal.Decimal,
	startDate, endDate time.Time,
) (*FundingResult, error) {
	if err := validateAmount("total_amount", totalAmount); err != nil {
		return nil, err
	}
	if err := validateLimit(spendingLimit, totalAmount, true); err != nil {
		return nil, err
	}
	startDate = accounting.TruncateDate(startDate)
	endDate = accounting.TruncateDate(endDate)
	if endDate.Before(startDate) {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidDateRange, map[string]any{
			"start_date": startDate.Format(time.DateOnly),
			"end_date":   endDate.Format(time.DateOnly),
		})
	}

	allowance := &models.Allowance{
		UserID:        userID,
		TotalAmount:   totalAmount,
		SpendingLimit: spendingLimit,
		StartDate:     startDate,
		EndDate:       endDate,
	}
	var entry *models.Entry
	err := s.store.Atomic(ctx, func(tx store.LedgerStore) error {
		if err := tx.CreateAllowance(ctx, allowance); err != nil {
			return storageError(err, apperrors.ErrAllowanceNotFound)
		}
		entry = &models.Entry{
			UserID:      userID,
			AllowanceID: ptr(allowance.ID),
			Kind:        models.EntryKindIncome,
			Description: "Allowance",
			Amount:      totalAmount,
		}
		return storageError(tx.AppendEntry(ctx, entry), apperrors.ErrAllowanceNotFound)
	})
	if err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}

	logger.Get().Infow("allowance funded",
		"user_id", userID,
		"allowance_id", allowance.ID,
		"total_amount", totalAmount.String(),
		"spending_limit", spendingLimit.String(),
	)
	s.publish(ctx, events.LedgerEvent{
		Type:        events.AllowanceFunded,
		UserID:      userID,
		AllowanceID: allowance.ID,
		EntryID:     entry.ID,
		Amount:      totalAmount,
	})

	return &FundingResult{
		Allowance: allowance,
		Entry:     entry,
		Summary:   accounting.Summarize(allowance, []models.Entry{*entry}, s.now()),
	}, nil
}

// RecordTopUp adds funds to an existing allowance and appends an income
// entry for the added amount.
func (s *allowanceService) RecordTopUp(
	ctx context.Context,
	userID, allowanceID string,
	addedAmount decimal.Decimal,
	newSpendingLimit *decimal.Decimal,
) (*FundingResult, error) {
	if err := validateAmount("added_amount", addedAmount); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(lock.AllowanceKey(allowanceID))
	defer unlock()

	var result FundingResult
	err := s.store.Atomic(ctx, func(tx store.LedgerStore) error {
		allowance, err := ownedAllowance(ctx, tx, userID, allowanceID)
		if err != nil {
			return err
		}

		newTotal := allowance.TotalAmount.Add(addedAmount)
		if tooLarge(newTotal) {
			return amountTooLargeError("added_amount", maxAmount.Sub(allowance.TotalAmount))
		}
		newLimit := accounting.ProportionalLimit(allowance.TotalAmount, allowance.SpendingLimit, newTotal)
		if newSpendingLimit != nil {
			newLimit = *newSpendingLimit
		}
		if err := validateLimit(newLimit, newTotal, false); err != nil {
			return err
		}

		if err := tx.UpdateAllowanceFunding(ctx, allowanceID, newTotal, newLimit); err != nil {
			return storageError(err, apperrors.ErrAllowanceNotFound)
		}
		allowance.TotalAmount = newTotal
		allowance.SpendingLimit = newLimit

		entry := &models.Entry{
			UserID:      userID,
			AllowanceID: ptr(allowanceID),
			Kind:        models.EntryKindIncome,
			Description: "Top-up",
			Amount:      addedAmount,
		}
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return storageError(err, apperrors.ErrAllowanceNotFound)
		}

		summary, _, err := s.summarize(ctx, tx, allowance)
		if err != nil {
			return err
		}
		result = FundingResult{Allowance: allowance, Entry: entry, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}

	logger.Get().Infow("allowance topped up",
		"user_id", userID,
		"allowance_id", allowanceID,
		"added_amount", addedAmount.String(),
		"total_amount", result.Allowance.TotalAmount.String(),
		"spending_limit", result.Allowance.SpendingLimit.String(),
	)
	s.publish(ctx, events.LedgerEvent{
		Type:        events.AllowanceToppedUp,
		UserID:      userID,
		AllowanceID: allowanceID,
		EntryID:     result.Entry.ID,
		Amount:      addedAmount,
	})

	return &result, nil
}

// GetAllowance returns an allowance if it belongs to the user.
func (s *allowanceService) GetAllowance(ctx context.Context, userID, allowanceID string) (*models.Allowance, error) {
	return ownedAllowance(ctx, s.store, userID, allowanceID)
}

// ListAllowances returns the user's allowances, latest start date first.
func (s *allowanceService) ListAllowances(ctx context.Context, userID string) ([]models.Allowance, error) {
	allowances, err := s.store.ListAllowances(ctx, userID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}
	return allowances, nil
}

// GetSummary recomputes the summary of one allowance.
func (s *allowanceService) GetSummary(ctx context.Context, userID, allowanceID string) (*accounting.Summary, error) {
	allowance, err := ownedAllowance(ctx, s.store, userID, allowanceID)
	if err != nil {
		return nil, err
	}
	summary, _, err := s.summarize(ctx, s.store, allowance)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetActiveSummary summarizes the active allowance that started most
// recently.
func (s *allowanceService) GetActiveSummary(ctx context.Context, userID string) (*accounting.Summary, error) {
	allowances, err := s.ListAllowances(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range allowances {
		if !accounting.IsActive(allowances[i].StartDate, allowances[i].EndDate, now) {
			continue
		}
		summary, _, err := s.summarize(ctx, s.store, &allowances[i])
		if err != nil {
			return nil, err
		}
		return &summary, nil
	}
	return nil, apperrors.ErrNoActiveAllowance
}

// GetHistory summarizes every allowance that is not active today, latest
// start date first.
func (s *allowanceService) GetHistory(ctx context.Context, userID string) ([]accounting.Summary, error) {
	allowances, err := s.ListAllowances(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	past := make([]*models.Allowance, 0, len(allowances))
	for i := range allowances {
		if !accounting.IsActive(allowances[i].StartDate, allowances[i].EndDate, now) {
			past = append(past, &allowances[i])
		}
	}

	summaries := make([]accounting.Summary, len(past))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyWorkers)
	for i, allowance := range past {
		g.Go(func() error {
			entries, err := s.store.ListEntries(gctx, allowance.ID)
			if err != nil {
				return storageError(err, apperrors.ErrAllowanceNotFound)
			}
			summaries[i] = accounting.Summarize(allowance, entries, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
