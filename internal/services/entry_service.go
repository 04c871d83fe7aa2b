package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/events"
	"pitaka/internal/lock"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/store"
)

// entryService records expenses and reads balance history.
type entryService struct {
	ledger
}

// NewEntryService creates a new EntryServicer.
func NewEntryService(st store.LedgerStore, locks *lock.Keyed, opts ...Option) EntryServicer {
	return &entryService{ledger: newLedger(st, locks, opts)}
}

// RecordExpense appends an expense to the allowance. Expenses may exceed the
// spending limit; the excess shows up as overspend.
func (s *entryService) RecordExpense(
	ctx context.Context,
	userID, allowanceID, category, description string,
	amount decimal.Decimal,
) (*RecordResult, error) {
	if err := validateAmount("amount", amount); err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required"),
			map[string]any{"field": "category"},
		)
	}

	unlock := s.locks.Lock(lock.AllowanceKey(allowanceID))
	defer unlock()

	allowance, err := ownedAllowance(ctx, s.store, userID, allowanceID)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		UserID:      userID,
		AllowanceID: ptr(allowanceID),
		Kind:        models.EntryKindExpense,
		Category:    category,
		Description: description,
		Amount:      amount,
	}
	if err := s.store.AppendEntry(ctx, entry); err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}

	summary, _, err := s.summarize(ctx, s.store, allowance)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("expense recorded",
		"user_id", userID,
		"allowance_id", allowanceID,
		"entry_id", entry.ID,
		"category", category,
		"amount", amount.String(),
	)
	s.publish(ctx, events.LedgerEvent{
		Type:        events.ExpenseRecorded,
		UserID:      userID,
		AllowanceID: allowanceID,
		EntryID:     entry.ID,
		Amount:      amount,
	})

	return &RecordResult{Entry: entry, Summary: summary}, nil
}

// ListEntries returns a page of the allowance's balance history.
func (s *entryService) ListEntries(
	ctx context.Context,
	userID, allowanceID string,
	filter EntryFilter,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Entry], error) {
	if _, err := ownedAllowance(ctx, s.store, userID, allowanceID); err != nil {
		return nil, err
	}
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown entry kind"),
			map[string]any{"field": "kind", "value": string(*filter.Kind)},
		)
	}
	if filter.FromDate != nil && filter.ToDate != nil && !filter.ToDate.After(*filter.FromDate) {
		return nil, apperrors.ErrInvalidDateRange
	}

	page.Defaults()
	entries, total, err := s.store.QueryEntries(ctx, store.EntryQuery{
		AllowanceID: allowanceID,
		Kind:        filter.Kind,
		Category:    filter.Category,
		FromDate:    filter.FromDate,
		ToDate:      filter.ToDate,
	}, page)
	if err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &result, nil
}

// GetCategoryBreakdown totals the allowance's expenses per category.
func (s *entryService) GetCategoryBreakdown(ctx context.Context, userID, allowanceID string) ([]accounting.CategoryTotal, error) {
	allowance, err := ownedAllowance(ctx, s.store, userID, allowanceID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, allowance.ID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrAllowanceNotFound)
	}
	return accounting.ExpensesByCategory(allowance.ID, entries), nil
}
