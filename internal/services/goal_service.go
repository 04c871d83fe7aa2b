package services

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/events"
	"pitaka/internal/lock"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/store"
)

// goalService manages savings goals and funds them from allowance pools.
type goalService struct {
	ledger
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(st store.LedgerStore, locks *lock.Keyed, opts ...Option) GoalServicer {
	return &goalService{ledger: newLedger(st, locks, opts)}
}

// CreateGoal creates an unfunded goal.
func (s *goalService) CreateGoal(ctx context.Context, userID, title string, targetAmount decimal.Decimal) (*models.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required"),
			map[string]any{"field": "title"},
		)
	}
	if err := validateAmount("target_amount", targetAmount); err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:        userID,
		Title:         title,
		TargetAmount:  targetAmount,
		CurrentAmount: decimal.Zero,
	}
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, storageError(err, apperrors.ErrGoalNotFound)
	}

	logger.Get().Infow("goal created",
		"user_id", userID,
		"goal_id", goal.ID,
		"target_amount", targetAmount.String(),
	)
	return goal, nil
}

// GetGoal returns a goal if it belongs to the user.
func (s *goalService) GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	return ownedGoal(ctx, s.store, userID, goalID)
}

// ListGoals returns the user's goals.
func (s *goalService) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrGoalNotFound)
	}
	return goals, nil
}

// GetGoalHistory returns the savings entries that funded the goal, oldest first.
func (s *goalService) GetGoalHistory(ctx context.Context, userID, goalID string) ([]models.Entry, error) {
	if _, err := ownedGoal(ctx, s.store, userID, goalID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListGoalEntries(ctx, goalID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrGoalNotFound)
	}
	return entries, nil
}

// FundGoal moves amount from the allowance's pool into the goal. The
// availability check and both writes happen under the allowance lock in a
// single transaction, so concurrent fundings can never overdraw a pool.
func (s *goalService) FundGoal(
	ctx context.Context,
	userID, goalID, allowanceID string,
	pool accounting.Pool,
	amount decimal.Decimal,
) (*GoalFundingResult, error) {
	if !pool.Valid() {
		return nil, apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown source pool"),
			map[string]any{"field": "source_pool", "value": string(pool)},
		)
	}
	if err := validateAmount("amount", amount); err != nil {
		return nil, err
	}

	unlock := s.locks.LockAll(lock.AllowanceKey(allowanceID), lock.GoalKey(goalID))
	defer unlock()

	var result GoalFundingResult
	err := s.store.Atomic(ctx, func(tx store.LedgerStore) error {
		goal, err := ownedGoal(ctx, tx, userID, goalID)
		if err != nil {
			return err
		}
		allowance, err := ownedAllowance(ctx, tx, userID, allowanceID)
		if err != nil {
			return err
		}

		summary, entries, err := s.summarize(ctx, tx, allowance)
		if err != nil {
			return err
		}
		available := summary.Available(pool)
		if amount.GreaterThan(available) {
			return apperrors.WithDetails(apperrors.ErrInsufficientFunds, map[string]any{
				"source_pool": string(pool),
				"available":   available.String(),
				"requested":   amount.String(),
			})
		}

		entry := &models.Entry{
			UserID:      userID,
			AllowanceID: ptr(allowanceID),
			Kind:        pool.EntryKind(),
			Description: goal.Title,
			Amount:      amount,
			GoalID:      ptr(goalID),
		}
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return storageError(err, apperrors.ErrGoalNotFound)
		}
		if err := tx.IncrementGoal(ctx, goalID, amount); err != nil {
			return storageError(err, apperrors.ErrGoalNotFound)
		}
		goal.CurrentAmount = goal.CurrentAmount.Add(amount)

		result = GoalFundingResult{
			Goal:    goal,
			Entry:   entry,
			Summary: accounting.Summarize(allowance, append(entries, *entry), s.now()),
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, apperrors.ErrGoalNotFound)
	}

	logger.Get().Infow("goal funded",
		"user_id", userID,
		"goal_id", goalID,
		"allowance_id", allowanceID,
		"source_pool", string(pool),
		"amount", amount.String(),
	)
	s.publish(ctx, events.LedgerEvent{
		Type:        events.GoalFunded,
		UserID:      userID,
		AllowanceID: allowanceID,
		GoalID:      goalID,
		EntryID:     result.Entry.ID,
		Amount:      amount,
	})

	return &result, nil
}

// DeleteGoal removes the goal and its savings entries. The funded amounts
// become available again in the pools they were drawn from.
func (s *goalService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	goal, unlock, err := s.lockFundingAllowances(ctx, userID, goalID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return storageError(err, apperrors.ErrGoalNotFound)
	}

	logger.Get().Infow("goal deleted",
		"user_id", userID,
		"goal_id", goalID,
		"released_amount", goal.CurrentAmount.String(),
	)
	s.publish(ctx, events.LedgerEvent{
		Type:   events.GoalDeleted,
		UserID: userID,
		GoalID: goalID,
		Amount: goal.CurrentAmount,
	})
	return nil
}

// lockFundingAllowances takes the lock of every allowance that funded the
// goal, in id order, followed by the goal lock. A funding from another
// allowance may land before the locks are held; the set is then listed again.
func (s *goalService) lockFundingAllowances(ctx context.Context, userID, goalID string) (*models.Goal, func(), error) {
	if _, err := ownedGoal(ctx, s.store, userID, goalID); err != nil {
		return nil, nil, err
	}
	ids, err := s.fundingAllowanceIDs(ctx, goalID)
	if err != nil {
		return nil, nil, err
	}

	for {
		keys := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			keys = append(keys, lock.AllowanceKey(id))
		}
		keys = append(keys, lock.GoalKey(goalID))
		unlock := s.locks.LockAll(keys...)

		goal, err := ownedGoal(ctx, s.store, userID, goalID)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		current, err := s.fundingAllowanceIDs(ctx, goalID)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if slices.Equal(ids, current) {
			return goal, unlock, nil
		}
		unlock()
		ids = current
	}
}

// fundingAllowanceIDs returns the sorted distinct allowance ids behind the
// goal's savings entries.
func (s *goalService) fundingAllowanceIDs(ctx context.Context, goalID string) ([]string, error) {
	entries, err := s.store.ListGoalEntries(ctx, goalID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrGoalNotFound)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.AllowanceID != nil {
			ids = append(ids, *e.AllowanceID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
