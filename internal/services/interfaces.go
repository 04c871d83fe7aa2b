package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// FundingResult is returned by operations that fund an allowance.
type FundingResult struct {
	Allowance *models.Allowance  `json:"allowance"`
	Entry     *models.Entry      `json:"entry"`
	Summary   accounting.Summary `json:"summary"`
}

// AllowanceServicer records allowance funding and derives allowance summaries.
type AllowanceServicer interface {
	RecordFunding(ctx context.Context, userID string, totalAmount, spendingLimit decimal.Decimal, startDate, endDate time.Time) (*FundingResult, error)
	// RecordTopUp adds funds to an allowance. A nil newSpendingLimit keeps the
	// limit's share of the total.
	RecordTopUp(ctx context.Context, userID, allowanceID string, addedAmount decimal.Decimal, newSpendingLimit *decimal.Decimal) (*FundingResult, error)
	GetAllowance(ctx context.Context, userID, allowanceID string) (*models.Allowance, error)
	ListAllowances(ctx context.Context, userID string) ([]models.Allowance, error)
	GetSummary(ctx context.Context, userID, allowanceID string) (*accounting.Summary, error)
	GetActiveSummary(ctx context.Context, userID string) (*accounting.Summary, error)
	// GetHistory summarizes every allowance that is not active today.
	GetHistory(ctx context.Context, userID string) ([]accounting.Summary, error)
}

// EntryFilter holds optional filter parameters for listing balance history.
// FromDate is inclusive and ToDate exclusive, so ToDate must come after FromDate.
type EntryFilter struct {
	Kind     *models.EntryKind
	Category string
	FromDate *time.Time
	ToDate   *time.Time
}

// RecordResult is returned after an entry is appended.
type RecordResult struct {
	Entry   *models.Entry      `json:"entry"`
	Summary accounting.Summary `json:"summary"`
}

// EntryServicer records expenses and reads the balance history.
type EntryServicer interface {
	RecordExpense(ctx context.Context, userID, allowanceID, category, description string, amount decimal.Decimal) (*RecordResult, error)
	ListEntries(ctx context.Context, userID, allowanceID string, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error)
	GetCategoryBreakdown(ctx context.Context, userID, allowanceID string) ([]accounting.CategoryTotal, error)
}

// GoalFundingResult is returned after money moves into a goal.
type GoalFundingResult struct {
	Goal    *models.Goal       `json:"goal"`
	Entry   *models.Entry      `json:"entry"`
	Summary accounting.Summary `json:"summary"`
}

// GoalServicer manages savings goals and moves money into them.
type GoalServicer interface {
	CreateGoal(ctx context.Context, userID, title string, targetAmount decimal.Decimal) (*models.Goal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]models.Goal, error)
	GetGoalHistory(ctx context.Context, userID, goalID string) ([]models.Entry, error)
	FundGoal(ctx context.Context, userID, goalID, allowanceID string, pool accounting.Pool, amount decimal.Decimal) (*GoalFundingResult, error)
	// DeleteGoal removes the goal and its savings entries, returning the
	// funded amounts to the pools they came from.
	DeleteGoal(ctx context.Context, userID, goalID string) error
}
