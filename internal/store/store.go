// Package store is the ledger's persistence boundary. The accounting engine
// never queries storage itself; services read allowances and entries through
// LedgerStore and append through it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrUnavailable wraps every other storage failure. Operations that
	// return it have committed nothing.
	ErrUnavailable = errors.New("store: ledger unavailable")
)

// EntryQuery filters the balance history of one allowance.
type EntryQuery struct {
	AllowanceID string
	Kind        *models.EntryKind
	Category    string
	FromDate    *time.Time
	ToDate      *time.Time
}

// LedgerStore reads and appends ledger records.
type LedgerStore interface {
	GetAllowance(ctx context.Context, id string) (*models.Allowance, error)
	// ListAllowances returns the user's allowances, latest start date first.
	ListAllowances(ctx context.Context, userID string) ([]models.Allowance, error)
	CreateAllowance(ctx context.Context, allowance *models.Allowance) error
	UpdateAllowanceFunding(ctx context.Context, id string, newTotal, newLimit decimal.Decimal) error

	// ListEntries returns every entry of the allowance, oldest first.
	ListEntries(ctx context.Context, allowanceID string) ([]models.Entry, error)
	QueryEntries(ctx context.Context, q EntryQuery, page pagination.PageRequest) ([]models.Entry, int64, error)
	AppendEntry(ctx context.Context, entry *models.Entry) error
	// ListGoalEntries returns the savings entries tagged with the goal, oldest first.
	ListGoalEntries(ctx context.Context, goalID string) ([]models.Entry, error)

	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, id string) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]models.Goal, error)
	IncrementGoal(ctx context.Context, id string, amount decimal.Decimal) error
	// DeleteGoal removes the goal together with its savings entries.
	DeleteGoal(ctx context.Context, id string) error

	// Atomic runs fn against a store bound to a single transaction. Nothing
	// fn wrote is visible unless fn returns nil and the commit succeeds.
	Atomic(ctx context.Context, fn func(LedgerStore) error) error
}
