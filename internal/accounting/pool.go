package accounting

import (
	"github.com/shopspring/decimal"

	"pitaka/internal/models"
)

// Pool names the allowance pool a goal is funded from.
type Pool string

const (
	// PoolSpendingRemainder is what is left of the spending limit.
	PoolSpendingRemainder Pool = "spending_remainder"
	// PoolAllocationRemainder is what is left of the allocation.
	PoolAllocationRemainder Pool = "allocation_remainder"
)

// Valid reports whether p is a known pool.
func (p Pool) Valid() bool {
	return p == PoolSpendingRemainder || p == PoolAllocationRemainder
}

// EntryKind returns the savings entry kind that debits p.
func (p Pool) EntryKind() models.EntryKind {
	if p == PoolAllocationRemainder {
		return models.EntryKindAllocationSavings
	}
	return models.EntryKindAllowanceSavings
}

// Available returns how much can still be withdrawn from pool.
func (s Summary) Available(pool Pool) decimal.Decimal {
	if pool == PoolAllocationRemainder {
		return s.RemainingAllocation
	}
	return s.RemainingLimit
}

// ProportionalLimit scales limit so that its share of newTotal matches its
// share of total, rounded to cents. A zero total yields a zero limit.
func ProportionalLimit(total, limit, newTotal decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return newTotal.Mul(limit).Div(total).Round(2)
}
