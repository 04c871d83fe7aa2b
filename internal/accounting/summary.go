// Package accounting derives the financial state of an allowance from its
// ledger. Everything here is a pure function of its arguments: nothing is
// cached, nothing touches storage, and the clock is always passed in.
//
// An allowance has two pools. The spending pool is the spending limit; the
// allocation pool is everything above it. Expenses beyond the spending limit
// are charged against the allocation pool, so remaining allocation shrinks by
// the overspend.
package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"pitaka/internal/models"
)

// Summary is the derived snapshot of one allowance. It is never persisted.
type Summary struct {
	AllowanceID            string          `json:"allowance_id"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	SpendingLimit          decimal.Decimal `json:"spending_limit"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                time.Time       `json:"end_date"`
	TotalExpenses          decimal.Decimal `json:"total_expenses"`
	AllowanceSavingsTotal  decimal.Decimal `json:"allowance_savings_total"`
	AllocationSavingsTotal decimal.Decimal `json:"allocation_savings_total"`
	Overspend              decimal.Decimal `json:"overspend"`
	RemainingLimit         decimal.Decimal `json:"remaining_limit"`
	RemainingAllocation    decimal.Decimal `json:"remaining_allocation"`
	RemainingBalance       decimal.Decimal `json:"remaining_balance"`
	IsActive               bool            `json:"is_active"`
}

// Totals are the per-kind sums of an allowance's debit entries.
type Totals struct {
	Expenses          decimal.Decimal
	AllowanceSavings  decimal.Decimal
	AllocationSavings decimal.Decimal
}

// Tally sums the debit entries that belong to allowanceID. Income entries and
// entries tied to other allowances (or to none) are ignored.
func Tally(allowanceID string, entries []models.Entry) Totals {
	t := Totals{
		Expenses:          decimal.Zero,
		AllowanceSavings:  decimal.Zero,
		AllocationSavings: decimal.Zero,
	}
	for i := range entries {
		e := &entries[i]
		if !e.BelongsTo(allowanceID) {
			continue
		}
		switch e.Kind {
		case models.EntryKindExpense:
			t.Expenses = t.Expenses.Add(e.Amount)
		case models.EntryKindAllowanceSavings:
			t.AllowanceSavings = t.AllowanceSavings.Add(e.Amount)
		case models.EntryKindAllocationSavings:
			t.AllocationSavings = t.AllocationSavings.Add(e.Amount)
		}
	}
	return t
}

// Summarize computes the summary of allowance from its entries as of now.
func Summarize(allowance *models.Allowance, entries []models.Entry, now time.Time) Summary {
	t := Tally(allowance.ID, entries)
	total := allowance.TotalAmount
	limit := allowance.SpendingLimit

	overspend := clamp(t.Expenses.Sub(limit))

	return Summary{
		AllowanceID:            allowance.ID,
		TotalAmount:            total,
		SpendingLimit:          limit,
		StartDate:              allowance.StartDate,
		EndDate:                allowance.EndDate,
		TotalExpenses:          t.Expenses,
		AllowanceSavingsTotal:  t.AllowanceSavings,
		AllocationSavingsTotal: t.AllocationSavings,
		Overspend:              overspend,
		RemainingLimit:         clamp(limit.Sub(t.Expenses).Sub(t.AllowanceSavings)),
		RemainingAllocation:    clamp(allowance.AllocationAmount().Sub(t.AllocationSavings).Sub(overspend)),
		RemainingBalance:       clamp(total.Sub(t.Expenses).Sub(t.AllowanceSavings)),
		IsActive:               IsActive(allowance.StartDate, allowance.EndDate, now),
	}
}

// clamp floors d at zero.
func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
