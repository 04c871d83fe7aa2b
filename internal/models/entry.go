package models

import "github.com/shopspring/decimal"

// EntryKind identifies what a balance-history entry records. Amounts are
// magnitudes; the kind implies the direction.
type EntryKind string

const (
	// EntryKindIncome marks an allowance funding or top-up event.
	EntryKindIncome EntryKind = "income"
	// EntryKindExpense is day-to-day spending charged to the spending limit.
	EntryKindExpense EntryKind = "expense"
	// EntryKindAllowanceSavings moves money from the spending remainder into a goal.
	EntryKindAllowanceSavings EntryKind = "allowance_savings"
	// EntryKindAllocationSavings moves money from the allocation remainder into a goal.
	EntryKindAllocationSavings EntryKind = "allocation_savings"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindIncome, EntryKindExpense, EntryKindAllowanceSavings, EntryKindAllocationSavings:
		return true
	}
	return false
}

// Entry is an immutable balance-history record. CreatedAt is authoritative
// for chronological ordering.
type Entry struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AllowanceID *string         `gorm:"type:uuid;index" json:"allowance_id,omitempty"`
	Kind        EntryKind       `gorm:"type:varchar(32);not null" json:"kind"`
	Category    string          `gorm:"type:varchar(100)" json:"category,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	GoalID      *string         `gorm:"type:uuid;index" json:"goal_id,omitempty"`
}

// BelongsTo reports whether the entry is tied to the given allowance.
func (e *Entry) BelongsTo(allowanceID string) bool {
	return e.AllowanceID != nil && *e.AllowanceID == allowanceID
}
