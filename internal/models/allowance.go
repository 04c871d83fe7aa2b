package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allowance is a funded budget period. The part of TotalAmount above
// SpendingLimit is the allocation pool.
type Allowance struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	SpendingLimit decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"spending_limit"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time       `gorm:"type:date;not null" json:"end_date"`
}

// AllocationAmount returns the portion of the allowance beyond the spending limit.
func (a *Allowance) AllocationAmount() decimal.Decimal {
	return a.TotalAmount.Sub(a.SpendingLimit)
}
