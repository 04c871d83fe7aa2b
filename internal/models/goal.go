package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Goal is a savings target funded from an allowance's remainder pools.
// CurrentAmount only ever grows.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string          `gorm:"type:varchar(100);not null" json:"title"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"current_amount"`
}

// Progress returns the funded fraction of the target as a percentage, capped at 100.
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	return decimal.Min(pct, decimal.NewFromInt(100))
}

// MarshalJSON renders the goal with its derived progress percentage.
func (g Goal) MarshalJSON() ([]byte, error) {
	type goal Goal
	return json.Marshal(struct {
		goal
		Progress decimal.Decimal `json:"progress"`
	}{goal: goal(g), Progress: g.Progress()})
}

// AllModels lists every persisted model, in dependency order.
var AllModels = []any{
	&Allowance{},
	&Goal{},
	&Entry{},
}
