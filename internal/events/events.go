// Package events announces committed ledger changes to downstream consumers
// such as the notification service.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Type names a ledger event.
type Type string

const (
	AllowanceFunded   Type = "allowance.funded"
	AllowanceToppedUp Type = "allowance.topped_up"
	ExpenseRecorded   Type = "expense.recorded"
	GoalFunded        Type = "goal.funded"
	GoalDeleted       Type = "goal.deleted"
)

// LedgerEvent describes one committed change.
type LedgerEvent struct {
	Type        Type            `json:"type"`
	UserID      string          `json:"user_id"`
	AllowanceID string          `json:"allowance_id,omitempty"`
	GoalID      string          `json:"goal_id,omitempty"`
	EntryID     string          `json:"entry_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ToJSON encodes the event for the wire.
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event published by ToJSON.
func FromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events after the change they describe has committed.
// A failed publish never undoes the change.
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}
