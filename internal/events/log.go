package events

import (
	"context"

	"pitaka/internal/logger"
)

// logPublisher records events in the application log. It is used when no
// broker is configured.
type logPublisher struct{}

// NewLogPublisher returns a Publisher that only logs.
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) Publish(_ context.Context, e LedgerEvent) error {
	logger.Get().Debugw("ledger event",
		"type", e.Type,
		"user_id", e.UserID,
		"allowance_id", e.AllowanceID,
		"goal_id", e.GoalID,
		"entry_id", e.EntryID,
		"amount", e.Amount.String(),
	)
	return nil
}

func (logPublisher) Close() error { return nil }
