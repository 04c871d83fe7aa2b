package testutil

import (
	"testing"
	"time"

	"pitaka/internal/models"
	"pitaka/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewUserID returns a fresh user id. Users live in the identity service, so
// tests only need distinct ids.
func NewUserID() string {
	return uuid.New()
}

// Dec parses a decimal literal, failing loudly on typos in test tables.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestAllowance creates an allowance that is active today, spanning
// thirty days either side, with the given total and limit.
func CreateTestAllowance(t *testing.T, db *gorm.DB, userID, total, limit string) *models.Allowance {
	t.Helper()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return CreateTestAllowanceForPeriod(t, db, userID, total, limit, today.AddDate(0, 0, -30), today.AddDate(0, 0, 30))
}

// CreateTestAllowanceForPeriod creates an allowance for the given inclusive dates.
func CreateTestAllowanceForPeriod(t *testing.T, db *gorm.DB, userID, total, limit string, start, end time.Time) *models.Allowance {
	t.Helper()

	allowance := &models.Allowance{
		UserID:        userID,
		TotalAmount:   Dec(total),
		SpendingLimit: Dec(limit),
		StartDate:     start,
		EndDate:       end,
	}
	if err := db.Create(allowance).Error; err != nil {
		t.Fatalf("failed to create test allowance: %v", err)
	}
	return allowance
}

// CreateTestEntry appends an entry of the given kind and amount to the allowance.
func CreateTestEntry(t *testing.T, db *gorm.DB, allowance *models.Allowance, kind models.EntryKind, amount string) *models.Entry {
	t.Helper()

	allowanceID := allowance.ID
	entry := &models.Entry{
		UserID:      allowance.UserID,
		AllowanceID: &allowanceID,
		Kind:        kind,
		Amount:      Dec(amount),
	}
	if kind == models.EntryKindExpense {
		entry.Category = "Food"
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// CreateTestGoal creates an unfunded goal with the given target.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID, target string) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Title:         "Test Goal " + uuid.New()[:8],
		TargetAmount:  Dec(target),
		CurrentAmount: decimal.Zero,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
