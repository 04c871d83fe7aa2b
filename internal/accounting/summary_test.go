package accounting

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitaka/internal/models"
)

const allowanceID = "0192f0a6-0000-7000-8000-000000000001"

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func allowance(total, limit string) *models.Allowance {
	return &models.Allowance{
		Base:          models.Base{ID: allowanceID},
		TotalAmount:   d(total),
		SpendingLimit: d(limit),
		StartDate:     Date(2025, time.March, 1),
		EndDate:       Date(2025, time.March, 31),
	}
}

func entry(kind models.EntryKind, amount string) models.Entry {
	id := allowanceID
	return models.Entry{AllowanceID: &id, Kind: kind, Amount: d(amount), Category: "food"}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name           string
		total, limit   string
		entries        []models.Entry
		expenses       string
		overspend      string
		remainingLim   string
		remainingAlloc string
		remainingBal   string
	}{
		{
			name: "no entries", total: "1000", limit: "600",
			expenses: "0", overspend: "0", remainingLim: "600", remainingAlloc: "400", remainingBal: "1000",
		},
		{
			name: "expense within limit", total: "1000", limit: "600",
			entries:  []models.Entry{entry(models.EntryKindExpense, "250.50")},
			expenses: "250.50", overspend: "0", remainingLim: "349.50", remainingAlloc: "400", remainingBal: "749.50",
		},
		{
			name: "overspend cannibalizes allocation", total: "1000", limit: "600",
			entries:  []models.Entry{entry(models.EntryKindExpense, "700")},
			expenses: "700", overspend: "100", remainingLim: "0", remainingAlloc: "300", remainingBal: "300",
		},
		{
			name: "overspend beyond allocation clamps to zero", total: "1000", limit: "600",
			entries:  []models.Entry{entry(models.EntryKindExpense, "1200")},
			expenses: "1200", overspend: "600", remainingLim: "0", remainingAlloc: "0", remainingBal: "0",
		},
		{
			name: "savings debit their own pools", total: "1000", limit: "600",
			entries: []models.Entry{
				entry(models.EntryKindExpense, "100"),
				entry(models.EntryKindAllowanceSavings, "200"),
				entry(models.EntryKindAllocationSavings, "150"),
			},
			expenses: "100", overspend: "0", remainingLim: "300", remainingAlloc: "250", remainingBal: "700",
		},
		{
			name: "income entries do not debit", total: "1000", limit: "600",
			entries:  []models.Entry{entry(models.EntryKindIncome, "1000")},
			expenses: "0", overspend: "0", remainingLim: "600", remainingAlloc: "400", remainingBal: "1000",
		},
		{
			name: "zero total", total: "0", limit: "0",
			entries:  []models.Entry{entry(models.EntryKindExpense, "10")},
			expenses: "10", overspend: "10", remainingLim: "0", remainingAlloc: "0", remainingBal: "0",
		},
		{
			name: "zero limit makes every expense overspend", total: "500", limit: "0",
			entries:  []models.Entry{entry(models.EntryKindExpense, "120")},
			expenses: "120", overspend: "120", remainingLim: "0", remainingAlloc: "380", remainingBal: "380",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(allowance(tt.total, tt.limit), tt.entries, now)

			assert.Equal(t, allowanceID, s.AllowanceID)
			assertDecimal(t, tt.expenses, s.TotalExpenses, "total_expenses")
			assertDecimal(t, tt.overspend, s.Overspend, "overspend")
			assertDecimal(t, tt.remainingLim, s.RemainingLimit, "remaining_limit")
			assertDecimal(t, tt.remainingAlloc, s.RemainingAllocation, "remaining_allocation")
			assertDecimal(t, tt.remainingBal, s.RemainingBalance, "remaining_balance")
			assert.True(t, s.IsActive)
		})
	}
}

func TestSummarize_IgnoresForeignEntries(t *testing.T) {
	other := "0192f0a6-0000-7000-8000-000000000002"
	entries := []models.Entry{
		{AllowanceID: &other, Kind: models.EntryKindExpense, Amount: d("300")},
		{AllowanceID: nil, Kind: models.EntryKindExpense, Amount: d("300")},
		entry(models.EntryKindExpense, "50"),
	}

	s := Summarize(allowance("1000", "600"), entries, now)

	assertDecimal(t, "50", s.TotalExpenses, "total_expenses")
	assertDecimal(t, "550", s.RemainingLimit, "remaining_limit")
}

func TestSummarize_CentsDoNotDrift(t *testing.T) {
	entries := make([]models.Entry, 0, 1000)
	for range 1000 {
		entries = append(entries, entry(models.EntryKindExpense, "0.10"))
	}

	s := Summarize(allowance("1000", "600"), entries, now)

	assertDecimal(t, "100", s.TotalExpenses, "total_expenses")
	assertDecimal(t, "500", s.RemainingLimit, "remaining_limit")
}

func TestSummarize_OrderIndependentAndRepeatable(t *testing.T) {
	entries := []models.Entry{
		entry(models.EntryKindExpense, "12.34"),
		entry(models.EntryKindExpense, "650.01"),
		entry(models.EntryKindAllowanceSavings, "0.99"),
		entry(models.EntryKindAllocationSavings, "45.45"),
		entry(models.EntryKindIncome, "1000"),
	}
	a := allowance("1000", "600")
	first := Summarize(a, entries, now)
	again := Summarize(a, entries, now)
	require.Equal(t, first, again)

	rng := rand.New(rand.NewSource(7))
	for range 20 {
		shuffled := append([]models.Entry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		s := Summarize(a, shuffled, now)
		assertDecimal(t, first.RemainingAllocation.String(), s.RemainingAllocation, "remaining_allocation")
		assertDecimal(t, first.RemainingBalance.String(), s.RemainingBalance, "remaining_balance")
		assertDecimal(t, first.Overspend.String(), s.Overspend, "overspend")
	}
}

func TestSummarize_WithinLimitAllocationIsExact(t *testing.T) {
	for _, exp := range []string{"0", "1", "299.99", "600"} {
		entries := []models.Entry{
			entry(models.EntryKindExpense, exp),
			entry(models.EntryKindAllocationSavings, "25"),
		}
		s := Summarize(allowance("1000", "600"), entries, now)

		assert.True(t, s.Overspend.IsZero(), "expenses %s", exp)
		assertDecimal(t, "375", s.RemainingAllocation, "remaining_allocation")
	}
}

func TestAvailable(t *testing.T) {
	s := Summarize(allowance("1000", "600"), []models.Entry{entry(models.EntryKindExpense, "100")}, now)

	assertDecimal(t, "500", s.Available(PoolSpendingRemainder), "spending")
	assertDecimal(t, "400", s.Available(PoolAllocationRemainder), "allocation")
}

func TestPool(t *testing.T) {
	assert.True(t, PoolSpendingRemainder.Valid())
	assert.True(t, PoolAllocationRemainder.Valid())
	assert.False(t, Pool("checking").Valid())
	assert.Equal(t, models.EntryKindAllowanceSavings, PoolSpendingRemainder.EntryKind())
	assert.Equal(t, models.EntryKindAllocationSavings, PoolAllocationRemainder.EntryKind())
}

func TestProportionalLimit(t *testing.T) {
	assertDecimal(t, "900", ProportionalLimit(d("1000"), d("600"), d("1500")), "ratio preserved")
	assertDecimal(t, "0", ProportionalLimit(d("0"), d("0"), d("500")), "zero total")
	assertDecimal(t, "333.33", ProportionalLimit(d("300"), d("100"), d("1000")), "rounded to cents")
}
