package accounting

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"pitaka/internal/models"
)

// CategoryTotal is the sum of expenses recorded under one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// ExpensesByCategory groups the expense entries of allowanceID by category,
// largest total first, ties broken by category name.
func ExpensesByCategory(allowanceID string, entries []models.Entry) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for i := range entries {
		e := &entries[i]
		if e.Kind != models.EntryKindExpense || !e.BelongsTo(allowanceID) {
			continue
		}
		idx, ok := index[e.Category]
		if !ok {
			idx = len(out)
			index[e.Category] = idx
			out = append(out, CategoryTotal{Category: e.Category, Total: decimal.Zero})
		}
		out[idx].Total = out[idx].Total.Add(e.Amount)
		out[idx].Count++
	}

	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if out == nil {
		out = []CategoryTotal{}
	}
	return out
}
