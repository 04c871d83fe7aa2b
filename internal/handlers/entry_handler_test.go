package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/services"
)

func setupEntryRouter(handler *EntryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/allowances/:id/expenses", handler.RecordExpense)
	auth.GET("/allowances/:id/entries", handler.ListEntries)
	auth.GET("/allowances/:id/categories", handler.GetCategoryBreakdown)
	return r
}

func TestEntryHandler_RecordExpense(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockEntryService{
			recordExpenseFn: func(_, allowanceID, category, description string, amount decimal.Decimal) (*services.RecordResult, error) {
				if category != "Food" || description != "Lunch" {
					t.Errorf("unexpected category/description %q/%q", category, description)
				}
				return &services.RecordResult{
					Entry:   &models.Entry{AllowanceID: &allowanceID, Kind: models.EntryKindExpense, Category: category, Amount: amount},
					Summary: accounting.Summary{AllowanceID: allowanceID, TotalExpenses: amount},
				}, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, nil))

		rec := doRequest(r, "POST", "/allowances/"+testAllowanceID+"/expenses",
			`{"amount":12.5,"category":"Food","description":"Lunch"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		entry := result["entry"].(map[string]interface{})
		if entry["kind"] != "expense" {
			t.Errorf("expected kind expense, got %v", entry["kind"])
		}
		summary := result["summary"].(map[string]interface{})
		if summary["total_expenses"] != "12.5" {
			t.Errorf("expected total_expenses 12.5, got %v", summary["total_expenses"])
		}
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, nil))

		rec := doRequest(r, "POST", "/allowances/"+testAllowanceID+"/expenses", `{"amount":12.5}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on non-numeric amount", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, nil))

		rec := doRequest(r, "POST", "/allowances/"+testAllowanceID+"/expenses", `{"amount":"12,50","category":"Food"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})

	t.Run("returns 404 when allowance missing", func(t *testing.T) {
		svc := &mockEntryService{
			recordExpenseFn: func(string, string, string, string, decimal.Decimal) (*services.RecordResult, error) {
				return nil, apperrors.ErrAllowanceNotFound
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, nil))

		rec := doRequest(r, "POST", "/allowances/"+testAllowanceID+"/expenses", `{"amount":1,"category":"Food"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestEntryHandler_ListEntries(t *testing.T) {
	t.Run("maps filters", func(t *testing.T) {
		manila := time.FixedZone("PHT", 8*60*60)
		svc := &mockEntryService{
			listEntriesFn: func(_, _ string, filter services.EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error) {
				if filter.Kind == nil || *filter.Kind != models.EntryKindExpense {
					t.Errorf("expected expense kind, got %v", filter.Kind)
				}
				if filter.Category != "Food" {
					t.Errorf("expected category Food, got %q", filter.Category)
				}
				wantFrom := time.Date(2024, time.March, 1, 0, 0, 0, 0, manila)
				wantTo := time.Date(2024, time.March, 16, 0, 0, 0, 0, manila)
				if filter.FromDate == nil || !filter.FromDate.Equal(wantFrom) {
					t.Errorf("expected from %v, got %v", wantFrom, filter.FromDate)
				}
				if filter.ToDate == nil || !filter.ToDate.Equal(wantTo) {
					t.Errorf("expected exclusive to %v, got %v", wantTo, filter.ToDate)
				}
				if page.Page != 2 || page.PageSize != 5 || page.Order != "desc" {
					t.Errorf("unexpected page %+v", page)
				}
				resp := pagination.NewPageResponse([]models.Entry{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, manila))

		rec := doRequest(r, "GET", "/allowances/"+testAllowanceID+
			"/entries?kind=expense&category=Food&from_date=2024-03-01&to_date=2024-03-15&page=2&page_size=5&order=desc", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects reversed dates", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, time.UTC))

		rec := doRequest(r, "GET", "/allowances/"+testAllowanceID+"/entries?from_date=2024-03-05&to_date=2024-03-04", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		errObj := assertErrorCode(t, parseJSON(t, rec), "INVALID_DATE_RANGE")
		details, _ := errObj["details"].(map[string]interface{})
		if details["to_date"] != "2024-03-04" {
			t.Errorf("expected to_date detail, got %v", errObj["details"])
		}
	})

	t.Run("single day range", func(t *testing.T) {
		called := false
		svc := &mockEntryService{
			listEntriesFn: func(_, _ string, filter services.EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error) {
				called = true
				if !filter.ToDate.After(*filter.FromDate) {
					t.Errorf("expected exclusive end after start, got %v..%v", filter.FromDate, filter.ToDate)
				}
				resp := pagination.NewPageResponse([]models.Entry{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, time.UTC))

		rec := doRequest(r, "GET", "/allowances/"+testAllowanceID+"/entries?from_date=2024-03-05&to_date=2024-03-05", "")
		if rec.Code != http.StatusOK || !called {
			t.Fatalf("expected 200 from the service, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, nil))

		rec := doRequest(r, "GET", "/allowances/"+testAllowanceID+"/entries?kind=refund", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("rejects oversized page", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, nil))

		rec := doRequest(r, "GET", "/allowances/"+testAllowanceID+"/entries?page_size=500", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestEntryHandler_GetCategoryBreakdown(t *testing.T) {
	svc := &mockEntryService{
		getCategoryBreakdownFn: func(string, string) ([]accounting.CategoryTotal, error) {
			return []accounting.CategoryTotal{
				{Category: "Food", Total: decimal.NewFromInt(65), Count: 2},
			}, nil
		},
	}
	r := setupEntryRouter(NewEntryHandler(svc, nil))

	rec := doRequest(r, "GET", "/allowances/"+testAllowanceID+"/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	categories := parseJSON(t, rec)["categories"].([]interface{})
	first := categories[0].(map[string]interface{})
	if first["category"] != "Food" || first["total"] != "65" {
		t.Errorf("unexpected breakdown %v", first)
	}
}
