package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	"pitaka/internal/logger"
	"pitaka/internal/middleware"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/services"
	"pitaka/internal/validator"
)

const (
	testUserID      = "0190d3a2-7c4e-7b1a-9f00-000000000001"
	testAllowanceID = "0190d3a2-7c4e-7b1a-9f00-0000000000a1"
	testGoalID      = "0190d3a2-7c4e-7b1a-9f00-0000000000b1"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

// --- mock services ---

type mockAllowanceService struct {
	recordFundingFn    func(userID string, total, limit decimal.Decimal, start, end time.Time) (*services.FundingResult, error)
	recordTopUpFn      func(userID, allowanceID string, added decimal.Decimal, newLimit *decimal.Decimal) (*services.FundingResult, error)
	getAllowanceFn     func(userID, allowanceID string) (*models.Allowance, error)
	listAllowancesFn   func(userID string) ([]models.Allowance, error)
	getSummaryFn       func(userID, allowanceID string) (*accounting.Summary, error)
	getActiveSummaryFn func(userID string) (*accounting.Summary, error)
	getHistoryFn       func(userID string) ([]accounting.Summary, error)
}

func (m *mockAllowanceService) RecordFunding(_ context.Context, userID string, total, limit decimal.Decimal, start, end time.Time) (*services.FundingResult, error) {
	if m.recordFundingFn != nil {
		return m.recordFundingFn(userID, total, limit, start, end)
	}
	return &services.FundingResult{}, nil
}

func (m *mockAllowanceService) RecordTopUp(_ context.Context, userID, allowanceID string, added decimal.Decimal, newLimit *decimal.Decimal) (*services.FundingResult, error) {
	if m.recordTopUpFn != nil {
		return m.recordTopUpFn(userID, allowanceID, added, newLimit)
	}
	return &services.FundingResult{}, nil
}

func (m *mockAllowanceService) GetAllowance(_ context.Context, userID, allowanceID string) (*models.Allowance, error) {
	if m.getAllowanceFn != nil {
		return m.getAllowanceFn(userID, allowanceID)
	}
	return &models.Allowance{}, nil
}

func (m *mockAllowanceService) ListAllowances(_ context.Context, userID string) ([]models.Allowance, error) {
	if m.listAllowancesFn != nil {
		return m.listAllowancesFn(userID)
	}
	return []models.Allowance{}, nil
}

func (m *mockAllowanceService) GetSummary(_ context.Context, userID, allowanceID string) (*accounting.Summary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, allowanceID)
	}
	return &accounting.Summary{}, nil
}

func (m *mockAllowanceService) GetActiveSummary(_ context.Context, userID string) (*accounting.Summary, error) {
	if m.getActiveSummaryFn != nil {
		return m.getActiveSummaryFn(userID)
	}
	return &accounting.Summary{}, nil
}

func (m *mockAllowanceService) GetHistory(_ context.Context, userID string) ([]accounting.Summary, error) {
	if m.getHistoryFn != nil {
		return m.getHistoryFn(userID)
	}
	return []accounting.Summary{}, nil
}

var _ services.AllowanceServicer = (*mockAllowanceService)(nil)

type mockEntryService struct {
	recordExpenseFn        func(userID, allowanceID, category, description string, amount decimal.Decimal) (*services.RecordResult, error)
	listEntriesFn          func(userID, allowanceID string, filter services.EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error)
	getCategoryBreakdownFn func(userID, allowanceID string) ([]accounting.CategoryTotal, error)
}

func (m *mockEntryService) RecordExpense(_ context.Context, userID, allowanceID, category, description string, amount decimal.Decimal) (*services.RecordResult, error) {
	if m.recordExpenseFn != nil {
		return m.recordExpenseFn(userID, allowanceID, category, description, amount)
	}
	return &services.RecordResult{}, nil
}

func (m *mockEntryService) ListEntries(_ context.Context, userID, allowanceID string, filter services.EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error) {
	if m.listEntriesFn != nil {
		return m.listEntriesFn(userID, allowanceID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Entry{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockEntryService) GetCategoryBreakdown(_ context.Context, userID, allowanceID string) ([]accounting.CategoryTotal, error) {
	if m.getCategoryBreakdownFn != nil {
		return m.getCategoryBreakdownFn(userID, allowanceID)
	}
	return []accounting.CategoryTotal{}, nil
}

var _ services.EntryServicer = (*mockEntryService)(nil)

type mockGoalService struct {
	createGoalFn     func(userID, title string, target decimal.Decimal) (*models.Goal, error)
	getGoalFn        func(userID, goalID string) (*models.Goal, error)
	listGoalsFn      func(userID string) ([]models.Goal, error)
	getGoalHistoryFn func(userID, goalID string) ([]models.Entry, error)
	fundGoalFn       func(userID, goalID, allowanceID string, pool accounting.Pool, amount decimal.Decimal) (*services.GoalFundingResult, error)
	deleteGoalFn     func(userID, goalID string) error
}

func (m *mockGoalService) CreateGoal(_ context.Context, userID, title string, target decimal.Decimal) (*models.Goal, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, title, target)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) GetGoal(_ context.Context, userID, goalID string) (*models.Goal, error) {
	if m.getGoalFn != nil {
		return m.getGoalFn(userID, goalID)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) ListGoals(_ context.Context, userID string) ([]models.Goal, error) {
	if m.listGoalsFn != nil {
		return m.listGoalsFn(userID)
	}
	return []models.Goal{}, nil
}

func (m *mockGoalService) GetGoalHistory(_ context.Context, userID, goalID string) ([]models.Entry, error) {
	if m.getGoalHistoryFn != nil {
		return m.getGoalHistoryFn(userID, goalID)
	}
	return []models.Entry{}, nil
}

func (m *mockGoalService) FundGoal(_ context.Context, userID, goalID, allowanceID string, pool accounting.Pool, amount decimal.Decimal) (*services.GoalFundingResult, error) {
	if m.fundGoalFn != nil {
		return m.fundGoalFn(userID, goalID, allowanceID, pool, amount)
	}
	return &services.GoalFundingResult{}, nil
}

func (m *mockGoalService) DeleteGoal(_ context.Context, userID, goalID string) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, goalID)
	}
	return nil
}

var _ services.GoalServicer = (*mockGoalService)(nil)

// --- helpers ---

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) map[string]interface{} {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
	return errObj
}
