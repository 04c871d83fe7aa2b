package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pitaka/internal/accounting"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/services"
)

func setupGoalRouter(handler *GoalHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/goals", handler.CreateGoal)
	auth.GET("/goals", handler.ListGoals)
	auth.GET("/goals/:id", handler.GetGoal)
	auth.GET("/goals/:id/entries", handler.GetGoalHistory)
	auth.POST("/goals/:id/fund", handler.FundGoal)
	auth.DELETE("/goals/:id", handler.DeleteGoal)
	return r
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockGoalService{
			createGoalFn: func(userID, title string, target decimal.Decimal) (*models.Goal, error) {
				return &models.Goal{Base: models.Base{ID: testGoalID}, UserID: userID, Title: title, TargetAmount: target}, nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "POST", "/goals", `{"title":"Laptop","target_amount":1200}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		goal := parseJSON(t, rec)["goal"].(map[string]interface{})
		if goal["title"] != "Laptop" || goal["target_amount"] != "1200" {
			t.Errorf("unexpected goal %v", goal)
		}
	})

	t.Run("returns 400 on missing title", func(t *testing.T) {
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}))

		rec := doRequest(r, "POST", "/goals", `{"target_amount":1200}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestGoalHandler_FundGoal(t *testing.T) {
	body := `{"allowance_id":"` + testAllowanceID + `","source_pool":"allocation_remainder","amount":"50.25"}`

	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockGoalService{
			fundGoalFn: func(_, goalID, allowanceID string, pool accounting.Pool, amount decimal.Decimal) (*services.GoalFundingResult, error) {
				if goalID != testGoalID || allowanceID != testAllowanceID {
					t.Errorf("unexpected ids %s / %s", goalID, allowanceID)
				}
				if pool != accounting.PoolAllocationRemainder {
					t.Errorf("expected allocation_remainder, got %s", pool)
				}
				return &services.GoalFundingResult{
					Goal:    &models.Goal{Base: models.Base{ID: goalID}, CurrentAmount: amount},
					Summary: accounting.Summary{AllowanceID: allowanceID},
				}, nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "POST", "/goals/"+testGoalID+"/fund", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		goal := parseJSON(t, rec)["goal"].(map[string]interface{})
		if goal["current_amount"] != "50.25" {
			t.Errorf("expected current_amount 50.25, got %v", goal["current_amount"])
		}
	})

	t.Run("returns 400 on unknown pool", func(t *testing.T) {
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}))

		rec := doRequest(r, "POST", "/goals/"+testGoalID+"/fund",
			`{"allowance_id":"`+testAllowanceID+`","source_pool":"piggy_bank","amount":5}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 422 with available bound", func(t *testing.T) {
		svc := &mockGoalService{
			fundGoalFn: func(string, string, string, accounting.Pool, decimal.Decimal) (*services.GoalFundingResult, error) {
				return nil, apperrors.WithDetails(apperrors.ErrInsufficientFunds, map[string]any{"available": "40"})
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "POST", "/goals/"+testGoalID+"/fund", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		errObj := assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_FUNDS")
		if errObj["details"].(map[string]interface{})["available"] != "40" {
			t.Errorf("expected available 40, got %v", errObj["details"])
		}
	})
}

func TestGoalHandler_DeleteGoal(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		deleted := ""
		svc := &mockGoalService{
			deleteGoalFn: func(_, goalID string) error {
				deleted = goalID
				return nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "DELETE", "/goals/"+testGoalID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != testGoalID {
			t.Errorf("expected %s deleted, got %q", testGoalID, deleted)
		}
		if parseJSON(t, rec)["message"] != "Goal deleted successfully" {
			t.Error("unexpected message")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockGoalService{
			deleteGoalFn: func(string, string) error { return apperrors.ErrGoalNotFound },
		}
		r := setupGoalRouter(NewGoalHandler(svc))

		rec := doRequest(r, "DELETE", "/goals/"+testGoalID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestGoalHandler_Reads(t *testing.T) {
	svc := &mockGoalService{
		listGoalsFn: func(string) ([]models.Goal, error) {
			return []models.Goal{{Title: "Trip"}, {Title: "Laptop"}}, nil
		},
		getGoalHistoryFn: func(string, string) ([]models.Entry, error) {
			return []models.Entry{{Kind: models.EntryKindAllowanceSavings}}, nil
		},
	}
	r := setupGoalRouter(NewGoalHandler(svc))

	rec := doRequest(r, "GET", "/goals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if goals := parseJSON(t, rec)["goals"].([]interface{}); len(goals) != 2 {
		t.Errorf("expected 2 goals, got %d", len(goals))
	}

	rec = doRequest(r, "GET", "/goals/"+testGoalID+"/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if entries := parseJSON(t, rec)["entries"].([]interface{}); len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestGoalHandler_GetGoal(t *testing.T) {
	svc := &mockGoalService{
		getGoalFn: func(_, goalID string) (*models.Goal, error) {
			return &models.Goal{
				Base:          models.Base{ID: goalID},
				Title:         "Trip",
				TargetAmount:  decimal.RequireFromString("400"),
				CurrentAmount: decimal.RequireFromString("100"),
			}, nil
		},
	}
	r := setupGoalRouter(NewGoalHandler(svc))

	rec := doRequest(r, "GET", "/goals/"+testGoalID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["progress"] != "25" {
		t.Errorf("expected progress 25, got %v", goal["progress"])
	}
	if goal["target_amount"] != "400" {
		t.Errorf("expected target_amount 400, got %v", goal["target_amount"])
	}
}
