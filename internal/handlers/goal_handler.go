package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitaka/internal/accounting"
	"pitaka/internal/services"
)

// GoalHandler handles savings goal requests.
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=100" example:"New laptop"`
	TargetAmount Amount `json:"target_amount" swaggertype:"number" example:"1200.00"`
}

// FundGoalRequest represents the request payload for moving money into a goal.
type FundGoalRequest struct {
	AllowanceID string `json:"allowance_id" binding:"required,uuid"`
	SourcePool  string `json:"source_pool" binding:"required,source_pool" enums:"spending_remainder,allocation_remainder"`
	Amount      Amount `json:"amount" swaggertype:"number" example:"50.00"`
}

// CreateGoal handles the creation of a new goal.
// @Summary     Create a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} map[string]models.Goal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	target, err := req.TargetAmount.Decimal("target_amount")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, req.Title, target)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// ListGoals handles listing the user's goals.
// @Summary     List goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Goal "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goals [get]
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoal handles retrieving one goal.
// @Summary     Get goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string]models.Goal "Goal"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// GetGoalHistory handles listing the entries that funded a goal.
// @Summary     Get goal funding history
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string][]models.Entry "Savings entries"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/entries [get]
func (h *GoalHandler) GetGoalHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.goalService.GetGoalHistory(c.Request.Context(), userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// FundGoal handles moving money from an allowance pool into a goal.
// @Summary     Fund a goal
// @Description Move money from the spending or allocation remainder of an allowance into a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Goal ID"
// @Param       request body FundGoalRequest true "Funding details"
// @Success     200 {object} services.GoalFundingResult "Goal funded"
// @Failure     400 {object} ErrorResponse "Invalid input or amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal or allowance not found"
// @Failure     422 {object} ErrorResponse "Insufficient funds in the selected pool"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /goals/{id}/fund [post]
func (h *GoalHandler) FundGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FundGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	amount, err := req.Amount.Decimal("amount")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.goalService.FundGoal(
		c.Request.Context(), userID, goalID, req.AllowanceID, accounting.Pool(req.SourcePool), amount,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteGoal handles deleting a goal and its savings entries.
// @Summary     Delete a goal
// @Description Delete a goal; its saved amounts return to the pools they came from
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Goal deleted successfully"})
}
