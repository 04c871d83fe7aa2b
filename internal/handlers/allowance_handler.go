package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitaka/internal/services"
)

// AllowanceHandler handles allowance funding and summary requests.
type AllowanceHandler struct {
	allowanceService services.AllowanceServicer
}

// NewAllowanceHandler creates a new AllowanceHandler.
func NewAllowanceHandler(allowanceService services.AllowanceServicer) *AllowanceHandler {
	return &AllowanceHandler{allowanceService: allowanceService}
}

// RecordFundingRequest represents the request payload for funding a new allowance.
type RecordFundingRequest struct {
	TotalAmount   Amount `json:"total_amount" swaggertype:"number" example:"1000.00"`
	SpendingLimit Amount `json:"spending_limit" swaggertype:"number" example:"600.00"`
	StartDate     string `json:"start_date" binding:"required,date_only" example:"2024-03-01"`
	EndDate       string `json:"end_date" binding:"required,date_only" example:"2024-03-31"`
}

// TopUpRequest represents the request payload for adding funds to an allowance.
// When new_spending_limit is omitted the limit keeps its share of the total.
type TopUpRequest struct {
	AddedAmount      Amount `json:"added_amount" swaggertype:"number" example:"250.00"`
	NewSpendingLimit Amount `json:"new_spending_limit" swaggertype:"number" example:"750.00"`
}

// RecordFunding handles funding a new allowance.
// @Summary     Fund an allowance
// @Description Create an allowance for a period and record its income entry
// @Tags        allowances
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecordFundingRequest true "Allowance details"
// @Success     201 {object} services.FundingResult "Allowance funded"
// @Failure     400 {object} ErrorResponse "Invalid amount, limit or date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /allowances [post]
func (h *AllowanceHandler) RecordFunding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	total, err := req.TotalAmount.Decimal("total_amount")
	if err != nil {
		respondWithError(c, err)
		return
	}
	limit, err := req.SpendingLimit.Decimal("spending_limit")
	if err != nil {
		respondWithError(c, err)
		return
	}
	// date_only has already validated both dates.
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	end, _ := time.Parse(time.DateOnly, req.EndDate)

	result, err := h.allowanceService.RecordFunding(c.Request.Context(), userID, total, limit, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RecordTopUp handles adding funds to an existing allowance.
// @Summary     Top up an allowance
// @Description Add funds to an allowance, optionally changing its spending limit
// @Tags        allowances
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string       true "Allowance ID"
// @Param       request body TopUpRequest true "Top-up details"
// @Success     200 {object} services.FundingResult "Allowance topped up"
// @Failure     400 {object} ErrorResponse "Invalid amount or limit"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allowance not found"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /allowances/{id}/top-up [put]
func (h *AllowanceHandler) RecordTopUp(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	allowanceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	added, err := req.AddedAmount.Decimal("added_amount")
	if err != nil {
		respondWithError(c, err)
		return
	}
	newLimit, err := req.NewSpendingLimit.OptionalDecimal("new_spending_limit")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.allowanceService.RecordTopUp(c.Request.Context(), userID, allowanceID, added, newLimit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAllowances handles listing the user's allowances.
// @Summary     List allowances
// @Description List the authenticated user's allowances, latest start date first
// @Tags        allowances
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Allowance "Allowances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /allowances [get]
func (h *AllowanceHandler) ListAllowances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	allowances, err := h.allowanceService.ListAllowances(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowances": allowances})
}

// GetAllowance handles retrieving one allowance.
// @Summary     Get allowance by ID
// @Tags        allowances
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Allowance ID"
// @Success     200 {object} map[string]models.Allowance "Allowance"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allowance not found"
// @Router      /allowances/{id} [get]
func (h *AllowanceHandler) GetAllowance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	allowanceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	allowance, err := h.allowanceService.GetAllowance(c.Request.Context(), userID, allowanceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowance": allowance})
}

// GetSummary handles computing the balances of one allowance.
// @Summary     Get allowance summary
// @Description Recompute remaining limit, allocation, balance and overspend from the ledger
// @Tags        allowances
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Allowance ID"
// @Success     200 {object} map[string]accounting.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allowance not found"
// @Router      /allowances/{id}/summary [get]
func (h *AllowanceHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	allowanceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.allowanceService.GetSummary(c.Request.Context(), userID, allowanceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetActiveSummary handles summarizing the allowance active today.
// @Summary     Get active allowance summary
// @Tags        allowances
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]accounting.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active allowance"
// @Router      /allowances/active [get]
func (h *AllowanceHandler) GetActiveSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.allowanceService.GetActiveSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetHistory handles summarizing past and future allowances.
// @Summary     Get allowance history
// @Description Summaries of every allowance that is not active today
// @Tags        allowances
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]accounting.Summary "Summaries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /allowances/history [get]
func (h *AllowanceHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summaries, err := h.allowanceService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}
