package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/services"
)

// EntryHandler handles expense recording and balance history requests.
type EntryHandler struct {
	entryService services.EntryServicer
	location     *time.Location
}

// NewEntryHandler creates a new EntryHandler. Date filters are read as
// calendar days in loc.
func NewEntryHandler(entryService services.EntryServicer, loc *time.Location) *EntryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EntryHandler{entryService: entryService, location: loc}
}

// RecordExpenseRequest represents the request payload for recording an expense.
type RecordExpenseRequest struct {
	Amount      Amount `json:"amount" swaggertype:"number" example:"12.50"`
	Category    string `json:"category" binding:"required,max=100" example:"Food"`
	Description string `json:"description" binding:"max=255" example:"Lunch"`
}

// ListEntriesQuery holds the filters and paging of a balance history request.
type ListEntriesQuery struct {
	pagination.PageRequest
	Kind     string `form:"kind" binding:"omitempty,entry_kind"`
	Category string `form:"category" binding:"max=100"`
	FromDate string `form:"from_date" binding:"omitempty,date_only"`
	ToDate   string `form:"to_date" binding:"omitempty,date_only"`
}

// RecordExpense handles recording an expense against an allowance.
// @Summary     Record an expense
// @Description Append an expense; spending past the limit is recorded as overspend
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Allowance ID"
// @Param       request body RecordExpenseRequest true "Expense details"
// @Success     201 {object} services.RecordResult "Expense recorded"
// @Failure     400 {object} ErrorResponse "Invalid amount or category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allowance not found"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /allowances/{id}/expenses [post]
func (h *EntryHandler) RecordExpense(c *gin.Context) {
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

	var req RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	amount, err := req.Amount.Decimal("amount")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.entryService.RecordExpense(c.Request.Context(), userID, allowanceID, req.Category, req.Description, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListEntries handles listing an allowance's balance history.
// @Summary     List balance history
// @Description Paginated entries of an allowance, oldest first by default
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Allowance ID"
// @Param       kind      query string false "Filter by kind (income/expense/allowance_savings/allocation_savings)"
// @Param       category  query string false "Filter by category"
// @Param       from_date query string false "First day to include (YYYY-MM-DD)"
// @Param       to_date   query string false "Last day to include (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       order     query string false "asc (default) or desc"
// @Success     200 {object} pagination.PageResponse[models.Entry] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allowance not found"
// @Router      /allowances/{id}/entries [get]
func (h *EntryHandler) ListEntries(c *gin.Context) {
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

	var q ListEntriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter := services.EntryFilter{Category: q.Category}
	if q.Kind != "" {
		kind := models.EntryKind(q.Kind)
		filter.Kind = &kind
	}
	if q.FromDate != "" {
		from, _ := time.ParseInLocation(time.DateOnly, q.FromDate, h.location)
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, _ := time.ParseInLocation(time.DateOnly, q.ToDate, h.location)
		if filter.FromDate != nil && to.Before(*filter.FromDate) {
			respondWithError(c, apperrors.WithDetails(apperrors.ErrInvalidDateRange, map[string]any{
				"from_date": q.FromDate,
				"to_date":   q.ToDate,
			}))
			return
		}
		// The store bound is exclusive; include the whole last day.
		to = to.AddDate(0, 0, 1)
		filter.ToDate = &to
	}

	result, err := h.entryService.ListEntries(c.Request.Context(), userID, allowanceID, filter, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategoryBreakdown handles totalling expenses per category.
// @Summary     Get spending by category
// @Description Expense totals per category, largest first
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Allowance ID"
// @Success     200 {object} map[string][]accounting.CategoryTotal "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Allowance not found"
// @Router      /allowances/{id}/categories [get]
func (h *EntryHandler) GetCategoryBreakdown(c *gin.Context) {
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

	totals, err := h.entryService.GetCategoryBreakdown(c.Request.Context(), userID, allowanceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals})
}
