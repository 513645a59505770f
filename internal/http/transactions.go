package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expenseflow/internal/domain"
	"expenseflow/internal/repository"
	"expenseflow/internal/service"
)

type transactionRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Type            string          `json:"type" binding:"required"`
	Category        string          `json:"category" binding:"required"`
	TransactionDate string          `json:"transactionDate" binding:"required"`
	Notes           string          `json:"notes"`
}

type TransactionResponse struct {
	ID              int64           `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	TransactionDate string          `json:"transactionDate"`
	Notes           string          `json:"notes,omitempty"`
	UserID          int64           `json:"userId"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

type TransactionPageResponse struct {
	Content       []TransactionResponse `json:"content"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalElements int64                 `json:"totalElements"`
	TotalPages    int                   `json:"totalPages"`
}

type MonthlySummaryResponse struct {
	Month              string                     `json:"month"`
	TotalIncome        decimal.Decimal            `json:"totalIncome"`
	TotalExpenses      decimal.Decimal            `json:"totalExpenses"`
	NetSavings         decimal.Decimal            `json:"netSavings"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expensesByCategory"`
	IncomeByCategory   map[string]decimal.Decimal `json:"incomeByCategory"`
	TotalTransactions  int                        `json:"totalTransactions"`
}

func (h *Handler) createTransaction(c *gin.Context) {
	input, ok := h.bindTransactionInput(c)
	if !ok {
		return
	}

	txn, err := h.transactions.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transactionToResponse(*txn))
}

func (h *Handler) listTransactions(c *gin.Context) {
	opts := service.ListOptions{
		SortBy:     c.DefaultQuery("sortBy", "transactionDate"),
		Descending: true,
	}

	if raw := c.Query("type"); raw != "" {
		t, err := domain.ParseTransactionType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Type = &t
	}
	if raw := c.Query("category"); raw != "" {
		cat, err := domain.ParseCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Category = &cat
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 || size > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}
	opts.Page = page
	opts.Size = size

	if !repository.ValidSortField(opts.SortBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sortBy field"})
		return
	}

	switch strings.ToUpper(c.DefaultQuery("direction", "DESC")) {
	case "ASC":
		opts.Descending = false
	case "DESC":
		opts.Descending = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort direction"})
		return
	}

	pageResult, err := h.transactions.List(c.Request.Context(), currentUserID(c), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := TransactionPageResponse{
		Content:       make([]TransactionResponse, len(pageResult.Content)),
		Page:          pageResult.Page,
		Size:          pageResult.Size,
		TotalElements: pageResult.TotalElements,
		TotalPages:    pageResult.TotalPages,
	}
	for i := range pageResult.Content {
		resp.Content[i] = transactionToResponse(pageResult.Content[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTransaction(c *gin.Context) {
	id, ok := transactionID(c)
	if !ok {
		return
	}

	txn, err := h.transactions.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionToResponse(*txn))
}

func (h *Handler) updateTransaction(c *gin.Context) {
	id, ok := transactionID(c)
	if !ok {
		return
	}
	input, ok := h.bindTransactionInput(c)
	if !ok {
		return
	}

	txn, err := h.transactions.Update(c.Request.Context(), currentUserID(c), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionToResponse(*txn))
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	id, ok := transactionID(c)
	if !ok {
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) monthlySummary(c *gin.Context) {
	month := domain.MonthOf(time.Now())
	if raw := c.Query("month"); raw != "" {
		parsed, err := domain.ParseMonth(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		month = parsed
	}

	summary, err := h.transactions.MonthlySummary(c.Request.Context(), currentUserID(c), month)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MonthlySummaryResponse{
		Month:              summary.Month.String(),
		TotalIncome:        summary.TotalIncome,
		TotalExpenses:      summary.TotalExpenses,
		NetSavings:         summary.NetSavings,
		ExpensesByCategory: summary.ExpensesByCategory,
		IncomeByCategory:   summary.IncomeByCategory,
		TotalTransactions:  summary.TotalTransactions,
	})
}

func (h *Handler) bindTransactionInput(c *gin.Context) (service.TransactionInput, bool) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.TransactionInput{}, false
	}

	txnType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.TransactionInput{}, false
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.TransactionInput{}, false
	}
	date, err := time.Parse(domain.DateFormat, req.TransactionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction date, expected YYYY-MM-DD"})
		return service.TransactionInput{}, false
	}

	return service.TransactionInput{
		Amount:      req.Amount,
		Description: req.Description,
		Type:        txnType,
		Category:    category,
		Date:        date,
		Notes:       req.Notes,
	}, true
}

func transactionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return 0, false
	}
	return id, true
}

func transactionToResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              txn.ID,
		Amount:          txn.Amount,
		Description:     txn.Description,
		Type:            string(txn.Type),
		Category:        string(txn.Category),
		TransactionDate: txn.Date.Format(domain.DateFormat),
		Notes:           txn.Notes,
		UserID:          txn.UserID,
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       txn.UpdatedAt.Format(time.RFC3339),
	}
}
