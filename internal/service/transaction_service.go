package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expenseflow/internal/domain"
	"expenseflow/internal/repository"
)

// ErrTransactionNotFound covers both absent transactions and transactions
// owned by a different user, so foreign records are indistinguishable
// from missing ones.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionInput carries the mutable fields of a transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Description string
	Type        domain.TransactionType
	Category    domain.Category
	Date        time.Time
	Notes       string
}

// ListOptions narrows and pages a transaction listing.
type ListOptions struct {
	Type       *domain.TransactionType
	Category   *domain.Category
	Page       int
	Size       int
	SortBy     string
	Descending bool
}

// TransactionPage is one page of a user's transactions.
type TransactionPage struct {
	Content       []domain.Transaction
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

// MonthlySummary aggregates one calendar month of a user's transactions.
type MonthlySummary struct {
	Month              domain.Month
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	NetSavings         decimal.Decimal
	ExpensesByCategory map[string]decimal.Decimal
	IncomeByCategory   map[string]decimal.Decimal
	TotalTransactions  int
}

// TransactionService coordinates transaction operations scoped to the
// authenticated user. Every method takes the caller's user id explicitly.
type TransactionService interface {
	Create(ctx context.Context, userID int64, in TransactionInput) (*domain.Transaction, error)
	Get(ctx context.Context, userID, id int64) (*domain.Transaction, error)
	List(ctx context.Context, userID int64, opts ListOptions) (*TransactionPage, error)
	Update(ctx context.Context, userID, id int64, in TransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	MonthlySummary(ctx context.Context, userID int64, month domain.Month) (*MonthlySummary, error)
}

type transactionService struct {
	transactions repository.TransactionRepository
	users        repository.UserRepository
}

func NewTransactionService(transactions repository.TransactionRepository, users repository.UserRepository) TransactionService {
	return &transactionService{
		transactions: transactions,
		users:        users,
	}
}

func (s *transactionService) Create(ctx context.Context, userID int64, in TransactionInput) (*domain.Transaction, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		UserID:      userID,
		Amount:      in.Amount,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Date:        in.Date,
		Notes:       in.Notes,
	}
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if _, err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) Get(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

func (s *transactionService) List(ctx context.Context, userID int64, opts ListOptions) (*TransactionPage, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	size := opts.Size
	if size <= 0 {
		size = 10
	}
	page := opts.Page
	if page < 0 {
		page = 0
	}

	txns, total, err := s.transactions.ListByUser(ctx, userID, repository.ListQuery{
		Type:       opts.Type,
		Category:   opts.Category,
		Page:       page,
		Size:       size,
		SortBy:     opts.SortBy,
		Descending: opts.Descending,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &TransactionPage{
		Content:       txns,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func (s *transactionService) Update(ctx context.Context, userID, id int64, in TransactionInput) (*domain.Transaction, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:          existing.ID,
		UserID:      existing.UserID,
		Amount:      in.Amount,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Date:        in.Date,
		Notes:       in.Notes,
		CreatedAt:   existing.CreatedAt,
	}
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := s.transactions.Update(ctx, txn); err != nil {
		// The row may have been deleted between the read and the write.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	if err := s.transactions.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	return nil
}

func (s *transactionService) MonthlySummary(ctx context.Context, userID int64, month domain.Month) (*MonthlySummary, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	from, to := month.Range()
	txns, err := s.transactions.ListByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummary{
		Month:              month,
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		ExpensesByCategory: make(map[string]decimal.Decimal),
		IncomeByCategory:   make(map[string]decimal.Decimal),
		TotalTransactions:  len(txns),
	}

	for _, txn := range txns {
		switch txn.Type {
		case domain.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
			key := string(txn.Category)
			summary.IncomeByCategory[key] = summary.IncomeByCategory[key].Add(txn.Amount)
		case domain.TypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(txn.Amount)
			key := string(txn.Category)
			summary.ExpensesByCategory[key] = summary.ExpensesByCategory[key].Add(txn.Amount)
		}
	}
	summary.NetSavings = summary.TotalIncome.Sub(summary.TotalExpenses)

	return summary, nil
}

func (s *transactionService) requireUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
