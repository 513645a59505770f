package repository

import (
	"context"
	"time"

	"expenseflow/internal/domain"
)

// ListQuery narrows and pages a user's transaction listing.
// Nil Type/Category means no filter on that field; when both are set
// results must match both.
type ListQuery struct {
	Type       *domain.TransactionType
	Category   *domain.Category
	Page       int // zero-based
	Size       int
	SortBy     string // one of SortFields
	Descending bool
}

// SortFields are the accepted ListQuery.SortBy values. Implementations
// must support every field listed here.
var SortFields = []string{"transactionDate", "amount", "createdAt", "description", "id"}

// ValidSortField reports whether field names a supported sort key.
func ValidSortField(field string) bool {
	for _, f := range SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// TransactionRepository defines persistence operations for Transaction entities.
// Mutations are owner-scoped: Update and Delete only touch rows whose
// user_id matches, so the ownership check and the write are one statement.
type TransactionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, txn *domain.Transaction) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID int64, q ListQuery) ([]domain.Transaction, int64, error)
	ListByUserAndDateRange(ctx context.Context, userID int64, from, to time.Time) ([]domain.Transaction, error)
	Update(ctx context.Context, txn *domain.Transaction) error
	Delete(ctx context.Context, id, userID int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}
