package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expenseflow/internal/domain"
	"expenseflow/internal/repository"
)

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	amount TEXT NOT NULL,
	description TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT NOT NULL,
	transaction_date TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date
	ON transactions (user_id, transaction_date);
`

// sortColumns maps repository.SortFields names to physical columns.
var sortColumns = map[string]string{
	"transactionDate": "transaction_date",
	"amount":          "CAST(amount AS REAL)",
	"createdAt":       "created_at",
	"description":     "description",
	"id":              "id",
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTransactionsTable); err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) (int64, error) {
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (user_id, amount, description, type, category, transaction_date, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.UserID,
		txn.Amount.String(),
		txn.Description,
		string(txn.Type),
		string(txn.Category),
		txn.Date.Format(domain.DateFormat),
		txn.Notes,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction last insert id: %w", err)
	}
	txn.ID = id
	return id, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, amount, description, type, category, transaction_date, notes, created_at, updated_at
FROM transactions
WHERE id = ?`,
		id,
	)
	return scanTransaction(row)
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, q repository.ListQuery) ([]domain.Transaction, int64, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if q.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*q.Type))
	}
	if q.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*q.Category))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions WHERE %s`, cond)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "transaction_date"
	}
	order := "ASC"
	if q.Descending {
		order = "DESC"
	}

	size := q.Size
	if size <= 0 {
		size = 10
	}
	page := q.Page
	if page < 0 {
		page = 0
	}

	query := fmt.Sprintf(`
SELECT id, user_id, amount, description, type, category, transaction_date, notes, created_at, updated_at
FROM transactions
WHERE %s
ORDER BY %s %s, id %s
LIMIT ? OFFSET ?`, cond, column, order, order)
	args = append(args, size, page*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, *txn)
	}

	return txns, total, rows.Err()
}

func (r *TransactionRepository) ListByUserAndDateRange(ctx context.Context, userID int64, from, to time.Time) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, amount, description, type, category, transaction_date, notes, created_at, updated_at
FROM transactions
WHERE user_id = ? AND transaction_date BETWEEN ? AND ?
ORDER BY transaction_date ASC, id ASC`,
		userID,
		from.Format(domain.DateFormat),
		to.Format(domain.DateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions by date range: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}

	return txns, rows.Err()
}

// Update replaces the mutable fields of a transaction. The user_id predicate
// keeps the ownership check and the write atomic.
func (r *TransactionRepository) Update(ctx context.Context, txn *domain.Transaction) error {
	txn.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE transactions
SET amount=?, description=?, type=?, category=?, transaction_date=?, notes=?, updated_at=?
WHERE id=? AND user_id=?`,
		txn.Amount.String(),
		txn.Description,
		string(txn.Type),
		string(txn.Category),
		txn.Date.Format(domain.DateFormat),
		txn.Notes,
		txn.UpdatedAt,
		txn.ID,
		txn.UserID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transaction update rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transaction delete rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id=?`, userID); err != nil {
		return fmt.Errorf("delete transactions by user: %w", err)
	}
	return nil
}

func scanTransaction(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	var (
		txn      domain.Transaction
		amount   string
		txnType  string
		category string
		date     string
	)

	if err := scanner.Scan(
		&txn.ID,
		&txn.UserID,
		&amount,
		&txn.Description,
		&txnType,
		&category,
		&date,
		&txn.Notes,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse transaction amount %q: %w", amount, err)
	}
	txn.Amount = parsed

	day, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	txn.Date = day

	txn.Type = domain.TransactionType(txnType)
	txn.Category = domain.Category(category)

	return &txn, nil
}
