// Package memory provides in-memory repository implementations used by
// service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"expenseflow/internal/domain"
	"expenseflow/internal/repository"
)

type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: make(map[int64]domain.User)}
}

func (r *UserRepository) Init(ctx context.Context) error { return nil }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, repository.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type TransactionRepository struct {
	mu     sync.Mutex
	nextID int64
	txns   map[int64]domain.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{nextID: 1, txns: make(map[int64]domain.Transaction)}
}

func (r *TransactionRepository) Init(ctx context.Context) error { return nil }

func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	txn.ID = r.nextID
	txn.CreatedAt = now
	txn.UpdatedAt = now
	r.nextID++
	r.txns[txn.ID] = *txn
	return txn.ID, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, q repository.ListQuery) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Transaction
	for _, t := range r.txns {
		if t.UserID != userID {
			continue
		}
		if q.Type != nil && t.Type != *q.Type {
			continue
		}
		if q.Category != nil && t.Category != *q.Category {
			continue
		}
		matched = append(matched, t)
	}

	sortTransactions(matched, q.SortBy, q.Descending)

	total := int64(len(matched))
	size := q.Size
	if size <= 0 {
		size = 10
	}
	page := q.Page
	if page < 0 {
		page = 0
	}

	start := page * size
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *TransactionRepository) ListByUserAndDateRange(ctx context.Context, userID int64, from, to time.Time) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Transaction
	for _, t := range r.txns {
		if t.UserID != userID {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (r *TransactionRepository) Update(ctx context.Context, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.txns[txn.ID]
	if !ok || existing.UserID != txn.UserID {
		return repository.ErrNotFound
	}
	txn.CreatedAt = existing.CreatedAt
	txn.UpdatedAt = time.Now().UTC()
	r.txns[txn.ID] = *txn
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.txns[id]
	if !ok || existing.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.txns, id)
	return nil
}

func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.txns {
		if t.UserID == userID {
			delete(r.txns, id)
		}
	}
	return nil
}

func sortTransactions(txns []domain.Transaction, sortBy string, descending bool) {
	less := func(i, j int) bool {
		a, b := txns[i], txns[j]
		switch sortBy {
		case "amount":
			if !a.Amount.Equal(b.Amount) {
				return a.Amount.LessThan(b.Amount)
			}
		case "createdAt":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case "description":
			if a.Description != b.Description {
				return strings.Compare(a.Description, b.Description) < 0
			}
		case "id":
		default: // transactionDate
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
		}
		return a.ID < b.ID
	}
	if descending {
		sort.Slice(txns, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.Slice(txns, less)
}
