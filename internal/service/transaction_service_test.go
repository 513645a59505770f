package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expenseflow/internal/domain"
	"expenseflow/internal/repository/memory"
)

func newTestServices(t *testing.T) (UserService, TransactionService, int64, int64) {
	t.Helper()

	userRepo := memory.NewUserRepository()
	txnRepo := memory.NewTransactionRepository()
	users := NewUserService(userRepo, txnRepo)
	txns := NewTransactionService(txnRepo, userRepo)

	ctx := context.Background()
	alice, err := users.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password1",
		FirstName: "Alice", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, err := users.Register(ctx, RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "password1",
		FirstName: "Bob", LastName: "Jones",
	})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	return users, txns, alice.ID, bob.ID
}

func mustCreate(t *testing.T, svc TransactionService, userID int64, in TransactionInput) *domain.Transaction {
	t.Helper()
	txn, err := svc.Create(context.Background(), userID, in)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return txn
}

func expenseInput(amount, category string, date time.Time) TransactionInput {
	return TransactionInput{
		Amount:      decimal.RequireFromString(amount),
		Description: "expense",
		Type:        domain.TypeExpense,
		Category:    domain.Category(category),
		Date:        date,
	}
}

func incomeInput(amount, category string, date time.Time) TransactionInput {
	return TransactionInput{
		Amount:      decimal.RequireFromString(amount),
		Description: "income",
		Type:        domain.TypeIncome,
		Category:    domain.Category(category),
		Date:        date,
	}
}

func TestCreateStampsOwner(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)

	created := mustCreate(t, txns, alice, expenseInput("50.00", "FOOD", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	if created.UserID != alice {
		t.Fatalf("owner = %d, want %d", created.UserID, alice)
	}
	if created.ID == 0 {
		t.Fatal("created transaction should have an id")
	}
}

func TestCreateUnknownUser(t *testing.T) {
	_, txns, _, _ := newTestServices(t)

	_, err := txns.Create(context.Background(), 999, expenseInput("50.00", "FOOD", time.Now()))
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Create for unknown user = %v, want ErrUserNotFound", err)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)

	in := expenseInput("50.00", "FOOD", time.Now())
	in.Category = domain.CategorySalary // income category on an expense
	if _, err := txns.Create(context.Background(), alice, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("Create with mismatched category = %v, want ErrValidation", err)
	}

	in = expenseInput("0", "FOOD", time.Now())
	if _, err := txns.Create(context.Background(), alice, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("Create with zero amount = %v, want ErrValidation", err)
	}
}

func TestOwnershipScoping(t *testing.T) {
	_, txns, alice, bob := newTestServices(t)
	ctx := context.Background()

	created := mustCreate(t, txns, alice, expenseInput("50.00", "FOOD", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))

	// Foreign reads, updates and deletes all report not found, never forbidden.
	if _, err := txns.Get(ctx, bob, created.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Get as bob = %v, want ErrTransactionNotFound", err)
	}
	if _, err := txns.Update(ctx, bob, created.ID, expenseInput("60.00", "FOOD", created.Date)); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Update as bob = %v, want ErrTransactionNotFound", err)
	}
	if err := txns.Delete(ctx, bob, created.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Delete as bob = %v, want ErrTransactionNotFound", err)
	}

	// The record is untouched and still visible to its owner.
	got, err := txns.Get(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("Get as alice: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("amount changed to %s after foreign update attempt", got.Amount)
	}

	if err := txns.Delete(ctx, alice, created.ID); err != nil {
		t.Fatalf("Delete as alice: %v", err)
	}
	if _, err := txns.Get(ctx, alice, created.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Get after delete = %v, want ErrTransactionNotFound", err)
	}
}

func TestUpdatePreservesIdentity(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)
	ctx := context.Background()

	created := mustCreate(t, txns, alice, expenseInput("50.00", "FOOD", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))

	updated, err := txns.Update(ctx, alice, created.ID, incomeInput("1000.00", "SALARY", time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID || updated.UserID != alice {
		t.Errorf("update changed identity: id=%d owner=%d", updated.ID, updated.UserID)
	}
	if updated.Type != domain.TypeIncome || updated.Category != domain.CategorySalary {
		t.Errorf("update did not apply fields: %+v", updated)
	}
}

func TestMonthlySummary(t *testing.T) {
	_, txns, alice, bob := newTestServices(t)
	ctx := context.Background()
	june := domain.Month{Year: 2025, Month: time.June}

	mustCreate(t, txns, alice, expenseInput("50.00", "FOOD", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)))
	mustCreate(t, txns, alice, incomeInput("1000.00", "SALARY", time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)))
	// Outside the month and foreign records must not count.
	mustCreate(t, txns, alice, expenseInput("99.00", "TRAVEL", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	mustCreate(t, txns, bob, expenseInput("77.00", "FOOD", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)))

	summary, err := txns.MonthlySummary(ctx, alice, june)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}

	if !summary.TotalIncome.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("totalIncome = %s, want 1000.00", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("totalExpenses = %s, want 50.00", summary.TotalExpenses)
	}
	if !summary.NetSavings.Equal(decimal.RequireFromString("950.00")) {
		t.Errorf("netSavings = %s, want 950.00", summary.NetSavings)
	}
	if summary.TotalTransactions != 2 {
		t.Errorf("totalTransactions = %d, want 2", summary.TotalTransactions)
	}
	if got := summary.ExpensesByCategory["FOOD"]; !got.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("expensesByCategory[FOOD] = %s, want 50.00", got)
	}
	if got := summary.IncomeByCategory["SALARY"]; !got.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("incomeByCategory[SALARY] = %s, want 1000.00", got)
	}
}

func TestMonthlySummaryInvariants(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)
	ctx := context.Background()
	june := domain.Month{Year: 2025, Month: time.June}

	inputs := []TransactionInput{
		expenseInput("12.34", "FOOD", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		expenseInput("7.66", "FOOD", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
		expenseInput("100.00", "HOUSING", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)),
		incomeInput("500.50", "FREELANCE", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
		incomeInput("9.50", "GIFT", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)),
	}
	for _, in := range inputs {
		mustCreate(t, txns, alice, in)
	}

	summary, err := txns.MonthlySummary(ctx, alice, june)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}

	if !summary.NetSavings.Equal(summary.TotalIncome.Sub(summary.TotalExpenses)) {
		t.Errorf("netSavings %s != totalIncome %s - totalExpenses %s",
			summary.NetSavings, summary.TotalIncome, summary.TotalExpenses)
	}

	expenseSum := decimal.Zero
	for _, v := range summary.ExpensesByCategory {
		expenseSum = expenseSum.Add(v)
	}
	if !expenseSum.Equal(summary.TotalExpenses) {
		t.Errorf("sum of expensesByCategory %s != totalExpenses %s", expenseSum, summary.TotalExpenses)
	}

	incomeSum := decimal.Zero
	for _, v := range summary.IncomeByCategory {
		incomeSum = incomeSum.Add(v)
	}
	if !incomeSum.Equal(summary.TotalIncome) {
		t.Errorf("sum of incomeByCategory %s != totalIncome %s", incomeSum, summary.TotalIncome)
	}

	if summary.TotalTransactions != len(inputs) {
		t.Errorf("totalTransactions = %d, want %d", summary.TotalTransactions, len(inputs))
	}
}

func TestMonthlySummaryEmptyMonth(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)

	summary, err := txns.MonthlySummary(context.Background(), alice, domain.Month{Year: 2030, Month: time.January})
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if !summary.TotalIncome.IsZero() || !summary.TotalExpenses.IsZero() || !summary.NetSavings.IsZero() {
		t.Errorf("empty month should produce zero totals: %+v", summary)
	}
	if summary.TotalTransactions != 0 {
		t.Errorf("totalTransactions = %d, want 0", summary.TotalTransactions)
	}
}

func TestMonthlySummaryUnknownUser(t *testing.T) {
	_, txns, _, _ := newTestServices(t)

	_, err := txns.MonthlySummary(context.Background(), 999, domain.Month{Year: 2025, Month: time.June})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("MonthlySummary for unknown user = %v, want ErrUserNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	mustCreate(t, txns, alice, expenseInput("10.00", "FOOD", day))
	mustCreate(t, txns, alice, expenseInput("20.00", "TRANSPORT", day))
	mustCreate(t, txns, alice, incomeInput("30.00", "SALARY", day))

	expense := domain.TypeExpense
	food := domain.CategoryFood

	// Both filters intersect.
	page, err := txns.List(ctx, alice, ListOptions{Type: &expense, Category: &food, Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Content) != 1 {
		t.Fatalf("type+category filter returned %d records, want 1", len(page.Content))
	}
	got := page.Content[0]
	if got.Type != domain.TypeExpense || got.Category != domain.CategoryFood {
		t.Errorf("filtered record does not match both filters: %+v", got)
	}

	// Type alone.
	page, err = txns.List(ctx, alice, ListOptions{Type: &expense, Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Content) != 2 {
		t.Errorf("type filter returned %d records, want 2", len(page.Content))
	}

	// No filters.
	page, err = txns.List(ctx, alice, ListOptions{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalElements != 3 {
		t.Errorf("totalElements = %d, want 3", page.TotalElements)
	}
}

func TestListPaginationAndSort(t *testing.T) {
	_, txns, alice, _ := newTestServices(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		mustCreate(t, txns, alice, expenseInput("10.00", "FOOD", time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)))
	}

	// Default sort is transaction date descending.
	page, err := txns.List(ctx, alice, ListOptions{Size: 2, SortBy: "transactionDate", Descending: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 {
		t.Errorf("totals = %d/%d pages, want 5/3", page.TotalElements, page.TotalPages)
	}
	if len(page.Content) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Content))
	}
	if page.Content[0].Date.Day() != 5 || page.Content[1].Date.Day() != 4 {
		t.Errorf("descending sort order wrong: days %d, %d", page.Content[0].Date.Day(), page.Content[1].Date.Day())
	}

	last, err := txns.List(ctx, alice, ListOptions{Page: 2, Size: 2, SortBy: "transactionDate", Descending: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(last.Content) != 1 || last.Content[0].Date.Day() != 1 {
		t.Errorf("last page wrong: %+v", last.Content)
	}
}
