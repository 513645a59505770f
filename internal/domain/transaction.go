package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

type Category string

const (
	// Income categories
	CategorySalary      Category = "SALARY"
	CategoryFreelance   Category = "FREELANCE"
	CategoryInvestment  Category = "INVESTMENT"
	CategoryGift        Category = "GIFT"
	CategoryOtherIncome Category = "OTHER_INCOME"

	// Expense categories
	CategoryFood          Category = "FOOD"
	CategoryTransport     Category = "TRANSPORT"
	CategoryHousing       Category = "HOUSING"
	CategoryUtilities     Category = "UTILITIES"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryHealthcare    Category = "HEALTHCARE"
	CategoryShopping      Category = "SHOPPING"
	CategoryEducation     Category = "EDUCATION"
	CategoryTravel        Category = "TRAVEL"
	CategoryOtherExpense  Category = "OTHER_EXPENSE"
)

// DateFormat is the wire and storage format for transaction dates.
const DateFormat = "2006-01-02"

var (
	ErrInvalidAmount        = errors.New("amount must be positive with at most 2 decimal places")
	ErrEmptyDescription     = errors.New("description is required")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
	ErrNotesTooLong         = errors.New("notes too long (max 500 characters)")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrCategoryTypeMismatch = errors.New("category does not belong to transaction type")
	ErrInvalidDate          = errors.New("invalid transaction date")
	ErrInvalidMonth         = errors.New("invalid month, expected YYYY-MM")
)

var categoryTypes = map[Category]TransactionType{
	CategorySalary:      TypeIncome,
	CategoryFreelance:   TypeIncome,
	CategoryInvestment:  TypeIncome,
	CategoryGift:        TypeIncome,
	CategoryOtherIncome: TypeIncome,

	CategoryFood:          TypeExpense,
	CategoryTransport:     TypeExpense,
	CategoryHousing:       TypeExpense,
	CategoryUtilities:     TypeExpense,
	CategoryEntertainment: TypeExpense,
	CategoryHealthcare:    TypeExpense,
	CategoryShopping:      TypeExpense,
	CategoryEducation:     TypeExpense,
	CategoryTravel:        TypeExpense,
	CategoryOtherExpense:  TypeExpense,
}

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	default:
		return "", ErrInvalidType
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := categoryTypes[c]; !ok {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Type returns the transaction type group the category belongs to.
func (c Category) Type() TransactionType {
	return categoryTypes[c]
}

// Transaction represents a single income or expense record owned by a user.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Description string
	Type        TransactionType
	Category    Category
	Date        time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Amount.Equal(t.Amount.Round(2)) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	// Limits count characters, not bytes.
	if utf8.RuneCountInString(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if utf8.RuneCountInString(t.Notes) > 500 {
		return ErrNotesTooLong
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if _, err := ParseCategory(string(t.Category)); err != nil {
		return err
	}
	if t.Category.Type() != t.Type {
		return fmt.Errorf("%w: %s is not a %s category", ErrCategoryTypeMismatch, t.Category, t.Type)
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month identifies a calendar month for summary queries.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing the given time.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Range returns the first and last day of the month, both inclusive.
func (m Month) Range() (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
