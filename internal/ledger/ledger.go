package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t belongs to the closed set of transaction types.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense record owned by one user.
type Transaction struct {
	ID        uuid.UUID
	UserID    string
	Type      Type
	Amount    decimal.Decimal // Always positive
	Category  string
	Date      time.Time // Calendar day at UTC midnight
	Memo      *string
	CreatedAt time.Time
}

// Draft is a transaction before the store assigned it an identity.
type Draft struct {
	Type     Type
	Amount   decimal.Decimal
	Category string
	Date     time.Time
	Memo     string
}

// Validate checks the draft against the ledger's domain rules.
func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return apperr.Validation("type", fmt.Sprintf("%q is not income or expense", d.Type))
	}

	if !d.Amount.IsPositive() {
		return apperr.Validation("amount", "must be greater than zero")
	}

	if strings.TrimSpace(d.Category) == "" {
		return apperr.Validation("category", "must not be empty")
	}

	if d.Date.IsZero() {
		return apperr.Validation("date", "is required")
	}

	return nil
}

func (d Draft) toTransaction(userID string) *Transaction {
	tx := &Transaction{
		UserID:   userID,
		Type:     d.Type,
		Amount:   d.Amount,
		Category: strings.TrimSpace(d.Category),
		Date:     Day(d.Date),
	}

	if memo := strings.TrimSpace(d.Memo); memo != "" {
		tx.Memo = &memo
	}

	return tx
}

// AssetSnapshot is a user's current holdings, replaced as a whole on update.
type AssetSnapshot struct {
	UserID      string
	Cash        decimal.Decimal
	Investments decimal.Decimal
	Savings     decimal.Decimal
	LastUpdated time.Time
}

// Total is cash + investments + savings.
func (s AssetSnapshot) Total() decimal.Decimal {
	return s.Cash.Add(s.Investments).Add(s.Savings)
}

// Validate rejects negative holdings.
func (s AssetSnapshot) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"cash", s.Cash},
		{"investments", s.Investments},
		{"savings", s.Savings},
	}

	for _, f := range fields {
		if f.value.IsNegative() {
			return apperr.Validation(f.name, "must not be negative")
		}
	}

	return nil
}

// DateRange selects transactions with Start <= date < End.
// A zero bound leaves that side open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange covers the first through the last calendar day of the month.
func MonthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// DaysRange covers from and to, both inclusive.
func DaysRange(from, to time.Time) DateRange {
	var r DateRange

	if !from.IsZero() {
		r.Start = Day(from)
	}

	if !to.IsZero() {
		r.End = Day(to).AddDate(0, 0, 1)
	}

	return r
}

// Contains reports whether the day of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)

	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}

	if !r.End.IsZero() && !d.Before(r.End) {
		return false
	}

	return true
}

// Day truncates t to its calendar day, expressed at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
