package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

// Item is a named monthly amount, such as a salary or a rent payment.
type Item struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Profile is the users/{userId} document.
type Profile struct {
	UserID                   string
	Email                    string
	OnboardingCompleted      bool
	// IncomeSaved is set once the income step has been written, even with
	// no items.
	IncomeSaved              bool
	MonthlyIncomeItems       []Item
	MonthlyFixedExpenseItems []Item
	TotalMonthlyIncome       decimal.Decimal
	TotalFixedExpense        decimal.Decimal
	CreatedAt                time.Time
	LastLogin                time.Time
}

// ValidateItems rejects blank names and negative amounts. field names the
// list in the returned error.
func ValidateItems(field string, items []Item) error {
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return apperr.Validation(fmt.Sprintf("%s[%d].name", field, i), "must not be empty")
		}

		if it.Amount.IsNegative() {
			return apperr.Validation(fmt.Sprintf("%s[%d].amount", field, i), "must not be negative")
		}
	}

	return nil
}

// Sum adds up the item amounts.
func Sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}

	return total
}

func normalize(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Name: strings.TrimSpace(it.Name), Amount: it.Amount}
	}

	return out
}
