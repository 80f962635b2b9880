// Package summary derives monthly summaries and total assets from a ledger.
//
// ComputeMonthly and TotalAssets are pure: they never perform I/O and never
// mutate their inputs. Service layers a read-through cache on top of them.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

// MonthlySummary is the derived view of one user's month.
type MonthlySummary struct {
	UserID                string
	Year                  int
	Month                 time.Month
	TotalIncome           decimal.Decimal
	TotalExpense          decimal.Decimal
	TotalSavingInvestment decimal.Decimal
	NetBalance            decimal.Decimal
	// ExpenseByCategory excludes saving/investment categories.
	ExpenseByCategory []CategoryAmount
	ComputedAt        time.Time
}

// CategoryAmount is an expense total for one category.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// DocumentID is the monthlySummaries document key: {userId}-{year}-{month}.
func DocumentID(userID string, year int, month time.Month) string {
	return fmt.Sprintf("%s-%d-%d", userID, year, int(month))
}

// Classifier tells which expense categories build net worth instead of
// being consumed.
type Classifier interface {
	IsSavingCategory(category string) bool
}

// CategorySet is a Classifier over a fixed list of category names.
// Matching ignores case and surrounding whitespace.
type CategorySet struct {
	names map[string]struct{}
}

func NewCategorySet(names ...string) CategorySet {
	set := CategorySet{names: make(map[string]struct{}, len(names))}

	for _, n := range names {
		if k := normalizeCategory(n); k != "" {
			set.names[k] = struct{}{}
		}
	}

	return set
}

func (c CategorySet) IsSavingCategory(category string) bool {
	_, ok := c.names[normalizeCategory(category)]
	return ok
}

// Categories lists the configured names in sorted order.
func (c CategorySet) Categories() []string {
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ComputeMonthly aggregates the transactions dated inside the given month.
// Transactions outside the month are ignored, so callers may pass a wider
// slice. A nil classifier treats every expense as consumption.
func ComputeMonthly(userID string, year int, month time.Month, txs []*ledger.Transaction, classifier Classifier) MonthlySummary {
	r := ledger.MonthRange(year, month)

	income := decimal.Zero
	expense := decimal.Zero
	saving := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if tx == nil || !r.Contains(tx.Date) {
			continue
		}

		switch tx.Type {
		case ledger.TypeIncome:
			income = income.Add(tx.Amount)
		case ledger.TypeExpense:
			if classifier != nil && classifier.IsSavingCategory(tx.Category) {
				saving = saving.Add(tx.Amount)
				continue
			}

			expense = expense.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		}
	}

	return MonthlySummary{
		UserID:                userID,
		Year:                  year,
		Month:                 month,
		TotalIncome:           income,
		TotalExpense:          expense,
		TotalSavingInvestment: saving,
		NetBalance:            income.Sub(expense).Sub(saving),
		ExpenseByCategory:     sortCategories(byCategory),
	}
}

// sortCategories orders by amount descending, then by name.
func sortCategories(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for c, a := range m {
		out = append(out, CategoryAmount{Category: c, Amount: a})
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}

		return out[i].Category < out[j].Category
	})

	return out
}

// TotalAssets is cash + investments + savings.
func TotalAssets(snapshot ledger.AssetSnapshot) decimal.Decimal {
	return snapshot.Total()
}
