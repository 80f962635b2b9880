package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/report"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders an amount in won.
func FormatAmount(d decimal.Decimal) string {
	return report.FormatWon(d)
}

// FormatSigned prefixes expenses with a minus sign.
func FormatSigned(t ledger.Type, d decimal.Decimal) string {
	if t == ledger.TypeExpense {
		return FormatAmount(d.Neg())
	}

	return "+" + FormatAmount(d)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatError renders err for the end user.
func FormatError(err error) string {
	return errorStyle.Render(apperr.Message(err))
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
