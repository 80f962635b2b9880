package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/peraccount/internal/encoding"
	"github.com/MrJamesThe3rd/peraccount/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

// Parser turns a statement file into ledger drafts.
type Parser interface {
	Parse(r io.Reader) (*bankcsv.Result, error)
}

// Ledger is the part of the ledger service an import writes to.
type Ledger interface {
	AddTransactions(ctx context.Context, userID string, drafts []ledger.Draft) ([]*ledger.Transaction, error)
}

// Outcome describes a finished import.
type Outcome struct {
	Format       string
	Charset      encoding.Charset
	Transactions []*ledger.Transaction
	Skipped      int
}
