package importer

//go:generate mockgen -source=importer.go -destination=ledger_mock.go -package=importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/peraccount/internal/importer/bankcsv"
)

type Service struct {
	parser Parser
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{
		parser: bankcsv.NewParser(),
		ledger: l,
	}
}

// Parse reads the file without storing anything, for previews.
func (s *Service) Parse(r io.Reader) (*bankcsv.Result, error) {
	return s.parser.Parse(r)
}

// Import stores every row of the file or none of them.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (*Outcome, error) {
	res, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	txs, err := s.ledger.AddTransactions(ctx, userID, res.Drafts)
	if err != nil {
		return nil, fmt.Errorf("importing %s file: %w", res.Format, err)
	}

	return &Outcome{
		Format:       res.Format,
		Charset:      res.Charset,
		Transactions: txs,
		Skipped:      res.Skipped,
	}, nil
}
