package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

type transactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      ledger.Type     `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Memo      *string         `json:"memo,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Type:      tx.Type,
		Amount:    tx.Amount,
		Category:  tx.Category,
		Date:      tx.Date.Format(time.DateOnly),
		Memo:      tx.Memo,
		CreatedAt: tx.CreatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
