package importcsv

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/importer"
	"github.com/MrJamesThe3rd/peraccount/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

const maxUploadSize = 10 << 20

type Importer interface {
	Parse(r io.Reader) (*bankcsv.Result, error)
	Import(ctx context.Context, userID string, r io.Reader) (*importer.Outcome, error)
}

type Handler struct {
	importSvc Importer
}

func NewHandler(importSvc Importer) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/preview", h.preview)
}

type transactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      ledger.Type     `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Memo      *string         `json:"memo,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type draftDTO struct {
	Type     ledger.Type     `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Memo     string          `json:"memo,omitempty"`
}

type importSuccessResponse struct {
	Format       string                `json:"format"`
	Charset      string                `json:"charset"`
	Imported     int                   `json:"imported"`
	Skipped      int                   `json:"skipped"`
	Transactions []transactionResponse `json:"transactions"`
}

type previewResponse struct {
	Format  string     `json:"format"`
	Charset string     `json:"charset"`
	Skipped int        `json:"skipped"`
	Drafts  []draftDTO `json:"drafts"`
}

func formFile(r *http.Request) (io.ReadCloser, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, apperr.Validation("form", err.Error())
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, apperr.Validation("file", "is required")
	}

	return file, nil
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	file, err := formFile(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	defer file.Close()

	outcome, err := h.importSvc.Import(r.Context(), identity.UserID(r.Context()), file)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := importSuccessResponse{
		Format:       outcome.Format,
		Charset:      string(outcome.Charset),
		Imported:     len(outcome.Transactions),
		Skipped:      outcome.Skipped,
		Transactions: make([]transactionResponse, 0, len(outcome.Transactions)),
	}

	for _, tx := range outcome.Transactions {
		resp.Transactions = append(resp.Transactions, toTxResponse(tx))
	}

	render.JSON(w, http.StatusCreated, resp)
}

// preview parses the upload without storing it.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	file, err := formFile(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	defer file.Close()

	res, err := h.importSvc.Parse(file)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := previewResponse{
		Format:  res.Format,
		Charset: string(res.Charset),
		Skipped: res.Skipped,
		Drafts:  make([]draftDTO, 0, len(res.Drafts)),
	}

	for _, d := range res.Drafts {
		resp.Drafts = append(resp.Drafts, draftDTO{
			Type:     d.Type,
			Amount:   d.Amount,
			Category: d.Category,
			Date:     d.Date.Format(time.DateOnly),
			Memo:     d.Memo,
		})
	}

	render.JSON(w, http.StatusOK, resp)
}

func toTxResponse(tx *ledger.Transaction) transactionResponse {
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
