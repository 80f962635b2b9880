package transaction

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

type Ledger interface {
	ListTransactions(ctx context.Context, userID string, r ledger.DateRange) ([]*ledger.Transaction, error)
	AddTransaction(ctx context.Context, userID string, draft ledger.Draft) (*ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) error
}

type Handler struct {
	svc Ledger
}

func NewHandler(svc Ledger) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.AllowContentType("application/json")).Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Type     ledger.Type     `json:"type" validate:"required,oneof=income expense"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category" validate:"required"`
	Date     string          `json:"date" validate:"required,datetime=2006-01-02"`
	Memo     string          `json:"memo"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		render.Error(w, r, apperr.Validation("date", "must be YYYY-MM-DD"))
		return
	}

	tx, err := h.svc.AddTransaction(r.Context(), identity.UserID(r.Context()), ledger.Draft{
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
		Date:     date,
		Memo:     req.Memo,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(tx))
}

// list filters by start_date and end_date, both inclusive and optional.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start_date", &from},
		{"end_date", &to},
	} {
		s := r.URL.Query().Get(p.name)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			render.Error(w, r, apperr.Validation(p.name, "must be YYYY-MM-DD"))
			return
		}

		*p.dst = t
	}

	txs, err := h.svc.ListTransactions(r.Context(), identity.UserID(r.Context()), ledger.DaysRange(from, to))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, r, apperr.Validation("id", "must be a UUID"))
		return
	}

	if err := h.svc.DeleteTransaction(r.Context(), identity.UserID(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
