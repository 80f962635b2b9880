package asset

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

type Assets interface {
	GetAssetSnapshot(ctx context.Context, userID string) (*ledger.AssetSnapshot, error)
	PutAssetSnapshot(ctx context.Context, userID string, snapshot ledger.AssetSnapshot) (*ledger.AssetSnapshot, error)
}

type Handler struct {
	assets Assets
}

func NewHandler(assets Assets) *Handler {
	return &Handler{assets: assets}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.put)
	r.Get("/total", h.total)
}

type assetsRequest struct {
	Cash        decimal.Decimal `json:"cashBalance"`
	Investments decimal.Decimal `json:"investmentTotal"`
	Savings     decimal.Decimal `json:"savingTotal"`
}

type assetsResponse struct {
	Cash        decimal.Decimal `json:"cashBalance"`
	Investments decimal.Decimal `json:"investmentTotal"`
	Savings     decimal.Decimal `json:"savingTotal"`
	Total       decimal.Decimal `json:"total"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

type totalResponse struct {
	Total decimal.Decimal `json:"total"`
}

func toResponse(s *ledger.AssetSnapshot) assetsResponse {
	return assetsResponse{
		Cash:        s.Cash,
		Investments: s.Investments,
		Savings:     s.Savings,
		Total:       summary.TotalAssets(*s),
		LastUpdated: s.LastUpdated,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.assets.GetAssetSnapshot(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(snapshot))
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var req assetsRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	snapshot, err := h.assets.PutAssetSnapshot(r.Context(), identity.UserID(r.Context()), ledger.AssetSnapshot{
		Cash:        req.Cash,
		Investments: req.Investments,
		Savings:     req.Savings,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(snapshot))
}

// total reports zero for a user who never saved a snapshot.
func (h *Handler) total(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.assets.GetAssetSnapshot(r.Context(), identity.UserID(r.Context()))

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		render.JSON(w, http.StatusOK, totalResponse{Total: decimal.Zero})
	case err != nil:
		render.Error(w, r, err)
	default:
		render.JSON(w, http.StatusOK, totalResponse{Total: summary.TotalAssets(*snapshot)})
	}
}
