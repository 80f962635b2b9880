package projection

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/projection"
)

type Requester interface {
	Request(ctx context.Context, userID string, years int) (*projection.Result, error)
}

type Handler struct {
	client Requester
}

func NewHandler(client Requester) *Handler {
	return &Handler{client: client}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type projectionResponse struct {
	Years           int             `json:"years"`
	PredictedAmount decimal.Decimal `json:"predictedAmount"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	years, err := strconv.Atoi(r.URL.Query().Get("years"))
	if err != nil {
		render.Error(w, r, apperr.Validation("years", "must be a whole number"))
		return
	}

	res, err := h.client.Request(r.Context(), identity.UserID(r.Context()), years)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, projectionResponse{Years: res.Years, PredictedAmount: res.PredictedAmount})
}
