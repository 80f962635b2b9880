package onboarding

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

type Persister interface {
	Persist(ctx context.Context, userID string, step onboarding.Step) error
}

type Status interface {
	OnboardingCompleted(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	steps  Persister
	status Status
}

func NewHandler(steps Persister, status Status) *Handler {
	return &Handler{steps: steps, status: status}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/steps/{n}", h.putStep)
}

type statusResponse struct {
	Completed bool `json:"completed"`
}

// stepRequest carries the fields of every step; each step reads its own.
type stepRequest struct {
	Cash        decimal.Decimal `json:"cashBalance"`
	Investments decimal.Decimal `json:"investmentTotal"`
	Savings     decimal.Decimal `json:"savingTotal"`
	Items       []profile.Item  `json:"items"`
}

func (req stepRequest) step(n int) (onboarding.Step, error) {
	switch n {
	case 1:
		return onboarding.AssetsStep{Cash: req.Cash, Investments: req.Investments, Savings: req.Savings}, nil
	case 2:
		return onboarding.IncomeStep{Items: req.Items}, nil
	case 3:
		return onboarding.ExpensesStep{Items: req.Items}, nil
	}

	return nil, apperr.Validation("step", fmt.Sprintf("must be between 1 and %d", onboarding.Steps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	done, err := h.status.OnboardingCompleted(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, statusResponse{Completed: done})
}

func (h *Handler) putStep(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		render.Error(w, r, apperr.Validation("step", "must be a number"))
		return
	}

	var req stepRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	step, err := req.step(n)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	uid := identity.UserID(r.Context())
	if err := h.steps.Persist(r.Context(), uid, step); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, statusResponse{Completed: n == onboarding.Steps})
}
