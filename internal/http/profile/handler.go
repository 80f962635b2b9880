package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

type Profiles interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

type Handler struct {
	svc Profiles
}

func NewHandler(svc Profiles) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type profileResponse struct {
	UserID                   string          `json:"userId"`
	Email                    string          `json:"email"`
	OnboardingCompleted      bool            `json:"onboardingCompleted"`
	MonthlyIncomeItems       []profile.Item  `json:"monthlyIncomeItems"`
	MonthlyFixedExpenseItems []profile.Item  `json:"monthlyFixedExpenseItems"`
	TotalMonthlyIncome       decimal.Decimal `json:"totalMonthlyIncome"`
	TotalFixedExpense        decimal.Decimal `json:"totalFixedExpense"`
	CreatedAt                time.Time       `json:"createdAt"`
	LastLogin                time.Time       `json:"lastLogin"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := profileResponse{
		UserID:                   p.UserID,
		Email:                    p.Email,
		OnboardingCompleted:      p.OnboardingCompleted,
		MonthlyIncomeItems:       p.MonthlyIncomeItems,
		MonthlyFixedExpenseItems: p.MonthlyFixedExpenseItems,
		TotalMonthlyIncome:       p.TotalMonthlyIncome,
		TotalFixedExpense:        p.TotalFixedExpense,
		CreatedAt:                p.CreatedAt,
		LastLogin:                p.LastLogin,
	}

	if resp.MonthlyIncomeItems == nil {
		resp.MonthlyIncomeItems = []profile.Item{}
	}

	if resp.MonthlyFixedExpenseItems == nil {
		resp.MonthlyFixedExpenseItems = []profile.Item{}
	}

	render.JSON(w, http.StatusOK, resp)
}
