package summary

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

type Summaries interface {
	Monthly(ctx context.Context, userID string, year int, month time.Month) (*summary.MonthlySummary, error)
	Dashboard(ctx context.Context, userID string, now time.Time) (*summary.Dashboard, error)
}

type Handler struct {
	svc Summaries
	now func() time.Time
}

func NewHandler(svc Summaries) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// Routes serves /summaries/{year}/{month}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.monthly)
}

type categoryResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type summaryResponse struct {
	Year                  int                `json:"year"`
	Month                 int                `json:"month"`
	TotalIncome           decimal.Decimal    `json:"totalIncome"`
	TotalExpense          decimal.Decimal    `json:"totalExpense"`
	TotalSavingInvestment decimal.Decimal    `json:"totalSavingInvestment"`
	NetBalance            decimal.Decimal    `json:"netBalance"`
	ExpenseByCategory     []categoryResponse `json:"expenseByCategory"`
}

type dashboardResponse struct {
	TotalAssets decimal.Decimal `json:"totalAssets"`
	Month       summaryResponse `json:"month"`
}

func toResponse(s *summary.MonthlySummary) summaryResponse {
	resp := summaryResponse{
		Year:                  s.Year,
		Month:                 int(s.Month),
		TotalIncome:           s.TotalIncome,
		TotalExpense:          s.TotalExpense,
		TotalSavingInvestment: s.TotalSavingInvestment,
		NetBalance:            s.NetBalance,
		ExpenseByCategory:     make([]categoryResponse, len(s.ExpenseByCategory)),
	}

	for i, c := range s.ExpenseByCategory {
		resp.ExpenseByCategory[i] = categoryResponse{Category: c.Category, Amount: c.Amount}
	}

	return resp
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := render.Month(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	s, err := h.svc.Monthly(r.Context(), identity.UserID(r.Context()), year, month)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(s))
}

// Dashboard serves total assets and the current month.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), identity.UserID(r.Context()), h.now())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dashboardResponse{
		TotalAssets: d.TotalAssets,
		Month:       toResponse(&d.Month),
	})
}
