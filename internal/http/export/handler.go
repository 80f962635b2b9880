package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
	"github.com/MrJamesThe3rd/peraccount/internal/report"
)

type Reports interface {
	Month(ctx context.Context, userID string, year int, month time.Month) (*report.Report, error)
}

type Handler struct {
	svc Reports
}

func NewHandler(svc Reports) *Handler {
	return &Handler{svc: svc}
}

// Routes serves /summaries/{year}/{month}/export.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/body", h.body)
}

type bodyResponse struct {
	Filename string `json:"filename"`
	Body     string `json:"body"`
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	year, month, err := render.Month(r)
	if err != nil {
		render.Error(w, r, err)
		return nil, false
	}

	rep, err := h.svc.Month(r.Context(), identity.UserID(r.Context()), year, month)
	if err != nil {
		render.Error(w, r, err)
		return nil, false
	}

	return rep, true
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep.Transactions); err != nil {
		render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename(rep.Summary.Year, rep.Summary.Month)))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (h *Handler) body(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.load(w, r)
	if !ok {
		return
	}

	render.JSON(w, http.StatusOK, bodyResponse{
		Filename: report.Filename(rep.Summary.Year, rep.Summary.Month),
		Body:     report.Body(rep),
	})
}
