package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/peraccount/internal/http/asset"
	"github.com/MrJamesThe3rd/peraccount/internal/http/auth"
	"github.com/MrJamesThe3rd/peraccount/internal/http/export"
	"github.com/MrJamesThe3rd/peraccount/internal/http/identity"
	"github.com/MrJamesThe3rd/peraccount/internal/http/importcsv"
	"github.com/MrJamesThe3rd/peraccount/internal/http/onboarding"
	"github.com/MrJamesThe3rd/peraccount/internal/http/profile"
	"github.com/MrJamesThe3rd/peraccount/internal/http/projection"
	"github.com/MrJamesThe3rd/peraccount/internal/http/summary"
	"github.com/MrJamesThe3rd/peraccount/internal/http/transaction"
)

// Handlers groups the v1 resource handlers.
type Handlers struct {
	Auth         *auth.Handler
	Assets       *asset.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Summaries    *summary.Handler
	Export       *export.Handler
	Projection   *projection.Handler
	Profile      *profile.Handler
	Onboarding   *onboarding.Handler
}

func New(h Handlers, tokens identity.TokenParser, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity.Authenticate(tokens))

			r.Route("/assets", h.Assets.Routes)

			r.Route("/transactions", func(r chi.Router) {
				r.Route("/import", h.Import.Routes)
				h.Transactions.Routes(r)
			})

			r.Route("/summaries/{year}/{month}", func(r chi.Router) {
				r.Route("/export", h.Export.Routes)
				h.Summaries.Routes(r)
			})

			r.Get("/dashboard", h.Summaries.Dashboard)
			r.Route("/projection", h.Projection.Routes)
			r.Route("/profile", h.Profile.Routes)

			r.Route("/onboarding", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Onboarding.Routes(r)
			})
		})
	})

	return router
}
