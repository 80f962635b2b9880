package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/peraccount/internal/auth"
	"github.com/MrJamesThe3rd/peraccount/internal/config"
	peraccountHttp "github.com/MrJamesThe3rd/peraccount/internal/http"
	assetHandler "github.com/MrJamesThe3rd/peraccount/internal/http/asset"
	authHandler "github.com/MrJamesThe3rd/peraccount/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/peraccount/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/peraccount/internal/http/importcsv"
	onboardingHandler "github.com/MrJamesThe3rd/peraccount/internal/http/onboarding"
	profileHandler "github.com/MrJamesThe3rd/peraccount/internal/http/profile"
	projectionHandler "github.com/MrJamesThe3rd/peraccount/internal/http/projection"
	summaryHandler "github.com/MrJamesThe3rd/peraccount/internal/http/summary"
	txHandler "github.com/MrJamesThe3rd/peraccount/internal/http/transaction"
	"github.com/MrJamesThe3rd/peraccount/internal/importer"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
	"github.com/MrJamesThe3rd/peraccount/internal/projection"
	"github.com/MrJamesThe3rd/peraccount/internal/report"
	"github.com/MrJamesThe3rd/peraccount/internal/storage"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repos.Close()

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		ledgerService     = ledger.NewService(repos.Ledger)
		summaryService    = summary.NewService(ledgerService, repos.Summary, summary.NewCategorySet(cfg.Ledger.SavingCategories...))
		profileService    = profile.NewService(repos.Profile)
		authProvider      = auth.NewProvider(repos.Auth, profileService)
		onboardingService = onboarding.NewService(ledgerService, profileService)
		importService     = importer.NewService(ledgerService)
		reportService     = report.NewService(ledgerService, summaryService)
		projectionClient  = projection.NewClient(cfg.Projection.URL, cfg.Projection.Timeout, tokens)
	)

	ledgerService.OnChange(summaryService.Invalidate)

	router := peraccountHttp.New(peraccountHttp.Handlers{
		Auth:         authHandler.NewHandler(authProvider, tokens),
		Assets:       assetHandler.NewHandler(ledgerService),
		Transactions: txHandler.NewHandler(ledgerService),
		Import:       importHandler.NewHandler(importService),
		Summaries:    summaryHandler.NewHandler(summaryService),
		Export:       exportHandler.NewHandler(reportService),
		Projection:   projectionHandler.NewHandler(projectionClient),
		Profile:      profileHandler.NewHandler(profileService),
		Onboarding:   onboardingHandler.NewHandler(onboardingService, profileService),
	}, tokens, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "addr", server.Addr, "memory", cfg.UseMemory())

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
