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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/solward/donatiq/internal/adapter/fsm"
	handler "github.com/solward/donatiq/internal/adapter/http"
	"github.com/solward/donatiq/internal/adapter/otel"
	riveradapter "github.com/solward/donatiq/internal/adapter/river"
	"github.com/solward/donatiq/internal/adapter/sqlite"
	"github.com/solward/donatiq/internal/app"
	"github.com/solward/donatiq/internal/config"
	"github.com/solward/donatiq/internal/domain"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	telemetry, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	defer store.Close()

	campaignRepo := otel.NewTracingRepository(store.Campaigns())

	// --- Application ---
	// The river client needs the reconciler and the service needs the
	// publisher, so wire the service with a late-bound publisher.
	publisher := &switchablePublisher{}
	campaigns := app.NewCampaignService(campaignRepo, store.Donations(), publisher, time.Now)
	kiosks := app.NewKioskService(store.Kiosks(), campaignRepo, fsm.New())

	riverClient, err := riveradapter.Setup(ctx, store.DB(), campaigns, cfg.ReconcileInterval)
	if err != nil {
		return fmt.Errorf("river setup: %w", err)
	}
	publisher.next = otel.NewTracingPublisher(riveradapter.NewPublisher(riverClient))

	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("donatiq", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("donatiq", "0.1.0"))
	handler.Register(api, campaigns, kiosks)

	// --- Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("donatiq listening", "port", cfg.Port)
		slog.Info("API docs", "url", fmt.Sprintf("http://localhost:%d/docs", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

// switchablePublisher breaks the startup cycle between the campaign
// service (which publishes events) and the river client (whose
// reconcile worker calls back into the service). Until next is bound,
// events are logged and dropped.
type switchablePublisher struct {
	next domain.EventPublisher
}

func (p *switchablePublisher) Publish(ctx context.Context, event domain.Event, c domain.Campaign) error {
	if p.next == nil {
		slog.InfoContext(ctx, "event before publisher ready", "event", event, "campaign_id", c.ID)
		return nil
	}
	return p.next.Publish(ctx, event, c)
}

func setupLogger(cfg config.Logger) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var h slog.Handler
	if cfg.SlogFormat() == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
