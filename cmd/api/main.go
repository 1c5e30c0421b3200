package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"loadplan/internal/api"
	"loadplan/internal/buildinfo"
	"loadplan/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	metrics.RegisterDefault()

	srv, err := api.NewServer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init server")
	}

	mux := http.NewServeMux()

	// Planning engine
	mux.HandleFunc("/v1/evaluate", srv.EvaluateHandler)
	mux.HandleFunc("/v1/evaluate/batch", srv.BatchEvaluateHandler)
	mux.HandleFunc("/v1/score", srv.ScoreHandler)
	mux.HandleFunc("/v1/whatif", srv.WhatIfHandler)

	// Reference data
	mux.HandleFunc("/v1/catalog/size-categories", srv.CatalogSizesHandler)
	mux.HandleFunc("/v1/catalog/service-standards", srv.CatalogStandardsHandler)

	// Evaluation history
	mux.HandleFunc("/v1/evaluations", srv.EvaluationsHandler)
	mux.HandleFunc("/v1/evaluations/", srv.EvaluationByIDHandler)

	// Stored configuration
	mux.HandleFunc("/v1/settings-presets", srv.SettingsPresetsHandler)
	mux.HandleFunc("/v1/settings-presets/", srv.SettingsPresetByIDHandler)
	mux.HandleFunc("/v1/criteria-sets", srv.CriteriaSetsHandler)
	mux.HandleFunc("/v1/criteria-sets/", srv.CriteriaSetByIDHandler)

	// Webhooks
	mux.HandleFunc("/v1/subscriptions", srv.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srv.SubscriptionByIDHandler)

	// Event streams
	mux.HandleFunc("/v1/stream", srv.StreamHandler)
	mux.HandleFunc("/v1/events/stream", srv.EventsStreamHandler)

	// Admin and operational
	mux.HandleFunc("/v1/admin/stats", srv.StatsHandler)
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"` + buildinfo.Version + `"}`))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var handler http.Handler = api.Observe(mux)
	if rps := envFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		handler = api.RateLimit(rps, int(rps*2), handler)
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	worker := srv.NewWebhookWorker()
	worker.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Str("version", buildinfo.Version).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	close(worker.Stop)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
