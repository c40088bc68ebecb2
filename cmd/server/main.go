package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"allad/internal/campaign/adapter"
	campaignhandler "allad/internal/campaign/handler"
	campaignservice "allad/internal/campaign/service"
	campaignstore "allad/internal/campaign/store"
	"allad/internal/connect/audit"
	connecthandler "allad/internal/connect/handler"
	connectmetrics "allad/internal/connect/metrics"
	"allad/internal/connect/oauth"
	"allad/internal/connect/refresh"
	credstore "allad/internal/connect/store/credential"
	statestore "allad/internal/connect/store/oauthstate"
	"allad/internal/platform/config"
	"allad/internal/platform/database"
	"allad/internal/platform/health"
	"allad/internal/platform/logger"
	"allad/internal/platform/metrics"
	"allad/internal/platform/middleware"
	"allad/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing allad",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"refresh_window", cfg.RefreshWindow.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutdown path
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown path
	}

	// Store selection: Postgres when configured, in-memory otherwise so the
	// service still runs in local development. OAuth states prefer Redis for
	// its native TTL expiry.
	var (
		creds         oauth.CredentialStore
		refreshCreds  refresh.CredentialStore
		credReader    campaignservice.CredentialReader
		states        oauth.StateStore
		sweeper       refresh.StateSweeper
		campaignStore campaignservice.CampaignStore
	)
	switch {
	case pool != nil:
		pg := credstore.NewPostgres(pool.DB())
		creds, refreshCreds, credReader = pg, pg, pg
		campaignStore = campaignstore.NewPostgres(pool.DB())
	default:
		log.Warn("DATABASE_URL not set; credentials and campaigns are in-memory")
		mem := credstore.NewInMemoryStore()
		creds, refreshCreds, credReader = mem, mem, mem
		campaignStore = campaignstore.NewInMemoryStore()
	}
	switch {
	case redisClient != nil:
		rs := statestore.NewRedis(redisClient.Client)
		states, sweeper = rs, rs
	case pool != nil:
		ps := statestore.NewPostgres(pool.DB())
		states, sweeper = ps, ps
	default:
		ms := statestore.NewInMemoryStore()
		states, sweeper = ms, ms
	}

	var publisher audit.Publisher = audit.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafka, err := audit.NewKafkaPublisher(audit.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.AuditTopic,
		}, log)
		if err != nil {
			log.Error("kafka audit publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	} else {
		log.Warn("KAFKA_BROKERS not set; credential audit events are discarded")
	}

	credMetrics := connectmetrics.New()
	httpMetrics := metrics.New()
	provider := oauth.NewHTTPProviderClient(cfg)

	controller := oauth.NewController(creds, states, provider, cfg,
		oauth.WithLogger(log),
		oauth.WithMetrics(credMetrics),
		oauth.WithAudit(publisher),
	)

	refresher := refresh.NewService(refreshCreds, provider, cfg,
		refresh.WithLogger(log),
		refresh.WithMetrics(credMetrics),
		refresh.WithAudit(publisher),
		refresh.WithSweeper(sweeper),
	)
	go refresher.Start(ctx)

	registry := adapter.NewRegistry(adapter.All(cfg.ProviderTimeout))
	campaigns := campaignservice.NewService(campaignStore, credReader, registry,
		campaignservice.WithLogger(log),
	)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		go recordDBStats(ctx, pool)
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
		go recordRedisStats(ctx, redisClient)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(metrics.Middleware(httpMetrics))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	connecthandler.New(controller, refresher, cfg.SiteURL, log).Register(router)
	campaignhandler.New(campaigns, log).Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func recordRedisStats(ctx context.Context, client *redis.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.RecordPoolStats()
		}
	}
}

func recordDBStats(ctx context.Context, pool *database.Pool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pool.RecordPoolStats()
		}
	}
}
