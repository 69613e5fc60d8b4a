// Command server runs the license service: key issuance, validation, and the
// live security event channel behind one HTTP listener.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"licensio/internal/audit"
	auditcache "licensio/internal/audit/cache"
	auditmetrics "licensio/internal/audit/metrics"
	auditsink "licensio/internal/audit/sink"
	auditstore "licensio/internal/audit/store"
	"licensio/internal/catalog"
	catalogstore "licensio/internal/catalog/store"
	"licensio/internal/credential"
	credentialmetrics "licensio/internal/credential/metrics"
	credentialstore "licensio/internal/credential/store"
	"licensio/internal/identity"
	identitymetrics "licensio/internal/identity/metrics"
	identitystore "licensio/internal/identity/store"
	"licensio/internal/jwttoken"
	"licensio/internal/platform/config"
	"licensio/internal/platform/httpserver"
	"licensio/internal/platform/logger"
	platformpostgres "licensio/internal/platform/postgres"
	platformredis "licensio/internal/platform/redis"
	"licensio/internal/stats"
	"licensio/internal/stream"
	httptransport "licensio/internal/transport/http"
	"licensio/internal/validation"
	validationmetrics "licensio/internal/validation/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	// Stores default to in-memory; Postgres takes over when configured.
	var (
		identityStore   identity.Store   = identitystore.NewMemory()
		catalogStore    catalog.Store    = catalogstore.NewMemory()
		credentialStore credential.Store = credentialstore.NewMemory()
		auditStore      audit.Store      = auditstore.NewMemory()
	)
	checks := map[string]httptransport.HealthCheck{}

	if cfg.PostgresURL != "" {
		db, err := platformpostgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()

		identityStore = identitystore.NewPostgres(db)
		catalogStore = catalogstore.NewPostgres(db)
		credentialStore = credentialstore.NewPostgres(db)
		auditStore = auditstore.NewPostgres(db)
		checks["postgres"] = db.PingContext
		log.Info("postgres stores enabled")
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis())
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		log.Info("redis recent-events cache enabled")
	}

	kafkaSink, err := auditsink.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		return err
	}
	var sinks []audit.Sink
	if kafkaSink != nil {
		sinks = append(sinks, kafkaSink)
		log.Info("kafka security-event sink enabled", "topic", cfg.KafkaTopic)
	}

	auditMetrics := auditmetrics.New()
	bus := audit.NewBus(log, func() { auditMetrics.IncrementDropped("subscriber") })
	var recentCache audit.RecentCache
	if cache := auditcache.New(redisClient, audit.SnapshotSize); cache != nil {
		recentCache = cache
	}
	auditService := audit.NewService(auditStore, bus, recentCache, sinks, auditMetrics, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "licensio", "licensio")
	identityService := identity.NewService(identityStore, jwtService, cfg.TokenTTL, identitymetrics.New())
	catalogService := catalog.NewService(catalogStore)
	credentialService := credential.NewService(credentialStore, identityService, catalogService, credentialmetrics.New(), log)
	validationService := validation.NewService(credentialStore, auditService, validationmetrics.New(), log)
	statsService := stats.NewService(identityService, credentialService, auditService)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := identityService.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	handlers := httptransport.Handlers{
		Identity:   identity.NewHandler(identityService, log),
		Catalog:    catalog.NewHandler(catalogService, log),
		Credential: credential.NewHandler(credentialService, log),
		Validation: validation.NewHandler(validationService, log),
		Audit:      audit.NewHandler(auditService, log),
		Stats:      stats.NewHandler(statsService, log),
		Stream:     stream.NewHandler(auditService, jwtService, log),
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handlers, jwtService, checks, log))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := auditService.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if kafkaSink != nil {
			return kafkaSink.Close(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}
