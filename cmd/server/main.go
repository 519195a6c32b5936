// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal mission packages.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	missionhandler "pickup-gateway/internal/mission/handler"
	missionmetrics "pickup-gateway/internal/mission/metrics"
	"pickup-gateway/internal/mission/reconcile"
	"pickup-gateway/internal/mission/service"
	missionstore "pickup-gateway/internal/mission/store"
	"pickup-gateway/internal/platform/config"
	"pickup-gateway/internal/platform/events"
	"pickup-gateway/internal/platform/httpserver"
	"pickup-gateway/internal/platform/logger"
	"pickup-gateway/internal/platform/middleware"
	platformredis "pickup-gateway/internal/platform/redis"
	httptransport "pickup-gateway/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthCheck{}

	// Durable mission store: postgres when configured, in-memory otherwise.
	var store missionstore.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := missionstore.EnsureSchema(ctx, db); err != nil {
			log.Error("ensure schema", "error", err)
			os.Exit(1)
		}
		pg := missionstore.NewPostgres(db)
		store = pg
		checks["postgres"] = pg.Ping
		log.Info("using postgres mission store")
	} else {
		store = missionstore.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory mission store")
	}

	// Scan sessions: shared via redis when configured.
	var sessions reconcile.SessionStore
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = reconcile.NewRedisSessionStore(redisClient.Client, cfg.ScanSessionTTL)
		checks["redis"] = redisClient.Health
		log.Info("using redis scan-session store")
	} else {
		sessions = reconcile.NewInMemorySessionStore()
	}

	opts := []service.Option{
		service.WithMetrics(missionmetrics.New(nil)),
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher))
		log.Info("publishing mission events", "brokers", cfg.KafkaBrokers)
	}

	missions := service.New(store, sessions, log, opts...)
	validator := middleware.NewJWTValidator(cfg.JWTSigningKey)
	handler := missionhandler.New(missions, log, validator)
	router := httptransport.NewRouter(log, handler, checks)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting pickup-gateway", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
