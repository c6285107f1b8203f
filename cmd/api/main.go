package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barbershop-booking/internal/db"
	"github.com/BruksfildServices01/barbershop-booking/internal/handlers"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/storage"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/routes"
	"github.com/BruksfildServices01/barbershop-booking/internal/telemetry"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

const serviceName = "barbershop-booking"

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OtelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OtelEndpoint,
	})
	if err != nil {
		log.Error().Err(err).Msg("otel setup failed")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	db := dbpkg.NewDB(cfg, log)
	checks := []handlers.ReadyCheck{handlers.DBCheck(db)}

	deps := routes.Dependencies{
		DB:     db,
		Config: cfg,
		Clock:  timezone.SystemClock(),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		deps.Cache = cache.NewSlotCache(rdb, cfg.CacheTTL)
		checks = append(checks, handlers.ReadyCheck{Name: "redis", Check: deps.Cache.Ping})
	} else {
		log.Warn().Msg("REDIS_ADDR not set, availability cache disabled")
	}

	if cfg.S3Bucket != "" {
		deps.Logos = storage.NewLogoStore(storage.NewS3Store(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}))
	}

	sinks := []audit.Sink{audit.NewStore(db)}
	var kafkaPublisher *audit.KafkaPublisher
	if brokers := audit.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kafkaPublisher = audit.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		sinks = append(sinks, kafkaPublisher)
	}
	deps.Audit = audit.NewDispatcher(log, sinks...)
	deps.ReadyChecks = checks

	metrics.Register()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := deps.Audit.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit drain failed")
	}
	if kafkaPublisher != nil {
		_ = kafkaPublisher.Close()
	}
}
