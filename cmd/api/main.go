// @title        Mood Tracker API
// @version      1.0
// @description  Daily mood, activity and wellness metrics per user, with weekly progress.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dailymood/mood-tracker/internal/api"
	"github.com/dailymood/mood-tracker/internal/api/handler"
	"github.com/dailymood/mood-tracker/internal/api/middleware"
	"github.com/dailymood/mood-tracker/internal/core/ports"
	"github.com/dailymood/mood-tracker/internal/core/service"
	mongostore "github.com/dailymood/mood-tracker/internal/infrastructure/db/mongo"
	redisstore "github.com/dailymood/mood-tracker/internal/infrastructure/db/redis"
	"github.com/dailymood/mood-tracker/internal/infrastructure/mq"
	"github.com/dailymood/mood-tracker/internal/infrastructure/queue"
	"github.com/dailymood/mood-tracker/internal/infrastructure/realtime"
	"github.com/dailymood/mood-tracker/internal/pkg/config"
	"github.com/dailymood/mood-tracker/pkg/logger"
	"github.com/dailymood/mood-tracker/pkg/obs"
)

const (
	serviceName     = "mood-tracker"
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid reference timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: serviceName,
		Version:     version,
		Environment: cfg.Env,
		Endpoint:    cfg.Otel.Endpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise tracer")
	}

	// --- MongoDB ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	userRepo := mongostore.NewUserRepository(db)
	recordRepo := mongostore.NewRecordRepository(db)
	auditRepo := mongostore.NewEventRepository(db)
	if err := mongostore.EnsureIndexes(ctx, userRepo, recordRepo, auditRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongodb indexes")
	}

	// --- Redis ---
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// --- Event sinks ---
	hub := realtime.NewHub()
	sinks := []ports.EventSink{auditRepo, hub}

	var publisher *mq.Publisher
	if cfg.Rabbit.URL != "" {
		publisher, err = mq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		sinks = append(sinks, publisher)
	} else {
		log.Info().Msg("RABBIT_URL not set, broker publishing disabled")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, sinks, log)
	dispatcher.Start(workerCtx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log)
	recordService := service.NewRecordService(recordRepo, loc, log,
		service.WithDayLocker(redisstore.NewDayLocker(rdb, loc)),
		service.WithProgressCache(redisstore.NewProgressCache(rdb, loc)),
		service.WithNotifier(dispatcher),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(workerCtx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:           log,
		JWTSecret:     cfg.JWTSecret,
		AuthService:   authService,
		RecordService: recordService,
		Hub:           hub,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		AuthLimiter: limiter,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	hub.Close()

	cancelWorkers()
	dispatcher.Wait()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("rabbitmq close")
		}
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}

	log.Info().Msg("stopped")
}
