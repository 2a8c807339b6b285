package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medadmit-workers/internal/admissions"
	"medadmit-workers/internal/api"
	"medadmit-workers/internal/common/camunda"
	"medadmit-workers/internal/common/config"
	"medadmit-workers/internal/common/database"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/common/observability"
	"medadmit-workers/internal/engine"
	"medadmit-workers/internal/predictioncache"
	"medadmit-workers/internal/reference"

	caap "medadmit-workers/internal/workers/admissions/calculate-all-school-probabilities"
	csp "medadmit-workers/internal/workers/admissions/calculate-school-probability"
	gqp "medadmit-workers/internal/workers/admissions/generate-quick-prediction"
	na "medadmit-workers/internal/workers/admissions/normalize-applicant"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	readiness := map[string]api.ReadinessCheck{}

	// reference data
	var pg *database.PostgresClient
	if cfg.Reference.Source == config.ReferenceSourcePostgres {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		readiness["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	provider, err := loadReference(ctx, cfg, pg)
	if err != nil {
		zapLog.Fatal("reference data load failed", zap.Error(err))
	}
	zapLog.Info("Reference data loaded",
		zap.String("source", cfg.Reference.Source),
		zap.String("datasetVersion", provider.Version()),
		zap.Int("schools", provider.Len()),
	)
	readiness["reference"] = func(context.Context) error {
		if provider.Len() == 0 {
			return errors.New("no schools loaded")
		}
		return nil
	}

	tiers, err := reference.LoadInstitutionTiers(cfg.Reference.InstitutionPath)
	if err != nil {
		zapLog.Fatal("institution tier lists load failed", zap.Error(err))
	}

	eng := engine.New(provider, engine.NewTierClassifier(tiers.HYPSM, tiers.Elite), engine.PolicyFromConfig(cfg.Model))

	// prediction cache
	var cache *predictioncache.Cache
	if cfg.Cache.Enabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		readiness["redis"] = redis.Ping

		cache = predictioncache.New(redis.GetClient(), cfg.Cache.TTLDuration(), predictioncache.DefaultNamespace, provider.Version(), log)
		zapLog.Info("Redis connected successfully", zap.Duration("ttl", cfg.Cache.TTLDuration()))
	}

	service := admissions.NewService(admissions.ServiceDependencies{
		Engine:        eng,
		Provider:      provider,
		Cache:         cache,
		Observability: obs,
		Logger:        log,
	})

	// zeebe workers
	var workers []worker.JobWorker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		readiness["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		workers = startWorkers(zeebe, cfg, service, obs, log, zapLog)
	} else {
		zapLog.Info("Camunda disabled, job workers not started")
	}

	// http
	gin.SetMode(cfg.Server.GinMode)
	router := api.NewRouter(api.Options{
		Service:         service,
		Logger:          log,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Version:         cfg.App.Version,
		DatasetVersion:  provider.Version(),
		ReadinessChecks: readiness,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutting down...")

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func loadReference(ctx context.Context, cfg *config.Config, pg *database.PostgresClient) (*reference.StaticProvider, error) {
	switch cfg.Reference.Source {
	case config.ReferenceSourceFile:
		return reference.LoadFile(cfg.Reference.DatasetPath)
	case config.ReferenceSourcePostgres:
		return reference.LoadFromPostgres(ctx, pg.GetDB())
	default:
		return reference.LoadEmbedded()
	}
}

func startWorkers(zeebe *camunda.Client, cfg *config.Config, service *admissions.Service, obs *observability.Observability, log logger.Logger, zapLog *zap.Logger) []worker.JobWorker {
	var workers []worker.JobWorker
	client := zeebe.GetClient()

	if config.IsWorkerEnabled(cfg, na.TaskType) {
		handler, err := na.NewHandler(na.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		if err != nil {
			zapLog.Fatal("failed to create normalize-applicant handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, na.TaskType, config.GetWorkerConfig(cfg, na.TaskType), handler, log))
	}

	if config.IsWorkerEnabled(cfg, csp.TaskType) {
		handler, err := csp.NewHandler(csp.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		if err != nil {
			zapLog.Fatal("failed to create calculate-school-probability handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, csp.TaskType, config.GetWorkerConfig(cfg, csp.TaskType), handler, log))
	}

	if config.IsWorkerEnabled(cfg, caap.TaskType) {
		handler, err := caap.NewHandler(caap.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		if err != nil {
			zapLog.Fatal("failed to create calculate-all-school-probabilities handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, caap.TaskType, config.GetWorkerConfig(cfg, caap.TaskType), handler, log))
	}

	if config.IsWorkerEnabled(cfg, gqp.TaskType) {
		handler, err := gqp.NewHandler(gqp.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		if err != nil {
			zapLog.Fatal("failed to create generate-quick-prediction handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, gqp.TaskType, config.GetWorkerConfig(cfg, gqp.TaskType), handler, log))
	}

	zapLog.Info("Job workers started", zap.Int("count", len(workers)))
	return workers
}
