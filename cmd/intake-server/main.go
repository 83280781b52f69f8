// cmd/intake-server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"maritime-intake/internal/api"
	"maritime-intake/internal/common/aws"
	"maritime-intake/internal/common/camunda"
	"maritime-intake/internal/common/config"
	"maritime-intake/internal/common/database"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/observability"
	"maritime-intake/internal/common/supabase"
	"maritime-intake/internal/models"

	as "maritime-intake/internal/workers/application/attachment-store"
	car "maritime-intake/internal/workers/application/create-application-record"
	sn "maritime-intake/internal/workers/application/send-notification"
	sa "maritime-intake/internal/workers/application/submit-application"
	tc "maritime-intake/internal/workers/application/tracking-code"
	vad "maritime-intake/internal/workers/application/validate-application-data"
)

// retryWithBackoff attempts to execute a function with exponential backoff
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// components holds everything built at startup that needs closing on exit.
type components struct {
	checks  map[string]api.Check
	closers []func() error
}

func (c *components) addCheck(name string, check api.Check) {
	if c.checks == nil {
		c.checks = make(map[string]api.Check)
	}
	c.checks[name] = check
}

func (c *components) close(zapLog *zap.Logger) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			zapLog.Warn("close failed", zap.Error(err))
		}
	}
}

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./configs/config.yaml)")
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "intake-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnly bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if migrateOnly {
		version, err := database.Migrate(cfg.Database.Postgres.GetURL())
		if err != nil {
			return err
		}
		zapLog.Info("migrations applied", zap.Uint("version", version))
		return nil
	}

	zapLog.Info("starting intake server",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps := &components{}
	defer comps.close(zapLog)

	catalog, err := models.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog load failed: %w", err)
	}

	issuer, err := buildIssuer(cfg, comps, zapLog, log)
	if err != nil {
		return err
	}

	var backend sa.Backend
	if cfg.UseLiveBackend() {
		backend, err = buildLiveBackend(ctx, cfg, comps, obs, zapLog, log)
		if err != nil {
			return err
		}
	} else {
		zapLog.Warn("storage or repository credentials missing, running the simulated backend")
		backend = sa.NewSimulatedBackend(sa.LoadConfig(cfg), log)
	}

	orchestrator := sa.NewOrchestrator(vad.NewValidator(catalog, log), issuer, backend, obs, log)
	zapLog.Info("submission orchestrator ready", zap.String("backend", orchestrator.BackendName()))

	var zeebeWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, sa.TaskType) {
		zeebeWorker, err = startZeebeWorker(ctx, cfg, orchestrator, comps, log)
		if err != nil {
			return err
		}
	}

	server := api.NewServer(api.LoadConfig(cfg), api.Deps{
		Submitter: orchestrator,
		Catalog:   catalog,
		Checks:    comps.checks,
		Backend:   orchestrator.BackendName(),
	}, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	if zeebeWorker != nil {
		zeebeWorker.Stop()
	}
	if err := orchestrator.Wait(shutdownCtx); err != nil {
		zapLog.Warn("pending notifications abandoned", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("otel shutdown failed", zap.Error(err))
	}

	zapLog.Info("intake server stopped")
	return nil
}

func buildIssuer(cfg *config.Config, comps *components, zapLog *zap.Logger, log logger.Logger) (*tc.Issuer, error) {
	tcConfig := tc.LoadConfig(cfg)
	generator := tc.NewGenerator(tcConfig.Prefix)

	var registry tc.Registry = tc.NewMemoryRegistry(tcConfig.ReservationTTL)
	if cfg.Database.Redis.Address != "" {
		var redis *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(context.Background())
		}, 5, time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, tracking codes reserved in memory", zap.Error(err))
		} else {
			comps.closers = append(comps.closers, redis.Close)
			comps.addCheck("redis", redis.Ping)
			registry = tc.NewRedisRegistry(redis.Client, tcConfig.KeyPrefix, tcConfig.ReservationTTL)
			zapLog.Info("Redis connected successfully")
		}
	}

	return tc.NewIssuer(tcConfig, generator, registry, log), nil
}

func buildLiveBackend(
	ctx context.Context,
	cfg *config.Config,
	comps *components,
	obs *observability.Observability,
	zapLog *zap.Logger,
	log logger.Logger,
) (sa.Backend, error) {
	var sb *supabase.Client
	if cfg.Supabase.Configured() {
		var err error
		sb, err = supabase.NewClient(supabase.Config{
			URL:        cfg.Supabase.URL,
			ServiceKey: cfg.Supabase.ServiceKey,
			Timeout:    config.GetDuration(cfg.Timeouts.Upload),
		})
		if err != nil {
			return nil, fmt.Errorf("supabase client: %w", err)
		}
	}

	store, err := buildStore(ctx, cfg, sb, log)
	if err != nil {
		return nil, err
	}

	repository, err := buildRepository(cfg, sb, comps, zapLog, log)
	if err != nil {
		return nil, err
	}

	return sa.NewLiveBackend(sa.LoadConfig(cfg), store, repository, buildDispatcher(ctx, cfg, zapLog, log), obs, log), nil
}

func buildStore(ctx context.Context, cfg *config.Config, sb *supabase.Client, log logger.Logger) (as.Store, error) {
	storeConfig := as.LoadConfig(cfg)

	if cfg.Storage.Provider == config.StorageProviderS3 {
		s3Client, err := aws.NewS3Client(ctx, aws.S3Options{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return as.NewS3Store(storeConfig, s3Client, log), nil
	}

	if sb == nil {
		return nil, errors.New("supabase storage selected but supabase is not configured")
	}
	return as.NewSupabaseStore(storeConfig, sb, log), nil
}

func buildRepository(cfg *config.Config, sb *supabase.Client, comps *components, zapLog *zap.Logger, log logger.Logger) (car.Repository, error) {
	repoConfig := car.LoadConfig(cfg)

	if cfg.Repository.Provider == config.RepositoryProviderSupabase {
		if sb == nil {
			return nil, errors.New("supabase repository selected but supabase is not configured")
		}
		return car.NewSupabaseRepository(repoConfig, sb, log), nil
	}

	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(context.Background())
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		return nil, err
	}
	comps.closers = append(comps.closers, pg.Close)
	comps.addCheck("postgres", pg.Ping)
	zapLog.Info("PostgreSQL connected successfully")

	return car.NewPostgresRepository(repoConfig, pg.DB, log), nil
}

// buildDispatcher never fails. Missing mail settings yield a dispatcher that
// reports every notification as unavailable.
func buildDispatcher(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) sn.Dispatcher {
	snConfig := sn.LoadConfig(cfg)

	var (
		sesClient sn.SESService
		smsClient sn.SNSService
	)
	if snConfig.EmailEnabled {
		client, err := aws.NewSESClient(ctx, snConfig.AWSRegion)
		if err != nil {
			zapLog.Warn("ses client unavailable", zap.Error(err))
		} else {
			sesClient = client
		}
	}
	if snConfig.SMSEnabled {
		client, err := aws.NewSNSClient(ctx, snConfig.AWSRegion)
		if err != nil {
			zapLog.Warn("sns client unavailable", zap.Error(err))
		} else {
			smsClient = client
		}
	}

	return sn.New(snConfig, sesClient, smsClient, log)
}

func startZeebeWorker(ctx context.Context, cfg *config.Config, submitter sa.Submitter, comps *components, log logger.Logger) (*camunda.CamundaWorker, error) {
	client, err := camunda.NewClientWithConfig(ctx, camunda.LoadClientConfig(cfg))
	if err != nil {
		return nil, err
	}
	comps.closers = append(comps.closers, client.Close)
	comps.addCheck("zeebe", client.HealthCheck)

	saConfig := sa.LoadConfig(cfg)
	handler := sa.NewHandler(saConfig, submitter, log)

	return camunda.NewWorker(client.GetClient(), camunda.WorkerConfig{
		TaskType:      sa.TaskType,
		MaxJobsActive: saConfig.MaxJobsActive,
		Timeout:       saConfig.JobTimeout,
	}, handler, log), nil
}
