// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobmate-backend/internal/auth"
	"jobmate-backend/internal/cache"
	commonaws "jobmate-backend/internal/common/aws"
	"jobmate-backend/internal/common/config"
	"jobmate-backend/internal/common/database"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/common/observability"
	"jobmate-backend/internal/mlclient"
	"jobmate-backend/internal/notify"
	"jobmate-backend/internal/scheduler"
	"jobmate-backend/internal/search"
	"jobmate-backend/internal/server"
	"jobmate-backend/internal/service"
	"jobmate-backend/internal/store"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting jobmate backend...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
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
	zapLog.Info("PostgreSQL connected successfully")

	if err := pg.Migrate(); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
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
	zapLog.Info("Redis connected successfully")

	// --- Search index bootstrap ---
	jobIndex := search.NewJobIndex(esClient.Client, cfg.Search.JobsIndex, log)
	if err := esClient.EnsureIndex(ctx, cfg.Search.JobsIndex, jobIndex.Mapping()); err != nil {
		zapLog.Fatal("jobs index bootstrap failed", zap.Error(err))
	}

	// --- AWS clients ---
	sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SES client init failed", zap.Error(err))
	}
	snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SNS client init failed", zap.Error(err))
	}

	// --- Stores ---
	db := pg.GetDB()
	userStore := store.NewUserStore(db, log)
	companyStore := store.NewCompanyStore(db, log)
	jobStore := store.NewJobStore(db, log)
	applicationStore := store.NewApplicationStore(db, log)
	chatStore := store.NewChatStore(db, log)
	analysisStore := store.NewAnalysisStore(db, log)
	auditStore := store.NewAuditStore(db, log)

	// --- Caches and auth ---
	denylist := cache.NewTokenDenylist(redis.Client, log)
	conversationCache := cache.NewConversationCache(
		redis.Client,
		time.Duration(cfg.Cache.ConversationTTL)*time.Millisecond,
		log,
	)
	tokenService := auth.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		time.Duration(cfg.Auth.TokenTTL)*time.Millisecond,
		denylist,
		log,
	)

	// --- ML client ---
	mlClient := mlclient.New(&mlclient.Config{
		BaseURL:      cfg.ML.BaseURL,
		SharedSecret: cfg.ML.SharedSecret,
		Timeout:      time.Duration(cfg.ML.Timeout) * time.Millisecond,
		MaxRetries:   cfg.ML.MaxRetries,
		RetryDelay:   time.Duration(cfg.ML.RetryDelay) * time.Millisecond,
	}, log)

	// --- Notifications ---
	notifier, err := notify.New(&notify.Config{
		EmailEnabled:  cfg.Notifications.Email.Enabled,
		SMSEnabled:    cfg.Notifications.SMS.Enabled,
		FromEmail:     cfg.Notifications.Email.FromEmail,
		TemplatesPath: cfg.Notifications.TemplatesPath,
	}, sesClient, snsClient, userStore, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	// --- Services ---
	analysisService := service.NewAnalysisService(
		analysisStore, userStore, jobStore, applicationStore, mlClient,
		time.Duration(cfg.ML.AnalysisTTL)*time.Millisecond, log,
	)
	userService := service.NewUserService(userStore, tokenService, analysisService, cfg.Auth.BcryptCost, log)
	companyService := service.NewCompanyService(companyStore, userStore, log)
	jobService := service.NewJobService(jobStore, userStore, jobIndex, log)
	recommendationService := service.NewRecommendationService(userStore, jobStore, jobIndex, log)
	applicationService := service.NewApplicationService(
		applicationStore, jobStore, userStore, auditStore, notifier, log,
	)
	chatService := service.NewChatService(chatStore, conversationCache, mlClient, log)

	// --- HTTP server ---
	srv := server.New(cfg.Server, server.Deps{
		Tokens:          tokenService,
		Users:           userService,
		Companies:       companyService,
		Jobs:            jobService,
		Recommendations: recommendationService,
		Applications:    applicationService,
		Chat:            chatService,
		Analysis:        analysisService,
		ReadyChecks: map[string]server.HealthCheck{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
			"elasticsearch": func(ctx context.Context) error {
				return esClient.Info(ctx)
			},
		},
		// ML outages degrade chat and analyses per-request; they must not
		// take the whole backend out of rotation.
		OptionalChecks: map[string]server.HealthCheck{
			"ml_service": func(ctx context.Context) error {
				_, err := mlClient.Health(ctx)
				return err
			},
		},
		Observability: obs,
	}, log)

	// --- Maintenance scheduler ---
	var maintenance *scheduler.Scheduler
	if cfg.Maintenance.Enabled {
		maintenance, err = scheduler.New(cfg.Maintenance.AnalysisSweepCron, analysisService, log)
		if err != nil {
			zapLog.Fatal("scheduler init failed", zap.Error(err))
		}
		maintenance.Start()
	}

	// --- Lifecycle ---
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(srv.Start)

	group.Go(func() error {
		<-groupCtx.Done()
		zapLog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
		defer cancel()

		if maintenance != nil {
			if err := maintenance.Stop(); err != nil {
				zapLog.Warn("scheduler stop failed", zap.Error(err))
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		zapLog.Fatal("server exited with error", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
