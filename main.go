package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openbankly/consent-backend/infra"
	"github.com/openbankly/consent-backend/jobs"
	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories"
	"github.com/openbankly/consent-backend/repositories/clock"
	"github.com/openbankly/consent-backend/repositories/dialect"
	"github.com/openbankly/consent-backend/usecases"
	"github.com/openbankly/consent-backend/usecases/executor_factory"
	"github.com/openbankly/consent-backend/usecases/notifications"
	"github.com/openbankly/consent-backend/utils"
)

func newLogger(env string) *slog.Logger {
	if env == "DEV" {
		return slog.New(utils.NewLocalDevHandler(os.Stderr))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

func main() {
	var (
		env      = utils.GetStringEnv("ENV", "DEV")
		dbEngine = utils.GetStringEnv("DB_ENGINE", dialect.EnginePostgres)
		pgConfig = infra.PgConfig{
			ConnectionString:   utils.GetStringEnv("PG_CONNECTION_STRING", ""),
			Database:           utils.GetStringEnv("PG_DATABASE", "consent"),
			Hostname:           utils.GetStringEnv("PG_HOSTNAME", "localhost"),
			Password:           utils.GetRequiredStringEnv("PG_PASSWORD"),
			Port:               utils.GetStringEnv("PG_PORT", "5432"),
			User:               utils.GetRequiredStringEnv("PG_USER"),
			MaxPoolConnections: utils.GetIntEnv("PG_MAX_POOL_SIZE", infra.MAX_CONNECTIONS),
		}
		notificationConfig = infra.NotificationConfig{
			WorkerCount:          utils.GetIntEnv("NOTIFICATION_WORKER_COUNT", 5),
			QueueCapacity:        utils.GetIntEnv("NOTIFICATION_QUEUE_CAPACITY", 100),
			MaxRetries:           utils.GetIntEnv("NOTIFICATION_MAX_RETRIES", 5),
			InitialBackoff:       time.Duration(utils.GetIntEnv("NOTIFICATION_INITIAL_BACKOFF_SECONDS", 60)) * time.Second,
			BackoffFunction:      models.BackoffFunction(utils.GetStringEnv("NOTIFICATION_BACKOFF_FUNCTION", string(models.BackoffEx))),
			CircuitBreakerWindow: time.Duration(utils.GetIntEnv("NOTIFICATION_CIRCUIT_BREAKER_SECONDS", 600)) * time.Second,
			ConnectTimeout:       time.Duration(utils.GetIntEnv("NOTIFICATION_CONNECT_TIMEOUT_SECONDS", 30)) * time.Second,
			ReadTimeout:          time.Duration(utils.GetIntEnv("NOTIFICATION_READ_TIMEOUT_SECONDS", 60)) * time.Second,
			TokenIssuer:          utils.GetStringEnv("NOTIFICATION_TOKEN_ISSUER", "consent-backend"),
			SigningKeyPem:        utils.GetRequiredStringEnv("NOTIFICATION_SET_SIGNING_KEY"),
		}
		expiryConfig = jobs.ExpiryConfig{
			EligibleStatuses: []string{
				utils.GetStringEnv("CONSENT_ACTIVE_STATUS", "authorized"),
				utils.GetStringEnv("CONSENT_AWAITING_STATUS", "awaitingAuthorization"),
			},
			ExpiredStatus: utils.GetStringEnv("CONSENT_EXPIRED_STATUS", "expired"),
		}
	)

	logger := newLogger(env)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	d, err := dialect.ForEngine(dbEngine)
	if err != nil {
		logger.ErrorContext(ctx, "invalid database engine", "error", err.Error())
		os.Exit(1)
	}

	if utils.GetBoolEnv("RUN_MIGRATIONS", true) {
		if err := runMigrations(ctx, dbEngine, pgConfig); err != nil {
			logger.ErrorContext(ctx, "migrations failed", "error", err.Error())
			os.Exit(1)
		}
	}

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		pgConfig.MaxPoolConnections)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create connection pool", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	executorGetter := repositories.NewExecutorGetter(pool)
	dbExecutorFactory := executor_factory.NewDbExecutorFactory(executorGetter)
	consentStore := repositories.NewConsentDbRepository(d, clock.New())

	queue := notifications.NewQueue(notificationConfig.QueueCapacity)
	signer := notifications.NewJWTPayloadSigner(
		infra.MustParseSigningKey(notificationConfig.SigningKeyPem),
		notificationConfig.TokenIssuer,
		clock.New(),
	)
	producer := notifications.NewProducer(dbExecutorFactory, dbExecutorFactory,
		consentStore, signer, queue)

	senderPool, err := notifications.NewSenderPool(
		notifications.SenderConfig{
			WorkerCount:          notificationConfig.WorkerCount,
			MaxRetries:           notificationConfig.MaxRetries,
			InitialBackoff:       notificationConfig.InitialBackoff,
			BackoffFunction:      notificationConfig.BackoffFunction,
			CircuitBreakerWindow: notificationConfig.CircuitBreakerWindow,
			ConnectTimeout:       notificationConfig.ConnectTimeout,
			ReadTimeout:          notificationConfig.ReadTimeout,
		},
		queue,
		notifications.NewStaticHeaderGenerator(nil),
		consentStore,
		dbExecutorFactory,
		clock.New(),
	)
	if err != nil {
		logger.ErrorContext(ctx, "invalid notification configuration", "error", err.Error())
		os.Exit(1)
	}

	consentUsecase := usecases.NewConsentUsecase(dbExecutorFactory, dbExecutorFactory,
		consentStore, producer)
	recoveryLoader := notifications.NewRecoveryLoader(dbExecutorFactory, consentStore, producer)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	senderPool.Start(notify)

	// Fan undelivered notifications from a previous run back onto the queue
	// before the scheduler takes over.
	if err := recoveryLoader.Run(notify); err != nil {
		logger.ErrorContext(ctx, "notification recovery failed", "error", err.Error())
	}

	go jobs.RunScheduler(notify, consentUsecase, recoveryLoader, expiryConfig)

	<-notify.Done()
	logger.InfoContext(ctx, "shutting down, waiting for in-flight deliveries")
	senderPool.Wait()
}
