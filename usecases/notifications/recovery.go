package notifications

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories"
	"github.com/openbankly/consent-backend/usecases/executor_factory"
	"github.com/openbankly/consent-backend/utils"
)

type RecoveryRepository interface {
	GetNotification(ctx context.Context, exec repositories.Executor,
		notificationId string) (models.Notification, error)
	ListNotificationsByStatus(ctx context.Context, exec repositories.Executor,
		status models.NotificationStatus) ([]models.Notification, error)
	ListNotificationEvents(ctx context.Context, exec repositories.Executor,
		notificationId string) ([]models.NotificationEvent, error)
}

// RecoveryLoader re-drives notifications left in OPEN status by a previous
// run, e.g. after a crash between persisting and delivering. It reuses the
// producer's fan-out, so a recovered notification goes through the exact same
// path as a fresh one.
type RecoveryLoader struct {
	executorFactory executor_factory.ExecutorFactory
	repository      RecoveryRepository
	producer        *Producer
}

func NewRecoveryLoader(
	executorFactory executor_factory.ExecutorFactory,
	repository RecoveryRepository,
	producer *Producer,
) RecoveryLoader {
	return RecoveryLoader{
		executorFactory: executorFactory,
		repository:      repository,
		producer:        producer,
	}
}

// Run is idempotent: it only touches notifications still in OPEN status at
// the moment they are re-driven, and fan-out itself never flips the status,
// so running it twice enqueues the same deliveries, not duplicate ACKs.
func (loader RecoveryLoader) Run(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)
	exec := loader.executorFactory.NewExecutor()

	open, err := loader.repository.ListNotificationsByStatus(ctx, exec,
		models.NotificationStatusOpen)
	if err != nil {
		return err
	}
	if len(open) == 0 {
		logger.InfoContext(ctx, "no notifications to recover")
		return nil
	}
	logger.InfoContext(ctx, "recovering undelivered notifications", "count", len(open))

	for _, notification := range open {
		// Re-check right before re-driving: a sender may have finished this
		// notification since the list was read.
		current, err := loader.repository.GetNotification(ctx, exec,
			notification.NotificationId)
		if err != nil {
			logger.ErrorContext(ctx, "failed to re-read notification, skipping",
				"notificationId", notification.NotificationId, "error", err.Error())
			continue
		}
		if current.Status != models.NotificationStatusOpen {
			continue
		}

		events, err := loader.repository.ListNotificationEvents(ctx, exec,
			notification.NotificationId)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load notification events, skipping",
				"notificationId", notification.NotificationId, "error", err.Error())
			continue
		}

		err = loader.producer.fanOut(ctx, current, events)
		switch {
		case errors.Is(err, models.ErrNoSubscriptions):
			logger.DebugContext(ctx, "no subscriptions for recovered notification",
				"notificationId", notification.NotificationId)
		case err != nil:
			logger.ErrorContext(ctx, "failed to re-drive notification",
				"notificationId", notification.NotificationId, "error", err.Error())
		}
	}
	return nil
}
