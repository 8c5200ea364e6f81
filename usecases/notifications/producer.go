package notifications

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/pure_utils"
	"github.com/openbankly/consent-backend/repositories"
	"github.com/openbankly/consent-backend/usecases/executor_factory"
	"github.com/openbankly/consent-backend/utils"
)

type ProducerRepository interface {
	CreateNotification(ctx context.Context, exec repositories.Executor,
		clientId string, events []models.NotificationEvent) (models.Notification, error)
	ListSubscriptionsByClientId(ctx context.Context, exec repositories.Executor,
		clientId string) ([]models.EventSubscription, error)
}

// Producer persists incoming notifications and fans them out onto the
// delivery queue, one queue entry per matching subscription.
type Producer struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         ProducerRepository
	signer             EventPayloadSigner
	queue              *Queue
}

func NewProducer(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository ProducerRepository,
	signer EventPayloadSigner,
	queue *Queue,
) *Producer {
	return &Producer{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		signer:             signer,
		queue:              queue,
	}
}

// EnqueueNotification persists the notification in OPEN status, then fans it
// out. Persistence comes first: once the row is committed the notification
// survives a crash and the startup recovery pass will fan it out again.
func (p *Producer) EnqueueNotification(
	ctx context.Context,
	clientId string,
	events []models.NotificationEvent,
) (models.Notification, error) {
	if clientId == "" {
		return models.Notification{}, errors.Wrap(models.BadParameterError,
			"client id is required")
	}
	if len(events) == 0 {
		return models.Notification{}, errors.Wrap(models.BadParameterError,
			"a notification needs at least one event")
	}

	notification, err := executor_factory.TransactionReturnValue(ctx, p.transactionFactory,
		func(tx repositories.Executor) (models.Notification, error) {
			return p.repository.CreateNotification(ctx, tx, clientId, events)
		})
	if err != nil {
		return models.Notification{}, err
	}

	if err := p.fanOut(ctx, notification, events); err != nil {
		return notification, err
	}
	return notification, nil
}

// fanOut resolves the client's subscriptions, signs the payload once and
// enqueues one delivery per matching callback. Either way the notification
// stays OPEN until a sender acknowledges it, so a later subscription change
// plus a re-drive can still deliver it.
func (p *Producer) fanOut(
	ctx context.Context,
	notification models.Notification,
	events []models.NotificationEvent,
) error {
	logger := utils.LoggerFromContext(ctx)

	subscriptions, err := p.repository.ListSubscriptionsByClientId(ctx,
		p.executorFactory.NewExecutor(), notification.ClientId)
	if err != nil {
		return err
	}
	if len(subscriptions) == 0 {
		return errors.Wrap(models.ErrNoSubscriptions,
			fmt.Sprintf("client %s, notification %s",
				notification.ClientId, notification.NotificationId))
	}

	matching := pure_utils.Filter(subscriptions, func(subscription models.EventSubscription) bool {
		if subscription.CallbackUrl == "" {
			logger.DebugContext(ctx, "skipping subscription without callback url",
				"subscriptionId", subscription.SubscriptionId)
			return false
		}
		return subscribesToAny(subscription, events)
	})
	// Subscriptions exist but none covers these events: nothing to deliver
	// right now, not a client configuration problem.
	if len(matching) == 0 {
		logger.DebugContext(ctx, "no subscription matches the notification events",
			"clientId", notification.ClientId,
			"notificationId", notification.NotificationId)
		return nil
	}

	token, err := p.signer.Sign(ctx, notification, events)
	if err != nil {
		return errors.Mark(err, models.ErrSigningFailure)
	}

	for _, subscription := range matching {
		err := p.queue.Enqueue(ctx, models.RealtimeEventNotification{
			Notification:       notification,
			CallbackUrl:        subscription.CallbackUrl,
			SecurityEventToken: token,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// A subscription with no event type restriction matches everything.
func subscribesToAny(subscription models.EventSubscription, events []models.NotificationEvent) bool {
	if len(subscription.EventTypes) == 0 {
		return true
	}
	for _, event := range events {
		for _, subscribed := range subscription.EventTypes {
			if event.EventType == subscribed {
				return true
			}
		}
	}
	return false
}
