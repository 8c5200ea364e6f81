package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// CreateNotification persists the notification and its events in one unit of
// work, always starting in the OPEN state. Delivery flips the status later.
func (repo *ConsentDbRepository) CreateNotification(
	ctx context.Context,
	exec Executor,
	clientId string,
	events []models.NotificationEvent,
) (models.Notification, error) {
	now := repo.clock.Now()
	notification := models.Notification{
		NotificationId: uuid.NewString(),
		ClientId:       clientId,
		Status:         models.NotificationStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_NOTIFICATIONS).
		Columns(dbmodels.SelectNotificationColumns...).
		Values(
			notification.NotificationId,
			notification.ClientId,
			string(notification.Status),
			notification.CreatedAt,
			notification.UpdatedAt,
		)
	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return models.Notification{}, insertionError(err,
			fmt.Sprintf("failed to insert notification for client %s", clientId))
	}

	if len(events) > 0 {
		eventsQuery := repo.dialect.QueryBuilder().
			Insert(dbmodels.TABLE_NOTIFICATION_EVENTS).
			Columns(dbmodels.SelectNotificationEventColumns...)
		for _, event := range events {
			eventsQuery = eventsQuery.Values(
				notification.NotificationId,
				event.EventType,
				event.EventData,
			)
		}
		if _, err := ExecBuilder(ctx, exec, eventsQuery); err != nil {
			return models.Notification{}, insertionError(err,
				fmt.Sprintf("failed to insert events of notification %s",
					notification.NotificationId))
		}
	}

	return notification, nil
}

func (repo *ConsentDbRepository) GetNotification(
	ctx context.Context,
	exec Executor,
	notificationId string,
) (models.Notification, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectNotificationColumns...).
		From(dbmodels.TABLE_NOTIFICATIONS).
		Where(squirrel.Eq{"id": notificationId})

	return SqlToModel(ctx, exec, query, dbmodels.AdaptNotification)
}

// ListNotificationsByStatus returns notifications in the given state, oldest
// first so recovery replays them in arrival order.
func (repo *ConsentDbRepository) ListNotificationsByStatus(
	ctx context.Context,
	exec Executor,
	status models.NotificationStatus,
) ([]models.Notification, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectNotificationColumns...).
		From(dbmodels.TABLE_NOTIFICATIONS).
		Where(squirrel.Eq{"status": string(status)}).
		OrderBy("created_at", "id")

	notifications, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptNotification)
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to list notifications with status %s", status))
	}
	return notifications, nil
}

func (repo *ConsentDbRepository) ListNotificationEvents(
	ctx context.Context,
	exec Executor,
	notificationId string,
) ([]models.NotificationEvent, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectNotificationEventColumns...).
		From(dbmodels.TABLE_NOTIFICATION_EVENTS).
		Where(squirrel.Eq{"notification_id": notificationId}).
		OrderBy("event_type")

	events, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptNotificationEvent)
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to list events of notification %s", notificationId))
	}
	return events, nil
}

func (repo *ConsentDbRepository) UpdateNotificationStatus(
	ctx context.Context,
	exec Executor,
	notificationId string,
	status models.NotificationStatus,
) error {
	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_NOTIFICATIONS).
		Set("status", string(status)).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": notificationId})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err,
			fmt.Sprintf("failed to update status of notification %s", notificationId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("notification %s does not exist", notificationId))
	}
	return nil
}

// ListSubscriptionsByClientId reads the subscriptions owned by the
// subscription-management collaborator. This subsystem never writes them.
func (repo *ConsentDbRepository) ListSubscriptionsByClientId(
	ctx context.Context,
	exec Executor,
	clientId string,
) ([]models.EventSubscription, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectEventSubscriptionColumns...).
		From(dbmodels.TABLE_EVENT_SUBSCRIPTIONS).
		Where(squirrel.Eq{"client_id": clientId}).
		OrderBy("id")

	subscriptions, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptEventSubscription)
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to list subscriptions of client %s", clientId))
	}
	return subscriptions, nil
}
