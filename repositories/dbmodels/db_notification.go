package dbmodels

import (
	"encoding/json"
	"time"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBNotification struct {
	Id        string    `db:"id"`
	ClientId  string    `db:"client_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const TABLE_NOTIFICATIONS = "notifications"

var SelectNotificationColumns = utils.ColumnList[DBNotification]()

func AdaptNotification(db DBNotification) (models.Notification, error) {
	return models.Notification{
		NotificationId: db.Id,
		ClientId:       db.ClientId,
		Status:         models.NotificationStatus(db.Status),
		CreatedAt:      db.CreatedAt,
		UpdatedAt:      db.UpdatedAt,
	}, nil
}

type DBNotificationEvent struct {
	NotificationId string          `db:"notification_id"`
	EventType      string          `db:"event_type"`
	EventData      json.RawMessage `db:"event_data"`
}

const TABLE_NOTIFICATION_EVENTS = "notification_events"

var SelectNotificationEventColumns = utils.ColumnList[DBNotificationEvent]()

func AdaptNotificationEvent(db DBNotificationEvent) (models.NotificationEvent, error) {
	return models.NotificationEvent{
		NotificationId: db.NotificationId,
		EventType:      db.EventType,
		EventData:      db.EventData,
	}, nil
}

type DBEventSubscription struct {
	Id          string   `db:"id"`
	ClientId    string   `db:"client_id"`
	CallbackUrl string   `db:"callback_url"`
	EventTypes  []string `db:"event_types"`
}

const TABLE_EVENT_SUBSCRIPTIONS = "event_subscriptions"

var SelectEventSubscriptionColumns = utils.ColumnList[DBEventSubscription]()

func AdaptEventSubscription(db DBEventSubscription) (models.EventSubscription, error) {
	return models.EventSubscription{
		SubscriptionId: db.Id,
		ClientId:       db.ClientId,
		CallbackUrl:    db.CallbackUrl,
		EventTypes:     db.EventTypes,
	}, nil
}
