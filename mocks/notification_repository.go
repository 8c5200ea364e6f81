package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) CreateNotification(ctx context.Context, exec repositories.Executor,
	clientId string, events []models.NotificationEvent,
) (models.Notification, error) {
	args := m.Called(ctx, exec, clientId, events)
	return args.Get(0).(models.Notification), args.Error(1)
}

func (m *NotificationRepository) GetNotification(ctx context.Context, exec repositories.Executor,
	notificationId string,
) (models.Notification, error) {
	args := m.Called(ctx, exec, notificationId)
	return args.Get(0).(models.Notification), args.Error(1)
}

func (m *NotificationRepository) ListNotificationsByStatus(ctx context.Context, exec repositories.Executor,
	status models.NotificationStatus,
) ([]models.Notification, error) {
	args := m.Called(ctx, exec, status)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *NotificationRepository) ListNotificationEvents(ctx context.Context, exec repositories.Executor,
	notificationId string,
) ([]models.NotificationEvent, error) {
	args := m.Called(ctx, exec, notificationId)
	return args.Get(0).([]models.NotificationEvent), args.Error(1)
}

func (m *NotificationRepository) UpdateNotificationStatus(ctx context.Context, exec repositories.Executor,
	notificationId string, status models.NotificationStatus,
) error {
	args := m.Called(ctx, exec, notificationId, status)
	return args.Error(0)
}

func (m *NotificationRepository) ListSubscriptionsByClientId(ctx context.Context, exec repositories.Executor,
	clientId string,
) ([]models.EventSubscription, error) {
	args := m.Called(ctx, exec, clientId)
	return args.Get(0).([]models.EventSubscription), args.Error(1)
}
