package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openbankly/consent-backend/models"
)

type ConsentEventNotifier struct {
	mock.Mock
}

func (m *ConsentEventNotifier) EnqueueNotification(ctx context.Context, clientId string,
	events []models.NotificationEvent,
) (models.Notification, error) {
	args := m.Called(ctx, clientId, events)
	return args.Get(0).(models.Notification), args.Error(1)
}
