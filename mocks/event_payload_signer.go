package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openbankly/consent-backend/models"
)

type EventPayloadSigner struct {
	mock.Mock
}

func (m *EventPayloadSigner) Sign(ctx context.Context, notification models.Notification,
	events []models.NotificationEvent,
) (string, error) {
	args := m.Called(ctx, notification, events)
	return args.String(0), args.Error(1)
}
