package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbankly/consent-backend/mocks"
	"github.com/openbankly/consent-backend/models"
)

type ProducerTestSuite struct {
	suite.Suite
	exec               *mocks.Executor
	transaction        *mocks.Transaction
	transactionFactory *mocks.TransactionFactory
	executorFactory    *mocks.ExecutorFactory
	repository         *mocks.NotificationRepository
	signer             *mocks.EventPayloadSigner
	queue              *Queue

	notification models.Notification
	events       []models.NotificationEvent
	ctx          context.Context
}

func (suite *ProducerTestSuite) SetupTest() {
	suite.exec = new(mocks.Executor)
	suite.transaction = new(mocks.Transaction)
	suite.transactionFactory = &mocks.TransactionFactory{TxMock: suite.transaction}
	suite.executorFactory = new(mocks.ExecutorFactory)
	suite.repository = new(mocks.NotificationRepository)
	suite.signer = new(mocks.EventPayloadSigner)
	suite.queue = NewQueue(10)

	suite.notification = models.Notification{
		NotificationId: "notif-1",
		ClientId:       "client-1",
		Status:         models.NotificationStatusOpen,
	}
	suite.events = []models.NotificationEvent{{
		EventType: "consent_status_updated",
		EventData: json.RawMessage(`{"consentId":"consent-1"}`),
	}}
	suite.ctx = context.Background()
}

func (suite *ProducerTestSuite) makeProducer() *Producer {
	return NewProducer(suite.executorFactory, suite.transactionFactory,
		suite.repository, suite.signer, suite.queue)
}

func (suite *ProducerTestSuite) AssertExpectations() {
	t := suite.T()
	suite.repository.AssertExpectations(t)
	suite.signer.AssertExpectations(t)
}

func (suite *ProducerTestSuite) Test_EnqueueNotification_nominal() {
	subscriptions := []models.EventSubscription{
		{SubscriptionId: "sub-1", ClientId: "client-1",
			CallbackUrl: "https://tpp-one.example/events"},
		{SubscriptionId: "sub-2", ClientId: "client-1",
			CallbackUrl: "https://tpp-two.example/events",
			EventTypes:  []string{"consent_status_updated"}},
	}

	suite.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.repository.On("CreateNotification", suite.ctx, suite.transaction,
		"client-1", suite.events).Return(suite.notification, nil)
	suite.executorFactory.On("NewExecutor").Return(suite.exec)
	suite.repository.On("ListSubscriptionsByClientId", suite.ctx, suite.exec, "client-1").
		Return(subscriptions, nil)
	suite.signer.On("Sign", suite.ctx, suite.notification, suite.events).
		Return("signed-token", nil)

	notification, err := suite.makeProducer().EnqueueNotification(suite.ctx,
		"client-1", suite.events)

	t := suite.T()
	assert.NoError(t, err)
	assert.Equal(t, "notif-1", notification.NotificationId)
	assert.Equal(t, 2, suite.queue.Len())

	queued, err := suite.queue.Dequeue(suite.ctx)
	assert.NoError(t, err)
	assert.Equal(t, "https://tpp-one.example/events", queued.CallbackUrl)
	assert.Equal(t, "signed-token", queued.SecurityEventToken)
	assert.Equal(t, "notif-1", queued.Notification.NotificationId)
	suite.AssertExpectations()
}

func (suite *ProducerTestSuite) Test_EnqueueNotification_noSubscriptions() {
	suite.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.repository.On("CreateNotification", suite.ctx, suite.transaction,
		"client-1", suite.events).Return(suite.notification, nil)
	suite.executorFactory.On("NewExecutor").Return(suite.exec)
	suite.repository.On("ListSubscriptionsByClientId", suite.ctx, suite.exec, "client-1").
		Return([]models.EventSubscription{}, nil)

	notification, err := suite.makeProducer().EnqueueNotification(suite.ctx,
		"client-1", suite.events)

	t := suite.T()
	// The notification is persisted and stays OPEN for a later re-drive.
	assert.True(t, errors.Is(err, models.ErrNoSubscriptions))
	assert.Equal(t, "notif-1", notification.NotificationId)
	assert.Equal(t, 0, suite.queue.Len())
	suite.signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
	suite.AssertExpectations()
}

// A client with subscriptions that just do not cover these event types is not
// an error: nothing is deliverable right now and the notification stays OPEN.
func (suite *ProducerTestSuite) Test_EnqueueNotification_noSubscriptionMatchesEventTypes() {
	subscriptions := []models.EventSubscription{
		{SubscriptionId: "sub-1", ClientId: "client-1",
			CallbackUrl: "https://tpp-one.example/events",
			EventTypes:  []string{"account_updated"}},
	}

	suite.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.repository.On("CreateNotification", suite.ctx, suite.transaction,
		"client-1", suite.events).Return(suite.notification, nil)
	suite.executorFactory.On("NewExecutor").Return(suite.exec)
	suite.repository.On("ListSubscriptionsByClientId", suite.ctx, suite.exec, "client-1").
		Return(subscriptions, nil)

	notification, err := suite.makeProducer().EnqueueNotification(suite.ctx,
		"client-1", suite.events)

	t := suite.T()
	assert.NoError(t, err)
	assert.Equal(t, "notif-1", notification.NotificationId)
	assert.Equal(t, 0, suite.queue.Len())
	suite.signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
	suite.AssertExpectations()
}

func (suite *ProducerTestSuite) Test_EnqueueNotification_skipsSubscriptionsWithoutCallback() {
	subscriptions := []models.EventSubscription{
		{SubscriptionId: "sub-1", ClientId: "client-1", CallbackUrl: ""},
		{SubscriptionId: "sub-2", ClientId: "client-1",
			CallbackUrl: "https://tpp-two.example/events"},
	}

	suite.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.repository.On("CreateNotification", suite.ctx, suite.transaction,
		"client-1", suite.events).Return(suite.notification, nil)
	suite.executorFactory.On("NewExecutor").Return(suite.exec)
	suite.repository.On("ListSubscriptionsByClientId", suite.ctx, suite.exec, "client-1").
		Return(subscriptions, nil)
	suite.signer.On("Sign", suite.ctx, suite.notification, suite.events).
		Return("signed-token", nil)

	_, err := suite.makeProducer().EnqueueNotification(suite.ctx, "client-1", suite.events)

	t := suite.T()
	assert.NoError(t, err)
	assert.Equal(t, 1, suite.queue.Len())
	suite.AssertExpectations()
}

func (suite *ProducerTestSuite) Test_EnqueueNotification_signingFailure() {
	subscriptions := []models.EventSubscription{
		{SubscriptionId: "sub-1", ClientId: "client-1",
			CallbackUrl: "https://tpp-one.example/events"},
	}

	suite.transactionFactory.On("Transaction", suite.ctx, mock.Anything).Return(nil)
	suite.repository.On("CreateNotification", suite.ctx, suite.transaction,
		"client-1", suite.events).Return(suite.notification, nil)
	suite.executorFactory.On("NewExecutor").Return(suite.exec)
	suite.repository.On("ListSubscriptionsByClientId", suite.ctx, suite.exec, "client-1").
		Return(subscriptions, nil)
	suite.signer.On("Sign", suite.ctx, suite.notification, suite.events).
		Return("", errors.New("bad key"))

	_, err := suite.makeProducer().EnqueueNotification(suite.ctx, "client-1", suite.events)

	t := suite.T()
	assert.True(t, errors.Is(err, models.ErrSigningFailure))
	assert.Equal(t, 0, suite.queue.Len())
	suite.AssertExpectations()
}

func (suite *ProducerTestSuite) Test_EnqueueNotification_rejectsEmptyInput() {
	t := suite.T()

	_, err := suite.makeProducer().EnqueueNotification(suite.ctx, "", suite.events)
	assert.True(t, errors.Is(err, models.BadParameterError))

	_, err = suite.makeProducer().EnqueueNotification(suite.ctx, "client-1", nil)
	assert.True(t, errors.Is(err, models.BadParameterError))
	suite.AssertExpectations()
}

func TestProducer(t *testing.T) {
	suite.Run(t, new(ProducerTestSuite))
}
