package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories"
	"github.com/openbankly/consent-backend/repositories/clock"
	"github.com/openbankly/consent-backend/usecases/executor_factory"
	"github.com/openbankly/consent-backend/utils"
)

type SenderConfig struct {
	WorkerCount int

	// MaxRetries counts retries after the first attempt, so a delivery makes
	// at most MaxRetries+1 attempts.
	MaxRetries      int
	InitialBackoff  time.Duration
	BackoffFunction models.BackoffFunction

	// CircuitBreakerWindow bounds the wall time one delivery may consume
	// across all its attempts and backoffs.
	CircuitBreakerWindow time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

type notificationStatusUpdater interface {
	UpdateNotificationStatus(ctx context.Context, exec repositories.Executor,
		notificationId string, status models.NotificationStatus) error
}

// SenderPool drains the delivery queue with a fixed set of workers and posts
// each notification to its callback, retrying with the configured backoff.
// The terminal outcome (ACK or ERROR) is written back to the store.
type SenderPool struct {
	config          SenderConfig
	queue           *Queue
	client          *http.Client
	headers         HeaderGenerator
	repository      notificationStatusUpdater
	executorFactory executor_factory.ExecutorFactory
	clock           clock.Clock

	wg sync.WaitGroup
}

func NewSenderPool(
	config SenderConfig,
	queue *Queue,
	headers HeaderGenerator,
	repository notificationStatusUpdater,
	executorFactory executor_factory.ExecutorFactory,
	c clock.Clock,
) (*SenderPool, error) {
	switch config.BackoffFunction {
	case models.BackoffConstant, models.BackoffLinear, models.BackoffEx:
	default:
		return nil, errors.Mark(
			errors.Newf("unknown backoff function %q", config.BackoffFunction),
			models.ErrConfiguration)
	}
	if config.WorkerCount <= 0 {
		return nil, errors.Mark(
			errors.New("sender worker count must be positive"),
			models.ErrConfiguration)
	}

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: config.ConnectTimeout,
			}).DialContext,
			ResponseHeaderTimeout: config.ReadTimeout,
		},
	}

	return &SenderPool{
		config:          config,
		queue:           queue,
		client:          client,
		headers:         headers,
		repository:      repository,
		executorFactory: executorFactory,
		clock:           c,
	}, nil
}

// Start launches the workers. They stop when ctx is canceled; Wait blocks
// until the last one has returned.
func (s *SenderPool) Start(ctx context.Context) {
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.workerLoop(ctx)
		}()
	}
}

func (s *SenderPool) Wait() {
	s.wg.Wait()
}

func (s *SenderPool) workerLoop(ctx context.Context) {
	for {
		notification, err := s.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		s.process(ctx, notification)
	}
}

func (s *SenderPool) process(ctx context.Context, notification models.RealtimeEventNotification) {
	logger := utils.LoggerFromContext(ctx)

	status := s.deliver(ctx, notification)
	err := s.repository.UpdateNotificationStatus(ctx, s.executorFactory.NewExecutor(),
		notification.Notification.NotificationId, status)
	if err != nil {
		logger.ErrorContext(ctx, "failed to persist notification delivery outcome",
			"notificationId", notification.Notification.NotificationId,
			"status", string(status),
			"error", err.Error())
	}
}

// deliver runs the retry loop for one queued delivery. Only a 202 Accepted
// from the callback counts as delivered; anything else, including transport
// errors, is retried until the attempts or the circuit breaker window run
// out.
func (s *SenderPool) deliver(
	ctx context.Context,
	notification models.RealtimeEventNotification,
) models.NotificationStatus {
	logger := utils.LoggerFromContext(ctx)
	notificationId := notification.Notification.NotificationId
	start := s.clock.Now()

	for retryCount := 0; retryCount <= s.config.MaxRetries; retryCount++ {
		if retryCount > 0 {
			s.clock.Sleep(backoffFor(s.config.BackoffFunction, s.config.InitialBackoff, retryCount))
			if s.clock.Now().Sub(start) > s.config.CircuitBreakerWindow {
				logger.ErrorContext(ctx, "circuit breaker tripped, abandoning delivery",
					"notificationId", notificationId,
					"elapsed", s.clock.Now().Sub(start).String())
				return models.NotificationStatusError
			}
		}

		if err := s.post(ctx, notification); err != nil {
			logger.WarnContext(ctx, "notification delivery attempt failed",
				"notificationId", notificationId,
				"attempt", retryCount+1,
				"error", err.Error())
			continue
		}
		logger.InfoContext(ctx, "notification delivered",
			"notificationId", notificationId,
			"attempt", retryCount+1)
		return models.NotificationStatusAck
	}

	logger.ErrorContext(ctx, "notification delivery attempts exhausted",
		"notificationId", notificationId,
		"attempts", s.config.MaxRetries+1)
	return models.NotificationStatusError
}

// backoffFor computes the backoff preceding the Nth retry (N >= 1).
func backoffFor(fn models.BackoffFunction, initial time.Duration, retry int) time.Duration {
	switch fn {
	case models.BackoffLinear:
		return initial << (retry - 1)
	case models.BackoffEx:
		return time.Duration(float64(initial) * math.Exp(float64(retry)))
	default:
		return initial
	}
}

func (s *SenderPool) post(ctx context.Context, notification models.RealtimeEventNotification) error {
	body, err := json.Marshal(map[string]string{
		"notificationId": notification.Notification.NotificationId,
		"SET":            notification.SecurityEventToken,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode notification body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		notification.CallbackUrl, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build callback request")
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range s.headers.Headers() {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "callback request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return errors.New(fmt.Sprintf("callback answered %d, want %d",
			resp.StatusCode, http.StatusAccepted))
	}
	return nil
}
