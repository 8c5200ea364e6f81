package notifications

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/openbankly/consent-backend/models"
)

// Queue is the in-process buffer between the producer and the sender pool.
// It is bounded: when the senders fall behind, Enqueue blocks the producer
// instead of letting the backlog grow without limit. Queued notifications are
// already persisted in OPEN status, so anything lost on shutdown is picked up
// again by the startup recovery pass.
type Queue struct {
	ch chan models.RealtimeEventNotification
}

func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan models.RealtimeEventNotification, capacity),
	}
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, notification models.RealtimeEventNotification) error {
	select {
	case q.ch <- notification:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "notification queue enqueue aborted")
	}
}

// Dequeue blocks while the queue is empty, until ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (models.RealtimeEventNotification, error) {
	select {
	case notification := <-q.ch:
		return notification, nil
	case <-ctx.Done():
		return models.RealtimeEventNotification{}, errors.Wrap(ctx.Err(),
			"notification queue dequeue aborted")
	}
}

func (q *Queue) Len() int {
	return len(q.ch)
}
