package models

import (
	"encoding/json"
	"time"
)

type NotificationStatus string

const (
	NotificationStatusOpen  NotificationStatus = "OPEN"
	NotificationStatusAck   NotificationStatus = "ACK"
	NotificationStatusError NotificationStatus = "ERROR"
)

// Notification is the persisted unit of the delivery pipeline. Status moves
// from OPEN to ACK on a confirmed delivery, or to ERROR when delivery is
// exhausted; only OPEN rows are re-driven, ERROR is terminal.
type Notification struct {
	NotificationId string
	ClientId       string
	Status         NotificationStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type NotificationEvent struct {
	NotificationId string
	EventType      string
	EventData      json.RawMessage
}

// EventSubscription is owned by a subscription-management collaborator and
// read-only from this subsystem's perspective.
type EventSubscription struct {
	SubscriptionId string
	ClientId       string
	CallbackUrl    string
	EventTypes     []string
}

// RealtimeEventNotification lives only inside the delivery queue, never
// persisted. SecurityEventToken is the signed, ready-to-send payload.
type RealtimeEventNotification struct {
	Notification       Notification
	CallbackUrl        string
	SecurityEventToken string
}

// BackoffFunction selects how the sender recomputes its backoff between
// delivery retries. An unrecognized value is a fatal configuration error.
type BackoffFunction string

const (
	BackoffConstant BackoffFunction = "CONSTANT"
	BackoffLinear   BackoffFunction = "LINEAR"
	BackoffEx       BackoffFunction = "EX"
)
