package notifications

import (
	"context"
	"crypto/rsa"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/clock"
)

// EventPayloadSigner turns a notification and its events into the signed
// token posted to the client's callback.
type EventPayloadSigner interface {
	Sign(ctx context.Context, notification models.Notification,
		events []models.NotificationEvent) (string, error)
}

// JWTPayloadSigner issues an RS256 security event token. The receiving client
// verifies it against the published public key before trusting the events.
type JWTPayloadSigner struct {
	privateKey *rsa.PrivateKey
	issuer     string
	clock      clock.Clock
}

func NewJWTPayloadSigner(privateKey *rsa.PrivateKey, issuer string, c clock.Clock) JWTPayloadSigner {
	return JWTPayloadSigner{
		privateKey: privateKey,
		issuer:     issuer,
		clock:      c,
	}
}

func (signer JWTPayloadSigner) Sign(
	ctx context.Context,
	notification models.Notification,
	events []models.NotificationEvent,
) (string, error) {
	eventsClaim := make(map[string]json.RawMessage, len(events))
	for _, event := range events {
		eventsClaim[event.EventType] = event.EventData
	}

	now := signer.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":    signer.issuer,
		"iat":    now.Unix(),
		"jti":    notification.NotificationId,
		"aud":    notification.ClientId,
		"txn":    notification.NotificationId,
		"toe":    notification.CreatedAt.Unix(),
		"events": eventsClaim,
	})

	signed, err := token.SignedString(signer.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign event payload")
	}
	return signed, nil
}
