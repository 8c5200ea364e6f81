package repositories

import (
	"github.com/openbankly/consent-backend/repositories/clock"
	"github.com/openbankly/consent-backend/repositories/dialect"
)

// ConsentDbRepository implements every persistence concern of the consent
// store against the dialect resolved at startup. All methods take an Executor
// so the caller decides the transaction boundary.
type ConsentDbRepository struct {
	dialect dialect.Dialect
	clock   clock.Clock
}

func NewConsentDbRepository(d dialect.Dialect, c clock.Clock) *ConsentDbRepository {
	return &ConsentDbRepository{
		dialect: d,
		clock:   c,
	}
}
