package dbmodels

import (
	"time"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBConsentHistoryEntry struct {
	HistoryId         string    `db:"history_id"`
	RecordId          string    `db:"record_id"`
	RecordType        string    `db:"record_type"`
	ChangedAttributes string    `db:"changed_attributes"`
	Reason            string    `db:"reason"`
	EffectiveAt       time.Time `db:"effective_at"`
}

const TABLE_CONSENT_HISTORY = "consent_history"

var SelectConsentHistoryColumns = utils.ColumnList[DBConsentHistoryEntry]()

func AdaptConsentHistoryEntry(db DBConsentHistoryEntry) (models.ConsentHistoryEntry, error) {
	return models.ConsentHistoryEntry{
		HistoryId:         db.HistoryId,
		RecordId:          db.RecordId,
		RecordType:        models.ConsentHistoryRecordType(db.RecordType),
		ChangedAttributes: db.ChangedAttributes,
		Reason:            db.Reason,
		EffectiveAt:       db.EffectiveAt,
	}, nil
}
