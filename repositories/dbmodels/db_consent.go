package dbmodels

import (
	"time"

	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBConsent struct {
	Id                 string      `db:"id"`
	OrgId              string      `db:"org_id"`
	ClientId           string      `db:"client_id"`
	ConsentType        string      `db:"consent_type"`
	Receipt            string      `db:"receipt"`
	CurrentStatus      string      `db:"current_status"`
	Frequency          int         `db:"frequency"`
	ValidityTime       pgtype.Int8 `db:"validity_time"`
	RecurringIndicator bool        `db:"recurring_indicator"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

const TABLE_CONSENTS = "consents"

var SelectConsentColumns = utils.ColumnList[DBConsent]()

func AdaptConsent(db DBConsent) (models.Consent, error) {
	consent := models.Consent{
		Id:                 db.Id,
		OrgId:              db.OrgId,
		ClientId:           db.ClientId,
		ConsentType:        db.ConsentType,
		Receipt:            db.Receipt,
		CurrentStatus:      db.CurrentStatus,
		Frequency:          db.Frequency,
		RecurringIndicator: db.RecurringIndicator,
		CreatedAt:          db.CreatedAt,
		UpdatedAt:          db.UpdatedAt,
	}
	if db.ValidityTime.Valid {
		consent.ValidityTime = null.IntFrom(db.ValidityTime.Int64)
	}
	return consent, nil
}
