package dbmodels

import (
	"time"

	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBConsentStatusAudit struct {
	Id             string      `db:"id"`
	ConsentId      string      `db:"consent_id"`
	PreviousStatus pgtype.Text `db:"previous_status"`
	CurrentStatus  string      `db:"current_status"`
	Reason         pgtype.Text `db:"reason"`
	ActionBy       pgtype.Text `db:"action_by"`
	ActionTime     time.Time   `db:"action_time"`
}

const TABLE_CONSENT_STATUS_AUDIT = "consent_status_audit"

var SelectConsentStatusAuditColumns = utils.ColumnList[DBConsentStatusAudit]()

func AdaptConsentStatusAudit(db DBConsentStatusAudit) (models.ConsentStatusAuditRecord, error) {
	record := models.ConsentStatusAuditRecord{
		AuditId:       db.Id,
		ConsentId:     db.ConsentId,
		CurrentStatus: db.CurrentStatus,
		ActionTime:    db.ActionTime,
	}
	if db.PreviousStatus.Valid {
		record.PreviousStatus = null.StringFrom(db.PreviousStatus.String)
	}
	if db.Reason.Valid {
		record.Reason = null.StringFrom(db.Reason.String)
	}
	if db.ActionBy.Valid {
		record.ActionBy = null.StringFrom(db.ActionBy.String)
	}
	return record, nil
}
