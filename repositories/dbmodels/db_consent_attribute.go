package dbmodels

import (
	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBConsentAttribute struct {
	ConsentId string `db:"consent_id"`
	AttKey    string `db:"att_key"`
	AttValue  string `db:"att_value"`
}

const TABLE_CONSENT_ATTRIBUTES = "consent_attributes"

var SelectConsentAttributeColumns = utils.ColumnList[DBConsentAttribute]()

func AdaptConsentAttribute(db DBConsentAttribute) (models.ConsentAttribute, error) {
	return models.ConsentAttribute{
		ConsentId: db.ConsentId,
		Key:       db.AttKey,
		Value:     db.AttValue,
	}, nil
}
