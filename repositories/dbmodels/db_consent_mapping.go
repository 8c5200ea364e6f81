package dbmodels

import (
	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBConsentMapping struct {
	Id            string `db:"id"`
	AuthId        string `db:"auth_id"`
	Resource      string `db:"resource"`
	Permission    string `db:"permission"`
	MappingStatus string `db:"mapping_status"`
}

const TABLE_CONSENT_MAPPINGS = "consent_mappings"

var SelectConsentMappingColumns = utils.ColumnList[DBConsentMapping]()

func AdaptConsentMapping(db DBConsentMapping) (models.ConsentMappingResource, error) {
	return models.ConsentMappingResource{
		Id:              db.Id,
		AuthorizationId: db.AuthId,
		Resource:        db.Resource,
		Permission:      db.Permission,
		MappingStatus:   db.MappingStatus,
	}, nil
}
