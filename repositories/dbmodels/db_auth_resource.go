package dbmodels

import (
	"time"

	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBAuthorizationResource struct {
	Id         string      `db:"id"`
	ConsentId  string      `db:"consent_id"`
	AuthType   string      `db:"auth_type"`
	UserId     pgtype.Text `db:"user_id"`
	AuthStatus string      `db:"auth_status"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

const TABLE_CONSENT_AUTH_RESOURCES = "consent_auth_resources"

var SelectAuthorizationResourceColumns = utils.ColumnList[DBAuthorizationResource]()

func AdaptAuthorizationResource(db DBAuthorizationResource) (models.AuthorizationResource, error) {
	auth := models.AuthorizationResource{
		Id:         db.Id,
		ConsentId:  db.ConsentId,
		AuthType:   db.AuthType,
		AuthStatus: db.AuthStatus,
		UpdatedAt:  db.UpdatedAt,
	}
	if db.UserId.Valid {
		auth.UserId = null.StringFrom(db.UserId.String)
	}
	return auth, nil
}
