package dbmodels

import (
	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/utils"
)

type DBConsentFile struct {
	ConsentId   string `db:"consent_id"`
	FileContent string `db:"file_content"`
}

const TABLE_CONSENT_FILES = "consent_files"

var SelectConsentFileColumns = utils.ColumnList[DBConsentFile]()

func AdaptConsentFile(db DBConsentFile) (models.ConsentFile, error) {
	return models.ConsentFile{
		ConsentId:   db.ConsentId,
		FileContent: db.FileContent,
	}, nil
}
