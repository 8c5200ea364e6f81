package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// StoreConsentFile attaches the file payload to its consent. At most one file
// per consent; a second store surfaces as a unique violation.
func (repo *ConsentDbRepository) StoreConsentFile(
	ctx context.Context,
	exec Executor,
	file models.ConsentFile,
) error {
	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENT_FILES).
		Columns(dbmodels.SelectConsentFileColumns...).
		Values(file.ConsentId, file.FileContent)

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return insertionError(err,
			fmt.Sprintf("failed to insert file of consent %s", file.ConsentId))
	}
	return nil
}

func (repo *ConsentDbRepository) GetConsentFile(
	ctx context.Context,
	exec Executor,
	consentId string,
) (models.ConsentFile, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentFileColumns...).
		From(dbmodels.TABLE_CONSENT_FILES).
		Where(squirrel.Eq{"consent_id": consentId})

	return SqlToModel(ctx, exec, query, dbmodels.AdaptConsentFile)
}
