package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// CreateConsent persists a new consent row. The id and timestamps are
// generated here so callers only describe the consent's content.
func (repo *ConsentDbRepository) CreateConsent(
	ctx context.Context,
	exec Executor,
	consent models.Consent,
) (models.Consent, error) {
	if consent.Id == "" {
		consent.Id = uuid.NewString()
	}
	now := repo.clock.Now()
	consent.CreatedAt = now
	consent.UpdatedAt = now

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENTS).
		Columns(dbmodels.SelectConsentColumns...).
		Values(
			consent.Id,
			consent.OrgId,
			consent.ClientId,
			consent.ConsentType,
			consent.Receipt,
			consent.CurrentStatus,
			consent.Frequency,
			consent.ValidityTime,
			consent.RecurringIndicator,
			consent.CreatedAt,
			consent.UpdatedAt,
		)

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return models.Consent{}, insertionError(err,
			fmt.Sprintf("failed to insert consent %s", consent.Id))
	}
	return consent, nil
}

func (repo *ConsentDbRepository) GetConsent(
	ctx context.Context,
	exec Executor,
	consentId string,
) (models.Consent, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentColumns...).
		From(dbmodels.TABLE_CONSENTS).
		Where(squirrel.Eq{"id": consentId})

	consent, err := SqlToModel(ctx, exec, query, dbmodels.AdaptConsent)
	if err != nil && !errors.Is(err, models.NotFoundError) {
		return models.Consent{}, retrievalError(err,
			fmt.Sprintf("failed to retrieve consent %s", consentId))
	}
	return consent, err
}

// UpdateConsentStatus moves the consent to the given status. Writing the
// matching audit record is the caller's responsibility, inside the same
// transaction.
func (repo *ConsentDbRepository) UpdateConsentStatus(
	ctx context.Context,
	exec Executor,
	consentId string,
	status string,
) error {
	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_CONSENTS).
		Set("current_status", status).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": consentId})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err,
			fmt.Sprintf("failed to update status of consent %s", consentId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("consent %s does not exist", consentId))
	}
	return nil
}

func (repo *ConsentDbRepository) UpdateConsentReceipt(
	ctx context.Context,
	exec Executor,
	consentId string,
	receipt string,
) error {
	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_CONSENTS).
		Set("receipt", receipt).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": consentId})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err,
			fmt.Sprintf("failed to update receipt of consent %s", consentId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("consent %s does not exist", consentId))
	}
	return nil
}

func (repo *ConsentDbRepository) UpdateConsentValidityTime(
	ctx context.Context,
	exec Executor,
	consentId string,
	validityTime int64,
) error {
	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_CONSENTS).
		Set("validity_time", validityTime).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": consentId})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err,
			fmt.Sprintf("failed to update validity time of consent %s", consentId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("consent %s does not exist", consentId))
	}
	return nil
}

// ListExpiringConsents returns consents whose validity time has elapsed and
// whose status still makes expiry meaningful. Open-ended consents (null
// validity time) never match.
func (repo *ConsentDbRepository) ListExpiringConsents(
	ctx context.Context,
	exec Executor,
	eligibleStatuses []string,
) ([]models.Consent, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentColumns...).
		From(dbmodels.TABLE_CONSENTS).
		Where(squirrel.Eq{"current_status": eligibleStatuses}).
		Where(squirrel.LtOrEq{"validity_time": repo.clock.Now().Unix()}).
		OrderBy("validity_time", "id")

	consents, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptConsent)
	if err != nil {
		return nil, retrievalError(err, "failed to list expiring consents")
	}
	return consents, nil
}

// DeleteConsent purges the consent and every dependent row. This is the only
// physical delete of the store and is meant for data retention tooling, not
// for revocation (which is a status transition).
func (repo *ConsentDbRepository) DeleteConsent(
	ctx context.Context,
	exec Executor,
	consentId string,
) error {
	qb := repo.dialect.QueryBuilder()

	// History rows reference consents, authorizations and mappings through
	// record_id, so they must go first, while the child ids still exist.
	historyDelete, historyArgs, err := qb.
		Delete(dbmodels.TABLE_CONSENT_HISTORY).
		Where(fmt.Sprintf(`record_id = ?
			OR record_id IN (SELECT id FROM %s WHERE consent_id = ?)
			OR record_id IN (SELECT m.id FROM %s m
				JOIN %s a ON m.auth_id = a.id WHERE a.consent_id = ?)`,
			dbmodels.TABLE_CONSENT_AUTH_RESOURCES,
			dbmodels.TABLE_CONSENT_MAPPINGS,
			dbmodels.TABLE_CONSENT_AUTH_RESOURCES),
			consentId, consentId, consentId).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "can't build sql query")
	}
	if _, err := exec.Exec(ctx, historyDelete, historyArgs...); err != nil {
		return deletionError(err,
			fmt.Sprintf("failed to delete history of consent %s", consentId))
	}

	mappingDelete, mappingArgs, err := qb.
		Select("id").
		From(dbmodels.TABLE_CONSENT_AUTH_RESOURCES).
		Where(squirrel.Eq{"consent_id": consentId}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "can't build sql query")
	}
	if _, err := exec.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE auth_id IN (%s)",
			dbmodels.TABLE_CONSENT_MAPPINGS, mappingDelete),
		mappingArgs...); err != nil {
		return deletionError(err,
			fmt.Sprintf("failed to delete mappings of consent %s", consentId))
	}

	childTables := []string{
		dbmodels.TABLE_CONSENT_AUTH_RESOURCES,
		dbmodels.TABLE_CONSENT_ATTRIBUTES,
		dbmodels.TABLE_CONSENT_FILES,
		dbmodels.TABLE_CONSENT_STATUS_AUDIT,
	}
	for _, table := range childTables {
		query := qb.Delete(table).Where(squirrel.Eq{"consent_id": consentId})
		if _, err := ExecBuilder(ctx, exec, query); err != nil {
			return deletionError(err,
				fmt.Sprintf("failed to delete %s rows of consent %s", table, consentId))
		}
	}

	query := qb.Delete(dbmodels.TABLE_CONSENTS).Where(squirrel.Eq{"id": consentId})
	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return deletionError(err,
			fmt.Sprintf("failed to delete consent %s", consentId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("consent %s does not exist", consentId))
	}
	return nil
}
