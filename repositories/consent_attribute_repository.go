package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// StoreConsentAttributes inserts the given attributes. Keys are unique per
// consent, so storing an existing key surfaces as a unique violation; use
// UpdateConsentAttributes to replace values.
func (repo *ConsentDbRepository) StoreConsentAttributes(
	ctx context.Context,
	exec Executor,
	consentId string,
	attributes map[string]string,
) error {
	if len(attributes) == 0 {
		return nil
	}

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENT_ATTRIBUTES).
		Columns(dbmodels.SelectConsentAttributeColumns...)

	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query = query.Values(consentId, key, attributes[key])
	}

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return insertionError(err,
			fmt.Sprintf("failed to insert attributes of consent %s", consentId))
	}
	return nil
}

func (repo *ConsentDbRepository) GetConsentAttributes(
	ctx context.Context,
	exec Executor,
	consentId string,
) (map[string]string, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentAttributeColumns...).
		From(dbmodels.TABLE_CONSENT_ATTRIBUTES).
		Where(squirrel.Eq{"consent_id": consentId}).
		OrderBy("att_key")

	attributes, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptConsentAttribute)
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to retrieve attributes of consent %s", consentId))
	}

	out := make(map[string]string, len(attributes))
	for _, attribute := range attributes {
		out[attribute.Key] = attribute.Value
	}
	return out, nil
}

// UpdateConsentAttributes replaces the values of the given keys with a delete
// then insert, which behaves identically on every supported engine.
func (repo *ConsentDbRepository) UpdateConsentAttributes(
	ctx context.Context,
	exec Executor,
	consentId string,
	attributes map[string]string,
) error {
	if len(attributes) == 0 {
		return nil
	}

	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	if err := repo.DeleteConsentAttributes(ctx, exec, consentId, keys); err != nil {
		return err
	}
	return repo.StoreConsentAttributes(ctx, exec, consentId, attributes)
}

func (repo *ConsentDbRepository) DeleteConsentAttributes(
	ctx context.Context,
	exec Executor,
	consentId string,
	keys []string,
) error {
	if len(keys) == 0 {
		return nil
	}

	query := repo.dialect.QueryBuilder().
		Delete(dbmodels.TABLE_CONSENT_ATTRIBUTES).
		Where(squirrel.Eq{"consent_id": consentId}).
		Where(squirrel.Eq{"att_key": keys})

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return deletionError(err,
			fmt.Sprintf("failed to delete attributes of consent %s", consentId))
	}
	return nil
}

// ListConsentAttributesByName returns consent id -> value for every consent
// carrying the given attribute key.
func (repo *ConsentDbRepository) ListConsentAttributesByName(
	ctx context.Context,
	exec Executor,
	key string,
) (map[string]string, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentAttributeColumns...).
		From(dbmodels.TABLE_CONSENT_ATTRIBUTES).
		Where(squirrel.Eq{"att_key": key}).
		OrderBy("consent_id")

	attributes, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptConsentAttribute)
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to retrieve attributes named %s", key))
	}

	out := make(map[string]string, len(attributes))
	for _, attribute := range attributes {
		out[attribute.ConsentId] = attribute.Value
	}
	return out, nil
}

func (repo *ConsentDbRepository) ListConsentIdsByAttributeNameAndValue(
	ctx context.Context,
	exec Executor,
	key string,
	value string,
) ([]string, error) {
	query := repo.dialect.QueryBuilder().
		Select("consent_id").
		From(dbmodels.TABLE_CONSENT_ATTRIBUTES).
		Where(squirrel.Eq{"att_key": key, "att_value": value}).
		OrderBy("consent_id")

	type row struct {
		ConsentId string `db:"consent_id"`
	}
	consentIds, err := SqlToListOfModels(ctx, exec, query,
		func(db row) (string, error) { return db.ConsentId, nil })
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to retrieve consent ids for attribute %s", key))
	}
	return consentIds, nil
}

// ExtractAttributeValue is a convenience single-consent single-key read.
func (repo *ConsentDbRepository) ExtractAttributeValue(
	ctx context.Context,
	exec Executor,
	consentId string,
	key string,
) (string, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentAttributeColumns...).
		From(dbmodels.TABLE_CONSENT_ATTRIBUTES).
		Where(squirrel.Eq{"consent_id": consentId, "att_key": key})

	attribute, err := SqlToModel(ctx, exec, query, dbmodels.AdaptConsentAttribute)
	if err != nil {
		return "", err
	}
	return attribute.Value, nil
}
