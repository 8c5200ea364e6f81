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

func (repo *ConsentDbRepository) CreateAuthorizationResource(
	ctx context.Context,
	exec Executor,
	auth models.AuthorizationResource,
) (models.AuthorizationResource, error) {
	if auth.Id == "" {
		auth.Id = uuid.NewString()
	}
	auth.UpdatedAt = repo.clock.Now()

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENT_AUTH_RESOURCES).
		Columns(dbmodels.SelectAuthorizationResourceColumns...).
		Values(
			auth.Id,
			auth.ConsentId,
			auth.AuthType,
			auth.UserId,
			auth.AuthStatus,
			auth.UpdatedAt,
		)

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return models.AuthorizationResource{}, insertionError(err,
			fmt.Sprintf("failed to insert authorization for consent %s", auth.ConsentId))
	}
	return auth, nil
}

func (repo *ConsentDbRepository) GetAuthorizationResource(
	ctx context.Context,
	exec Executor,
	authId string,
) (models.AuthorizationResource, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectAuthorizationResourceColumns...).
		From(dbmodels.TABLE_CONSENT_AUTH_RESOURCES).
		Where(squirrel.Eq{"id": authId})

	return SqlToModel(ctx, exec, query, dbmodels.AdaptAuthorizationResource)
}

func (repo *ConsentDbRepository) UpdateAuthorizationStatus(
	ctx context.Context,
	exec Executor,
	authId string,
	status string,
) error {
	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_CONSENT_AUTH_RESOURCES).
		Set("auth_status", status).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": authId})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err,
			fmt.Sprintf("failed to update status of authorization %s", authId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("authorization %s does not exist", authId))
	}
	return nil
}

func (repo *ConsentDbRepository) UpdateAuthorizationUser(
	ctx context.Context,
	exec Executor,
	authId string,
	userId string,
) error {
	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_CONSENT_AUTH_RESOURCES).
		Set("user_id", userId).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": authId})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err,
			fmt.Sprintf("failed to update user of authorization %s", authId))
	}
	if rowsAffected == 0 {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("authorization %s does not exist", authId))
	}
	return nil
}

// SearchAuthorizationResources filters by consent and/or user; both filters
// are optional and combined with AND.
func (repo *ConsentDbRepository) SearchAuthorizationResources(
	ctx context.Context,
	exec Executor,
	filters models.AuthorizationSearchFilters,
) ([]models.AuthorizationResource, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectAuthorizationResourceColumns...).
		From(dbmodels.TABLE_CONSENT_AUTH_RESOURCES).
		OrderBy("id")

	if filters.ConsentId != "" {
		query = query.Where(squirrel.Eq{"consent_id": filters.ConsentId})
	}
	if filters.UserId != "" {
		query = query.Where(squirrel.Eq{"user_id": filters.UserId})
	}

	auths, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptAuthorizationResource)
	if err != nil {
		return nil, retrievalError(err, "failed to search authorization resources")
	}
	return auths, nil
}

func (repo *ConsentDbRepository) CreateConsentMapping(
	ctx context.Context,
	exec Executor,
	mapping models.ConsentMappingResource,
) (models.ConsentMappingResource, error) {
	if mapping.Id == "" {
		mapping.Id = uuid.NewString()
	}

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENT_MAPPINGS).
		Columns(dbmodels.SelectConsentMappingColumns...).
		Values(
			mapping.Id,
			mapping.AuthorizationId,
			mapping.Resource,
			mapping.Permission,
			mapping.MappingStatus,
		)

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return models.ConsentMappingResource{}, insertionError(err,
			fmt.Sprintf("failed to insert mapping for authorization %s", mapping.AuthorizationId))
	}
	return mapping, nil
}

func (repo *ConsentDbRepository) ListConsentMappings(
	ctx context.Context,
	exec Executor,
	authIds []string,
) ([]models.ConsentMappingResource, error) {
	if len(authIds) == 0 {
		return nil, nil
	}

	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentMappingColumns...).
		From(dbmodels.TABLE_CONSENT_MAPPINGS).
		Where(squirrel.Eq{"auth_id": authIds}).
		OrderBy("id")

	mappings, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptConsentMapping)
	if err != nil {
		return nil, retrievalError(err, "failed to list consent mappings")
	}
	return mappings, nil
}

// UpdateConsentMappingStatuses moves all the given mappings to one status in a
// single statement.
func (repo *ConsentDbRepository) UpdateConsentMappingStatuses(
	ctx context.Context,
	exec Executor,
	mappingIds []string,
	status string,
) error {
	if len(mappingIds) == 0 {
		return nil
	}

	query := repo.dialect.QueryBuilder().
		Update(dbmodels.TABLE_CONSENT_MAPPINGS).
		Set("mapping_status", status).
		Where(squirrel.Eq{"id": mappingIds})

	rowsAffected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return updateError(err, "failed to update mapping statuses")
	}
	if rowsAffected != int64(len(mappingIds)) {
		return errors.Wrap(models.NotFoundError,
			fmt.Sprintf("expected to update %d mappings, updated %d",
				len(mappingIds), rowsAffected))
	}
	return nil
}
