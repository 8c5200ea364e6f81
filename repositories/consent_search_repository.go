package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// paginate appends the dialect's pagination clause, binding the parameters in
// the order the dialect expects.
func (repo *ConsentDbRepository) paginate(
	query squirrel.SelectBuilder,
	limit, offset *int,
) squirrel.SelectBuilder {
	hasLimit := limit != nil
	hasOffset := offset != nil
	if !hasLimit && !hasOffset {
		return query
	}

	clause := repo.dialect.PaginationClause(hasLimit, hasOffset)
	var args []any
	switch {
	case hasLimit && hasOffset && repo.dialect.LimitBeforeOffset():
		args = []any{*limit, *offset}
	case hasLimit && hasOffset:
		args = []any{*offset, *limit}
	case hasLimit:
		args = []any{*limit}
	default:
		args = []any{*offset}
	}
	return query.Suffix(clause, args...)
}

// SearchConsents returns one page of detailed consents in a single round
// trip. Child rows are folded into delimiter-joined aggregate columns by
// correlated subqueries; within one child table every aggregated column
// shares the same ORDER BY, so positions line up across columns and the
// adapter can zip them back into structs.
func (repo *ConsentDbRepository) SearchConsents(
	ctx context.Context,
	exec Executor,
	filters models.ConsentSearchFilters,
) ([]models.DetailedConsentResource, error) {
	d := repo.dialect
	consentCols := columnsNames("c", dbmodels.SelectConsentColumns)

	attSub := func(expr string) string {
		return fmt.Sprintf("(SELECT %s FROM %s att WHERE att.consent_id = c.id)",
			d.StringAgg(expr, "att.att_key"), dbmodels.TABLE_CONSENT_ATTRIBUTES)
	}
	authSub := func(expr string) string {
		return fmt.Sprintf("(SELECT %s FROM %s ar WHERE ar.consent_id = c.id)",
			d.StringAgg(expr, "ar.id"), dbmodels.TABLE_CONSENT_AUTH_RESOURCES)
	}
	mappingSub := func(expr string) string {
		return fmt.Sprintf(
			"(SELECT %s FROM %s m JOIN %s ma ON m.auth_id = ma.id WHERE ma.consent_id = c.id)",
			d.StringAgg(expr, "m.id"),
			dbmodels.TABLE_CONSENT_MAPPINGS, dbmodels.TABLE_CONSENT_AUTH_RESOURCES)
	}

	aggCols := []string{
		attSub("att.att_key") + " AS att_keys",
		attSub("att.att_value") + " AS att_values",
		authSub("ar.id") + " AS auth_ids",
		authSub("ar.auth_status") + " AS auth_statuses",
		authSub("ar.auth_type") + " AS auth_types",
		// Null user ids are aggregated as empty strings so positions are
		// preserved for the authorizations that do carry a user.
		authSub("coalesce(ar.user_id, '')") + " AS user_ids",
		mappingSub("m.auth_id") + " AS mapping_auth_ids",
		mappingSub("m.id") + " AS mapping_ids",
		mappingSub("m.resource") + " AS resources",
		mappingSub("m.permission") + " AS permissions",
		mappingSub("m.mapping_status") + " AS mapping_statuses",
	}

	query := d.QueryBuilder().
		Select(append(consentCols, aggCols...)...).
		From(dbmodels.TABLE_CONSENTS + " c")

	// The user filter lives on the joined authorization table. With no user
	// filter the join is a LEFT JOIN so consents without authorizations still
	// come back; filtering on users flips it to an INNER JOIN, which drops
	// them by construction.
	authJoin := dbmodels.TABLE_CONSENT_AUTH_RESOURCES + " ua ON ua.consent_id = c.id"
	if len(filters.UserIds) > 0 {
		query = query.
			Join(authJoin).
			Where(squirrel.Eq{"ua.user_id": filters.UserIds})
	} else {
		query = query.LeftJoin(authJoin)
	}

	if len(filters.ConsentIds) > 0 {
		query = query.Where(squirrel.Eq{"c.id": filters.ConsentIds})
	}
	if len(filters.ClientIds) > 0 {
		query = query.Where(squirrel.Eq{"c.client_id": filters.ClientIds})
	}
	if len(filters.ConsentTypes) > 0 {
		query = query.Where(squirrel.Eq{"c.consent_type": filters.ConsentTypes})
	}
	if len(filters.ConsentStatuses) > 0 {
		query = query.Where(squirrel.Eq{"c.current_status": filters.ConsentStatuses})
	}
	if filters.FromTime != nil {
		query = query.Where(squirrel.GtOrEq{"c.updated_at": *filters.FromTime})
	}
	if filters.ToTime != nil {
		query = query.Where(squirrel.LtOrEq{"c.updated_at": *filters.ToTime})
	}

	// The join can match several authorizations per consent; grouping by the
	// consent columns collapses the duplicates.
	query = query.
		GroupBy(consentCols...).
		OrderBy("c.updated_at DESC", "c.id DESC")
	query = repo.paginate(query, filters.Limit, filters.Offset)

	consents, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptDetailedConsentRow)
	if err != nil {
		return nil, retrievalError(err, "failed to search consents")
	}
	return consents, nil
}
