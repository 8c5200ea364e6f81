package dbmodels

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dialect"
)

// DBDetailedConsentRow is one page row of the consent search query. The child
// tables are folded into delimiter-joined aggregate columns so that a page of
// consents costs a single round trip. Columns aggregated over the same child
// table share one ORDER BY, which keeps their elements positionally aligned.
type DBDetailedConsentRow struct {
	DBConsent
	AttKeys         *string `db:"att_keys"`
	AttValues       *string `db:"att_values"`
	AuthIds         *string `db:"auth_ids"`
	AuthStatuses    *string `db:"auth_statuses"`
	AuthTypes       *string `db:"auth_types"`
	UserIds         *string `db:"user_ids"`
	MappingAuthIds  *string `db:"mapping_auth_ids"`
	MappingIds      *string `db:"mapping_ids"`
	Resources       *string `db:"resources"`
	Permissions     *string `db:"permissions"`
	MappingStatuses *string `db:"mapping_statuses"`
}

func splitAggregated(col *string) []string {
	if col == nil || *col == "" {
		return nil
	}
	return strings.Split(*col, dialect.AggregationSeparator)
}

// AdaptDetailedConsentRow rebuilds the consent tree from the aggregate columns.
// Every column group is length-checked before zipping so a malformed row
// surfaces as an error rather than as silently misattributed child data.
func AdaptDetailedConsentRow(db DBDetailedConsentRow) (models.DetailedConsentResource, error) {
	consent, err := AdaptConsent(db.DBConsent)
	if err != nil {
		return models.DetailedConsentResource{}, err
	}
	detailed := models.DetailedConsentResource{
		Consent:    consent,
		Attributes: make(map[string]string),
	}

	attKeys := splitAggregated(db.AttKeys)
	attValues := splitAggregated(db.AttValues)
	if len(attKeys) != len(attValues) {
		return models.DetailedConsentResource{}, errors.Newf(
			"consent %s: attribute aggregate mismatch, %d keys vs %d values",
			db.Id, len(attKeys), len(attValues))
	}
	for i, key := range attKeys {
		detailed.Attributes[key] = attValues[i]
	}

	authIds := splitAggregated(db.AuthIds)
	authStatuses := splitAggregated(db.AuthStatuses)
	authTypes := splitAggregated(db.AuthTypes)
	userIds := splitAggregated(db.UserIds)
	if len(authStatuses) != len(authIds) || len(authTypes) != len(authIds) ||
		len(userIds) != len(authIds) {
		return models.DetailedConsentResource{}, errors.Newf(
			"consent %s: authorization aggregate mismatch across columns", db.Id)
	}

	authByIdx := make(map[string]int, len(authIds))
	for i, authId := range authIds {
		auth := models.AuthorizationResource{
			Id:         authId,
			ConsentId:  db.Id,
			AuthType:   authTypes[i],
			AuthStatus: authStatuses[i],
		}
		if userIds[i] != "" {
			auth.UserId = null.StringFrom(userIds[i])
		}
		authByIdx[authId] = len(detailed.AuthorizationResources)
		detailed.AuthorizationResources = append(detailed.AuthorizationResources, auth)
	}

	mappingAuthIds := splitAggregated(db.MappingAuthIds)
	mappingIds := splitAggregated(db.MappingIds)
	resources := splitAggregated(db.Resources)
	permissions := splitAggregated(db.Permissions)
	mappingStatuses := splitAggregated(db.MappingStatuses)
	if len(mappingAuthIds) != len(mappingIds) || len(resources) != len(mappingIds) ||
		len(permissions) != len(mappingIds) || len(mappingStatuses) != len(mappingIds) {
		return models.DetailedConsentResource{}, errors.Newf(
			"consent %s: mapping aggregate mismatch across columns", db.Id)
	}

	for i, mappingId := range mappingIds {
		idx, ok := authByIdx[mappingAuthIds[i]]
		if !ok {
			return models.DetailedConsentResource{}, errors.Newf(
				"consent %s: mapping %s references unknown authorization %s",
				db.Id, mappingId, mappingAuthIds[i])
		}
		mapping := models.ConsentMappingResource{
			Id:              mappingId,
			AuthorizationId: mappingAuthIds[i],
			Resource:        resources[i],
			Permission:      permissions[i],
			MappingStatus:   mappingStatuses[i],
		}
		detailed.AuthorizationResources[idx].Mappings = append(
			detailed.AuthorizationResources[idx].Mappings, mapping)
	}

	return detailed, nil
}
