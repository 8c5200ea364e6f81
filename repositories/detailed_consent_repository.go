package repositories

import (
	"context"
	"fmt"

	"github.com/openbankly/consent-backend/models"
)

// GetConsentWithAttributes returns the consent row together with its
// flattened attribute map. Lighter than GetDetailedConsent: the
// authorization tree is not loaded.
func (repo *ConsentDbRepository) GetConsentWithAttributes(
	ctx context.Context,
	exec Executor,
	consentId string,
) (models.ConsentWithAttributes, error) {
	consent, err := repo.GetConsent(ctx, exec, consentId)
	if err != nil {
		return models.ConsentWithAttributes{}, err
	}

	attributes, err := repo.GetConsentAttributes(ctx, exec, consentId)
	if err != nil {
		return models.ConsentWithAttributes{}, err
	}

	return models.ConsentWithAttributes{
		Consent:    consent,
		Attributes: attributes,
	}, nil
}

// GetDetailedConsent assembles the full consent tree from separate child-row
// queries. Unlike the search path, nothing is delimiter-joined here, so the
// values round-trip byte for byte.
func (repo *ConsentDbRepository) GetDetailedConsent(
	ctx context.Context,
	exec Executor,
	consentId string,
) (models.DetailedConsentResource, error) {
	consent, err := repo.GetConsent(ctx, exec, consentId)
	if err != nil {
		return models.DetailedConsentResource{}, err
	}

	attributes, err := repo.GetConsentAttributes(ctx, exec, consentId)
	if err != nil {
		return models.DetailedConsentResource{}, err
	}

	auths, err := repo.SearchAuthorizationResources(ctx, exec,
		models.AuthorizationSearchFilters{ConsentId: consentId})
	if err != nil {
		return models.DetailedConsentResource{}, err
	}

	authIds := make([]string, len(auths))
	authIdx := make(map[string]int, len(auths))
	for i, auth := range auths {
		authIds[i] = auth.Id
		authIdx[auth.Id] = i
	}

	mappings, err := repo.ListConsentMappings(ctx, exec, authIds)
	if err != nil {
		return models.DetailedConsentResource{}, err
	}
	for _, mapping := range mappings {
		i, ok := authIdx[mapping.AuthorizationId]
		if !ok {
			return models.DetailedConsentResource{}, retrievalError(
				models.NotFoundError,
				fmt.Sprintf("mapping %s references unknown authorization %s",
					mapping.Id, mapping.AuthorizationId))
		}
		auths[i].Mappings = append(auths[i].Mappings, mapping)
	}

	return models.DetailedConsentResource{
		Consent:                consent,
		Attributes:             attributes,
		AuthorizationResources: auths,
	}, nil
}
