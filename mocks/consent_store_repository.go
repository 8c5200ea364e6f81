package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories"
)

type ConsentStoreRepository struct {
	mock.Mock
}

func (m *ConsentStoreRepository) CreateConsent(ctx context.Context, exec repositories.Executor,
	consent models.Consent,
) (models.Consent, error) {
	args := m.Called(ctx, exec, consent)
	return args.Get(0).(models.Consent), args.Error(1)
}

func (m *ConsentStoreRepository) GetConsent(ctx context.Context, exec repositories.Executor,
	consentId string,
) (models.Consent, error) {
	args := m.Called(ctx, exec, consentId)
	return args.Get(0).(models.Consent), args.Error(1)
}

func (m *ConsentStoreRepository) UpdateConsentStatus(ctx context.Context, exec repositories.Executor,
	consentId string, status string,
) error {
	args := m.Called(ctx, exec, consentId, status)
	return args.Error(0)
}

func (m *ConsentStoreRepository) UpdateConsentReceipt(ctx context.Context, exec repositories.Executor,
	consentId string, receipt string,
) error {
	args := m.Called(ctx, exec, consentId, receipt)
	return args.Error(0)
}

func (m *ConsentStoreRepository) UpdateConsentValidityTime(ctx context.Context, exec repositories.Executor,
	consentId string, validityTime int64,
) error {
	args := m.Called(ctx, exec, consentId, validityTime)
	return args.Error(0)
}

func (m *ConsentStoreRepository) ListExpiringConsents(ctx context.Context, exec repositories.Executor,
	eligibleStatuses []string,
) ([]models.Consent, error) {
	args := m.Called(ctx, exec, eligibleStatuses)
	return args.Get(0).([]models.Consent), args.Error(1)
}

func (m *ConsentStoreRepository) DeleteConsent(ctx context.Context, exec repositories.Executor,
	consentId string,
) error {
	args := m.Called(ctx, exec, consentId)
	return args.Error(0)
}

func (m *ConsentStoreRepository) GetConsentWithAttributes(ctx context.Context, exec repositories.Executor,
	consentId string,
) (models.ConsentWithAttributes, error) {
	args := m.Called(ctx, exec, consentId)
	return args.Get(0).(models.ConsentWithAttributes), args.Error(1)
}

func (m *ConsentStoreRepository) GetDetailedConsent(ctx context.Context, exec repositories.Executor,
	consentId string,
) (models.DetailedConsentResource, error) {
	args := m.Called(ctx, exec, consentId)
	return args.Get(0).(models.DetailedConsentResource), args.Error(1)
}

func (m *ConsentStoreRepository) SearchConsents(ctx context.Context, exec repositories.Executor,
	filters models.ConsentSearchFilters,
) ([]models.DetailedConsentResource, error) {
	args := m.Called(ctx, exec, filters)
	return args.Get(0).([]models.DetailedConsentResource), args.Error(1)
}

func (m *ConsentStoreRepository) StoreConsentAttributes(ctx context.Context, exec repositories.Executor,
	consentId string, attributes map[string]string,
) error {
	args := m.Called(ctx, exec, consentId, attributes)
	return args.Error(0)
}

func (m *ConsentStoreRepository) GetConsentAttributes(ctx context.Context, exec repositories.Executor,
	consentId string,
) (map[string]string, error) {
	args := m.Called(ctx, exec, consentId)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *ConsentStoreRepository) UpdateConsentAttributes(ctx context.Context, exec repositories.Executor,
	consentId string, attributes map[string]string,
) error {
	args := m.Called(ctx, exec, consentId, attributes)
	return args.Error(0)
}

func (m *ConsentStoreRepository) DeleteConsentAttributes(ctx context.Context, exec repositories.Executor,
	consentId string, keys []string,
) error {
	args := m.Called(ctx, exec, consentId, keys)
	return args.Error(0)
}

func (m *ConsentStoreRepository) ListConsentAttributesByName(ctx context.Context, exec repositories.Executor,
	key string,
) (map[string]string, error) {
	args := m.Called(ctx, exec, key)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *ConsentStoreRepository) ListConsentIdsByAttributeNameAndValue(ctx context.Context, exec repositories.Executor,
	key string, value string,
) ([]string, error) {
	args := m.Called(ctx, exec, key, value)
	return args.Get(0).([]string), args.Error(1)
}

func (m *ConsentStoreRepository) StoreConsentFile(ctx context.Context, exec repositories.Executor,
	file models.ConsentFile,
) error {
	args := m.Called(ctx, exec, file)
	return args.Error(0)
}

func (m *ConsentStoreRepository) GetConsentFile(ctx context.Context, exec repositories.Executor,
	consentId string,
) (models.ConsentFile, error) {
	args := m.Called(ctx, exec, consentId)
	return args.Get(0).(models.ConsentFile), args.Error(1)
}

func (m *ConsentStoreRepository) CreateStatusAuditRecord(ctx context.Context, exec repositories.Executor,
	record models.ConsentStatusAuditRecord,
) (models.ConsentStatusAuditRecord, error) {
	args := m.Called(ctx, exec, record)
	return args.Get(0).(models.ConsentStatusAuditRecord), args.Error(1)
}

func (m *ConsentStoreRepository) SearchStatusAuditRecords(ctx context.Context, exec repositories.Executor,
	filters models.ConsentStatusAuditSearchFilters,
) ([]models.ConsentStatusAuditRecord, error) {
	args := m.Called(ctx, exec, filters)
	return args.Get(0).([]models.ConsentStatusAuditRecord), args.Error(1)
}

func (m *ConsentStoreRepository) CreateAuthorizationResource(ctx context.Context, exec repositories.Executor,
	auth models.AuthorizationResource,
) (models.AuthorizationResource, error) {
	args := m.Called(ctx, exec, auth)
	return args.Get(0).(models.AuthorizationResource), args.Error(1)
}

func (m *ConsentStoreRepository) GetAuthorizationResource(ctx context.Context, exec repositories.Executor,
	authId string,
) (models.AuthorizationResource, error) {
	args := m.Called(ctx, exec, authId)
	return args.Get(0).(models.AuthorizationResource), args.Error(1)
}

func (m *ConsentStoreRepository) UpdateAuthorizationStatus(ctx context.Context, exec repositories.Executor,
	authId string, status string,
) error {
	args := m.Called(ctx, exec, authId, status)
	return args.Error(0)
}

func (m *ConsentStoreRepository) UpdateAuthorizationUser(ctx context.Context, exec repositories.Executor,
	authId string, userId string,
) error {
	args := m.Called(ctx, exec, authId, userId)
	return args.Error(0)
}

func (m *ConsentStoreRepository) SearchAuthorizationResources(ctx context.Context, exec repositories.Executor,
	filters models.AuthorizationSearchFilters,
) ([]models.AuthorizationResource, error) {
	args := m.Called(ctx, exec, filters)
	return args.Get(0).([]models.AuthorizationResource), args.Error(1)
}

func (m *ConsentStoreRepository) CreateConsentMapping(ctx context.Context, exec repositories.Executor,
	mapping models.ConsentMappingResource,
) (models.ConsentMappingResource, error) {
	args := m.Called(ctx, exec, mapping)
	return args.Get(0).(models.ConsentMappingResource), args.Error(1)
}

func (m *ConsentStoreRepository) UpdateConsentMappingStatuses(ctx context.Context, exec repositories.Executor,
	mappingIds []string, status string,
) error {
	args := m.Called(ctx, exec, mappingIds, status)
	return args.Error(0)
}

func (m *ConsentStoreRepository) CreateConsentHistoryEntries(ctx context.Context, exec repositories.Executor,
	entries []models.ConsentHistoryEntry,
) error {
	args := m.Called(ctx, exec, entries)
	return args.Error(0)
}

func (m *ConsentStoreRepository) ListConsentAmendmentHistory(ctx context.Context, exec repositories.Executor,
	consentId string, recordIds []string,
) ([]models.ConsentHistoryResource, error) {
	args := m.Called(ctx, exec, consentId, recordIds)
	return args.Get(0).([]models.ConsentHistoryResource), args.Error(1)
}
