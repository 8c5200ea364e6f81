package usecases

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/guregu/null/v5"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories"
	"github.com/openbankly/consent-backend/usecases/executor_factory"
	"github.com/openbankly/consent-backend/utils"
)

// ConsentStatusUpdatedEventType identifies the event emitted to subscribed
// clients whenever a consent changes status.
const ConsentStatusUpdatedEventType = "consent_status_updated"

type ConsentStoreRepository interface {
	CreateConsent(ctx context.Context, exec repositories.Executor,
		consent models.Consent) (models.Consent, error)
	GetConsent(ctx context.Context, exec repositories.Executor,
		consentId string) (models.Consent, error)
	UpdateConsentStatus(ctx context.Context, exec repositories.Executor,
		consentId string, status string) error
	UpdateConsentReceipt(ctx context.Context, exec repositories.Executor,
		consentId string, receipt string) error
	UpdateConsentValidityTime(ctx context.Context, exec repositories.Executor,
		consentId string, validityTime int64) error
	ListExpiringConsents(ctx context.Context, exec repositories.Executor,
		eligibleStatuses []string) ([]models.Consent, error)
	DeleteConsent(ctx context.Context, exec repositories.Executor, consentId string) error

	GetConsentWithAttributes(ctx context.Context, exec repositories.Executor,
		consentId string) (models.ConsentWithAttributes, error)
	GetDetailedConsent(ctx context.Context, exec repositories.Executor,
		consentId string) (models.DetailedConsentResource, error)
	SearchConsents(ctx context.Context, exec repositories.Executor,
		filters models.ConsentSearchFilters) ([]models.DetailedConsentResource, error)

	StoreConsentAttributes(ctx context.Context, exec repositories.Executor,
		consentId string, attributes map[string]string) error
	GetConsentAttributes(ctx context.Context, exec repositories.Executor,
		consentId string) (map[string]string, error)
	UpdateConsentAttributes(ctx context.Context, exec repositories.Executor,
		consentId string, attributes map[string]string) error
	DeleteConsentAttributes(ctx context.Context, exec repositories.Executor,
		consentId string, keys []string) error
	ListConsentAttributesByName(ctx context.Context, exec repositories.Executor,
		key string) (map[string]string, error)
	ListConsentIdsByAttributeNameAndValue(ctx context.Context, exec repositories.Executor,
		key string, value string) ([]string, error)

	StoreConsentFile(ctx context.Context, exec repositories.Executor,
		file models.ConsentFile) error
	GetConsentFile(ctx context.Context, exec repositories.Executor,
		consentId string) (models.ConsentFile, error)

	CreateStatusAuditRecord(ctx context.Context, exec repositories.Executor,
		record models.ConsentStatusAuditRecord) (models.ConsentStatusAuditRecord, error)
	SearchStatusAuditRecords(ctx context.Context, exec repositories.Executor,
		filters models.ConsentStatusAuditSearchFilters) ([]models.ConsentStatusAuditRecord, error)

	CreateAuthorizationResource(ctx context.Context, exec repositories.Executor,
		auth models.AuthorizationResource) (models.AuthorizationResource, error)
	GetAuthorizationResource(ctx context.Context, exec repositories.Executor,
		authId string) (models.AuthorizationResource, error)
	UpdateAuthorizationStatus(ctx context.Context, exec repositories.Executor,
		authId string, status string) error
	UpdateAuthorizationUser(ctx context.Context, exec repositories.Executor,
		authId string, userId string) error
	SearchAuthorizationResources(ctx context.Context, exec repositories.Executor,
		filters models.AuthorizationSearchFilters) ([]models.AuthorizationResource, error)
	CreateConsentMapping(ctx context.Context, exec repositories.Executor,
		mapping models.ConsentMappingResource) (models.ConsentMappingResource, error)
	UpdateConsentMappingStatuses(ctx context.Context, exec repositories.Executor,
		mappingIds []string, status string) error

	CreateConsentHistoryEntries(ctx context.Context, exec repositories.Executor,
		entries []models.ConsentHistoryEntry) error
	ListConsentAmendmentHistory(ctx context.Context, exec repositories.Executor,
		consentId string, recordIds []string) ([]models.ConsentHistoryResource, error)
}

// consentEventNotifier abstracts the notification producer so consent state
// changes can fan out without the usecase knowing about queues or signing.
type consentEventNotifier interface {
	EnqueueNotification(ctx context.Context, clientId string,
		events []models.NotificationEvent) (models.Notification, error)
}

type ConsentUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	consentStore       ConsentStoreRepository
	notifier           consentEventNotifier
}

func NewConsentUsecase(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	consentStore ConsentStoreRepository,
	notifier consentEventNotifier,
) ConsentUsecase {
	return ConsentUsecase{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		consentStore:       consentStore,
		notifier:           notifier,
	}
}

// CreateConsent stores the consent, its attributes and the audit record of
// its initial status in one transaction.
func (uc ConsentUsecase) CreateConsent(
	ctx context.Context,
	consent models.Consent,
	attributes map[string]string,
) (models.DetailedConsentResource, error) {
	if consent.ClientId == "" || consent.ConsentType == "" || consent.CurrentStatus == "" {
		return models.DetailedConsentResource{}, errors.Wrap(models.BadParameterError,
			"client id, consent type and initial status are required")
	}

	return executor_factory.TransactionReturnValue(ctx, uc.transactionFactory,
		func(tx repositories.Executor) (models.DetailedConsentResource, error) {
			created, err := uc.consentStore.CreateConsent(ctx, tx, consent)
			if err != nil {
				return models.DetailedConsentResource{}, err
			}
			if err := uc.consentStore.StoreConsentAttributes(ctx, tx, created.Id, attributes); err != nil {
				return models.DetailedConsentResource{}, err
			}
			if _, err := uc.consentStore.CreateStatusAuditRecord(ctx, tx,
				models.ConsentStatusAuditRecord{
					ConsentId:     created.Id,
					CurrentStatus: created.CurrentStatus,
				}); err != nil {
				return models.DetailedConsentResource{}, err
			}
			return models.DetailedConsentResource{
				Consent:    created,
				Attributes: attributes,
			}, nil
		})
}

func (uc ConsentUsecase) GetConsent(ctx context.Context, consentId string) (models.Consent, error) {
	return uc.consentStore.GetConsent(ctx, uc.executorFactory.NewExecutor(), consentId)
}

func (uc ConsentUsecase) GetConsentWithAttributes(
	ctx context.Context,
	consentId string,
) (models.ConsentWithAttributes, error) {
	return uc.consentStore.GetConsentWithAttributes(ctx,
		uc.executorFactory.NewExecutor(), consentId)
}

func (uc ConsentUsecase) GetDetailedConsent(
	ctx context.Context,
	consentId string,
) (models.DetailedConsentResource, error) {
	return uc.consentStore.GetDetailedConsent(ctx, uc.executorFactory.NewExecutor(), consentId)
}

func (uc ConsentUsecase) SearchConsents(
	ctx context.Context,
	filters models.ConsentSearchFilters,
) ([]models.DetailedConsentResource, error) {
	if filters.Limit != nil && *filters.Limit < 0 {
		return nil, errors.Wrap(models.BadParameterError, "limit must not be negative")
	}
	if filters.Offset != nil && *filters.Offset < 0 {
		return nil, errors.Wrap(models.BadParameterError, "offset must not be negative")
	}
	if filters.FromTime != nil && filters.ToTime != nil &&
		filters.ToTime.Before(*filters.FromTime) {
		return nil, errors.Wrap(models.BadParameterError, "time range is inverted")
	}
	return uc.consentStore.SearchConsents(ctx, uc.executorFactory.NewExecutor(), filters)
}

// UpdateConsentStatus performs the status transition and writes the paired
// audit record atomically, then enqueues a notification to the client. The
// notification is best effort: a failure to enqueue never rolls back the
// transition.
func (uc ConsentUsecase) UpdateConsentStatus(
	ctx context.Context,
	update models.ConsentStatusUpdate,
) (models.ConsentStatusAuditRecord, error) {
	if update.ConsentId == "" || update.Status == "" {
		return models.ConsentStatusAuditRecord{}, errors.Wrap(models.BadParameterError,
			"consent id and status are required")
	}

	type transitionResult struct {
		audit   models.ConsentStatusAuditRecord
		consent models.Consent
	}
	result, err := executor_factory.TransactionReturnValue(ctx, uc.transactionFactory,
		func(tx repositories.Executor) (transitionResult, error) {
			consent, err := uc.consentStore.GetConsent(ctx, tx, update.ConsentId)
			if err != nil {
				return transitionResult{}, err
			}
			if err := uc.consentStore.UpdateConsentStatus(ctx, tx,
				update.ConsentId, update.Status); err != nil {
				return transitionResult{}, err
			}
			audit, err := uc.consentStore.CreateStatusAuditRecord(ctx, tx,
				models.ConsentStatusAuditRecord{
					ConsentId:      update.ConsentId,
					PreviousStatus: null.StringFrom(consent.CurrentStatus),
					CurrentStatus:  update.Status,
					Reason:         nullStringFrom(update.Reason),
					ActionBy:       nullStringFrom(update.ActionBy),
				})
			if err != nil {
				return transitionResult{}, err
			}
			return transitionResult{audit: audit, consent: consent}, nil
		})
	if err != nil {
		return models.ConsentStatusAuditRecord{}, err
	}

	uc.notifyStatusChange(ctx, result.consent, result.audit)
	return result.audit, nil
}

func (uc ConsentUsecase) notifyStatusChange(
	ctx context.Context,
	consent models.Consent,
	audit models.ConsentStatusAuditRecord,
) {
	if uc.notifier == nil {
		return
	}
	logger := utils.LoggerFromContext(ctx)

	eventData, err := json.Marshal(map[string]string{
		"consentId":      consent.Id,
		"previousStatus": audit.PreviousStatus.String,
		"currentStatus":  audit.CurrentStatus,
		"reason":         audit.Reason.String,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode status change event",
			"consentId", consent.Id, "error", err.Error())
		return
	}

	_, err = uc.notifier.EnqueueNotification(ctx, consent.ClientId,
		[]models.NotificationEvent{{
			EventType: ConsentStatusUpdatedEventType,
			EventData: eventData,
		}})
	switch {
	case errors.Is(err, models.ErrNoSubscriptions):
		logger.DebugContext(ctx, "client has no event subscriptions, skipping notification",
			"clientId", consent.ClientId)
	case err != nil:
		logger.ErrorContext(ctx, "failed to enqueue status change notification",
			"consentId", consent.Id, "error", err.Error())
	}
}

func (uc ConsentUsecase) UpdateConsentReceipt(
	ctx context.Context,
	consentId string,
	receipt string,
) error {
	if receipt == "" {
		return errors.Wrap(models.BadParameterError, "receipt must not be empty")
	}
	return uc.consentStore.UpdateConsentReceipt(ctx, uc.executorFactory.NewExecutor(),
		consentId, receipt)
}

func (uc ConsentUsecase) UpdateConsentValidityTime(
	ctx context.Context,
	consentId string,
	validityTime int64,
) error {
	return uc.consentStore.UpdateConsentValidityTime(ctx, uc.executorFactory.NewExecutor(),
		consentId, validityTime)
}

func (uc ConsentUsecase) StoreConsentAttributes(
	ctx context.Context,
	consentId string,
	attributes map[string]string,
) error {
	if len(attributes) == 0 {
		return errors.Wrap(models.BadParameterError, "attributes must not be empty")
	}
	for key := range attributes {
		if key == "" {
			return errors.Wrap(models.BadParameterError, "attribute keys must not be empty")
		}
	}
	return uc.transactionFactory.Transaction(ctx, func(tx repositories.Executor) error {
		if _, err := uc.consentStore.GetConsent(ctx, tx, consentId); err != nil {
			return err
		}
		return uc.consentStore.StoreConsentAttributes(ctx, tx, consentId, attributes)
	})
}

func (uc ConsentUsecase) GetConsentAttributes(
	ctx context.Context,
	consentId string,
) (map[string]string, error) {
	return uc.consentStore.GetConsentAttributes(ctx, uc.executorFactory.NewExecutor(), consentId)
}

func (uc ConsentUsecase) UpdateConsentAttributes(
	ctx context.Context,
	consentId string,
	attributes map[string]string,
) error {
	if len(attributes) == 0 {
		return errors.Wrap(models.BadParameterError, "attributes must not be empty")
	}
	return uc.transactionFactory.Transaction(ctx, func(tx repositories.Executor) error {
		return uc.consentStore.UpdateConsentAttributes(ctx, tx, consentId, attributes)
	})
}

func (uc ConsentUsecase) DeleteConsentAttributes(
	ctx context.Context,
	consentId string,
	keys []string,
) error {
	if len(keys) == 0 {
		return errors.Wrap(models.BadParameterError, "attribute keys must not be empty")
	}
	return uc.consentStore.DeleteConsentAttributes(ctx, uc.executorFactory.NewExecutor(),
		consentId, keys)
}

// ListConsentAttributesByName returns consent id -> value for every consent
// carrying the given attribute key.
func (uc ConsentUsecase) ListConsentAttributesByName(
	ctx context.Context,
	key string,
) (map[string]string, error) {
	if key == "" {
		return nil, errors.Wrap(models.BadParameterError, "attribute key is required")
	}
	return uc.consentStore.ListConsentAttributesByName(ctx,
		uc.executorFactory.NewExecutor(), key)
}

func (uc ConsentUsecase) ListConsentIdsByAttributeNameAndValue(
	ctx context.Context,
	key string,
	value string,
) ([]string, error) {
	if key == "" {
		return nil, errors.Wrap(models.BadParameterError, "attribute key is required")
	}
	return uc.consentStore.ListConsentIdsByAttributeNameAndValue(ctx,
		uc.executorFactory.NewExecutor(), key, value)
}

func (uc ConsentUsecase) StoreConsentFile(ctx context.Context, file models.ConsentFile) error {
	if file.FileContent == "" {
		return errors.Wrap(models.BadParameterError, "file content must not be empty")
	}
	return uc.transactionFactory.Transaction(ctx, func(tx repositories.Executor) error {
		if _, err := uc.consentStore.GetConsent(ctx, tx, file.ConsentId); err != nil {
			return err
		}
		return uc.consentStore.StoreConsentFile(ctx, tx, file)
	})
}

func (uc ConsentUsecase) GetConsentFile(
	ctx context.Context,
	consentId string,
) (models.ConsentFile, error) {
	return uc.consentStore.GetConsentFile(ctx, uc.executorFactory.NewExecutor(), consentId)
}

func (uc ConsentUsecase) SearchStatusAuditRecords(
	ctx context.Context,
	filters models.ConsentStatusAuditSearchFilters,
) ([]models.ConsentStatusAuditRecord, error) {
	if filters.Limit != nil && *filters.Limit < 0 {
		return nil, errors.Wrap(models.BadParameterError, "limit must not be negative")
	}
	if filters.Offset != nil && *filters.Offset < 0 {
		return nil, errors.Wrap(models.BadParameterError, "offset must not be negative")
	}
	return uc.consentStore.SearchStatusAuditRecords(ctx, uc.executorFactory.NewExecutor(), filters)
}

func (uc ConsentUsecase) CreateAuthorizationResource(
	ctx context.Context,
	auth models.AuthorizationResource,
) (models.AuthorizationResource, error) {
	if auth.ConsentId == "" || auth.AuthType == "" || auth.AuthStatus == "" {
		return models.AuthorizationResource{}, errors.Wrap(models.BadParameterError,
			"consent id, auth type and auth status are required")
	}
	return executor_factory.TransactionReturnValue(ctx, uc.transactionFactory,
		func(tx repositories.Executor) (models.AuthorizationResource, error) {
			if _, err := uc.consentStore.GetConsent(ctx, tx, auth.ConsentId); err != nil {
				return models.AuthorizationResource{}, err
			}
			return uc.consentStore.CreateAuthorizationResource(ctx, tx, auth)
		})
}

func (uc ConsentUsecase) GetAuthorizationResource(
	ctx context.Context,
	authId string,
) (models.AuthorizationResource, error) {
	return uc.consentStore.GetAuthorizationResource(ctx, uc.executorFactory.NewExecutor(), authId)
}

func (uc ConsentUsecase) UpdateAuthorizationStatus(
	ctx context.Context,
	authId string,
	status string,
) error {
	if status == "" {
		return errors.Wrap(models.BadParameterError, "auth status must not be empty")
	}
	return uc.consentStore.UpdateAuthorizationStatus(ctx, uc.executorFactory.NewExecutor(),
		authId, status)
}

func (uc ConsentUsecase) UpdateAuthorizationUser(
	ctx context.Context,
	authId string,
	userId string,
) error {
	if userId == "" {
		return errors.Wrap(models.BadParameterError, "user id must not be empty")
	}
	return uc.consentStore.UpdateAuthorizationUser(ctx, uc.executorFactory.NewExecutor(),
		authId, userId)
}

func (uc ConsentUsecase) SearchAuthorizationResources(
	ctx context.Context,
	filters models.AuthorizationSearchFilters,
) ([]models.AuthorizationResource, error) {
	return uc.consentStore.SearchAuthorizationResources(ctx,
		uc.executorFactory.NewExecutor(), filters)
}

func (uc ConsentUsecase) CreateConsentMapping(
	ctx context.Context,
	mapping models.ConsentMappingResource,
) (models.ConsentMappingResource, error) {
	if mapping.AuthorizationId == "" {
		return models.ConsentMappingResource{}, errors.Wrap(models.BadParameterError,
			"authorization id is required")
	}
	return executor_factory.TransactionReturnValue(ctx, uc.transactionFactory,
		func(tx repositories.Executor) (models.ConsentMappingResource, error) {
			if _, err := uc.consentStore.GetAuthorizationResource(ctx, tx,
				mapping.AuthorizationId); err != nil {
				return models.ConsentMappingResource{}, err
			}
			return uc.consentStore.CreateConsentMapping(ctx, tx, mapping)
		})
}

func (uc ConsentUsecase) UpdateConsentMappingStatuses(
	ctx context.Context,
	mappingIds []string,
	status string,
) error {
	if len(mappingIds) == 0 || status == "" {
		return errors.Wrap(models.BadParameterError, "mapping ids and status are required")
	}
	return uc.transactionFactory.Transaction(ctx, func(tx repositories.Executor) error {
		return uc.consentStore.UpdateConsentMappingStatuses(ctx, tx, mappingIds, status)
	})
}

// StoreConsentAmendmentHistory fans the amendment out into one history entry
// per changed record, all sharing a generated history id.
func (uc ConsentUsecase) StoreConsentAmendmentHistory(
	ctx context.Context,
	consentId string,
	amendment models.ConsentAmendment,
) (string, error) {
	if consentId == "" {
		return "", errors.Wrap(models.BadParameterError, "consent id is required")
	}
	if amendment.BasicData == "" && amendment.Attributes == "" &&
		len(amendment.AuthResources) == 0 && len(amendment.Mappings) == 0 {
		return "", errors.Wrap(models.BadParameterError, "amendment is empty")
	}
	effectiveAt := amendment.EffectiveAt
	if effectiveAt.IsZero() {
		return "", errors.Wrap(models.BadParameterError, "amendment effective time is required")
	}

	historyId := uuid.NewString()
	var entries []models.ConsentHistoryEntry
	appendEntry := func(recordId string, recordType models.ConsentHistoryRecordType, diff string) {
		entries = append(entries, models.ConsentHistoryEntry{
			HistoryId:         historyId,
			RecordId:          recordId,
			RecordType:        recordType,
			ChangedAttributes: diff,
			Reason:            amendment.Reason,
			EffectiveAt:       effectiveAt,
		})
	}
	if amendment.BasicData != "" {
		appendEntry(consentId, models.HistoryRecordTypeConsentData, amendment.BasicData)
	}
	if amendment.Attributes != "" {
		appendEntry(consentId, models.HistoryRecordTypeAttributes, amendment.Attributes)
	}
	for authId, diff := range amendment.AuthResources {
		appendEntry(authId, models.HistoryRecordTypeAuthResource, diff)
	}
	for mappingId, diff := range amendment.Mappings {
		appendEntry(mappingId, models.HistoryRecordTypeMapping, diff)
	}

	err := uc.transactionFactory.Transaction(ctx, func(tx repositories.Executor) error {
		if _, err := uc.consentStore.GetConsent(ctx, tx, consentId); err != nil {
			return err
		}
		return uc.consentStore.CreateConsentHistoryEntries(ctx, tx, entries)
	})
	if err != nil {
		return "", err
	}
	return historyId, nil
}

// GetConsentAmendmentHistory collects every record id belonging to the
// consent (the consent itself, its authorizations, their mappings) and
// returns the amendments touching any of them, most recent first.
func (uc ConsentUsecase) GetConsentAmendmentHistory(
	ctx context.Context,
	consentId string,
) ([]models.ConsentHistoryResource, error) {
	exec := uc.executorFactory.NewExecutor()

	detailed, err := uc.consentStore.GetDetailedConsent(ctx, exec, consentId)
	if err != nil {
		return nil, err
	}

	recordIds := []string{consentId}
	for _, auth := range detailed.AuthorizationResources {
		recordIds = append(recordIds, auth.Id)
		for _, mapping := range auth.Mappings {
			recordIds = append(recordIds, mapping.Id)
		}
	}

	return uc.consentStore.ListConsentAmendmentHistory(ctx, exec, consentId, recordIds)
}

// ExpireConsents transitions every consent whose validity time has elapsed,
// writing the paired audit record per consent. Each consent gets its own
// transaction so one failure does not hold back the batch.
func (uc ConsentUsecase) ExpireConsents(
	ctx context.Context,
	eligibleStatuses []string,
	expiredStatus string,
) (int, error) {
	logger := utils.LoggerFromContext(ctx)

	expiring, err := uc.consentStore.ListExpiringConsents(ctx,
		uc.executorFactory.NewExecutor(), eligibleStatuses)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, consent := range expiring {
		_, err := uc.UpdateConsentStatus(ctx, models.ConsentStatusUpdate{
			ConsentId: consent.Id,
			Status:    expiredStatus,
			Reason:    "consent validity time elapsed",
			ActionBy:  "system",
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to expire consent",
				"consentId", consent.Id, "error", err.Error())
			continue
		}
		expired++
	}
	return expired, nil
}

func (uc ConsentUsecase) DeleteConsent(ctx context.Context, consentId string) error {
	if consentId == "" {
		return errors.Wrap(models.BadParameterError, "consent id is required")
	}
	return uc.transactionFactory.Transaction(ctx, func(tx repositories.Executor) error {
		return uc.consentStore.DeleteConsent(ctx, tx, consentId)
	})
}

func nullStringFrom(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
