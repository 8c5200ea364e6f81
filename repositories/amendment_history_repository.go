package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// CreateConsentHistoryEntries appends the rows of one amendment. All entries
// of an amendment share a history id; the caller generates it so the grouping
// survives the flat table layout.
func (repo *ConsentDbRepository) CreateConsentHistoryEntries(
	ctx context.Context,
	exec Executor,
	entries []models.ConsentHistoryEntry,
) error {
	if len(entries) == 0 {
		return nil
	}

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENT_HISTORY).
		Columns(dbmodels.SelectConsentHistoryColumns...)
	for _, entry := range entries {
		query = query.Values(
			entry.HistoryId,
			entry.RecordId,
			string(entry.RecordType),
			entry.ChangedAttributes,
			entry.Reason,
			entry.EffectiveAt,
		)
	}

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return insertionError(err,
			fmt.Sprintf("failed to insert history entries %s", entries[0].HistoryId))
	}
	return nil
}

// ListConsentAmendmentHistory returns the amendments touching any of the
// given record ids, most recent first. Rows sharing a history id are folded
// into one ConsentHistoryResource.
func (repo *ConsentDbRepository) ListConsentAmendmentHistory(
	ctx context.Context,
	exec Executor,
	consentId string,
	recordIds []string,
) ([]models.ConsentHistoryResource, error) {
	if len(recordIds) == 0 {
		return nil, nil
	}

	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentHistoryColumns...).
		From(dbmodels.TABLE_CONSENT_HISTORY).
		Where(squirrel.Eq{"record_id": recordIds}).
		OrderBy("effective_at DESC", "history_id", "record_id")

	entries, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptConsentHistoryEntry)
	if err != nil {
		return nil, retrievalError(err,
			fmt.Sprintf("failed to retrieve amendment history of consent %s", consentId))
	}

	var amendments []models.ConsentHistoryResource
	byHistoryId := make(map[string]int)
	for _, entry := range entries {
		idx, ok := byHistoryId[entry.HistoryId]
		if !ok {
			idx = len(amendments)
			byHistoryId[entry.HistoryId] = idx
			amendments = append(amendments, models.ConsentHistoryResource{
				ConsentId:     consentId,
				HistoryId:     entry.HistoryId,
				Reason:        entry.Reason,
				EffectiveAt:   entry.EffectiveAt,
				AuthResources: make(map[string]string),
				Mappings:      make(map[string]string),
			})
		}

		switch entry.RecordType {
		case models.HistoryRecordTypeConsentData:
			amendments[idx].BasicData = entry.ChangedAttributes
		case models.HistoryRecordTypeAttributes:
			amendments[idx].Attributes = entry.ChangedAttributes
		case models.HistoryRecordTypeAuthResource:
			amendments[idx].AuthResources[entry.RecordId] = entry.ChangedAttributes
		case models.HistoryRecordTypeMapping:
			amendments[idx].Mappings[entry.RecordId] = entry.ChangedAttributes
		}
	}
	return amendments, nil
}
