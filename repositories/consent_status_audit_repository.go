package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/dbmodels"
)

// CreateStatusAuditRecord appends one audit row. It is always called in the
// same transaction as the status transition it records.
func (repo *ConsentDbRepository) CreateStatusAuditRecord(
	ctx context.Context,
	exec Executor,
	record models.ConsentStatusAuditRecord,
) (models.ConsentStatusAuditRecord, error) {
	if record.AuditId == "" {
		record.AuditId = uuid.NewString()
	}
	if record.ActionTime.IsZero() {
		record.ActionTime = repo.clock.Now()
	}

	query := repo.dialect.QueryBuilder().
		Insert(dbmodels.TABLE_CONSENT_STATUS_AUDIT).
		Columns(dbmodels.SelectConsentStatusAuditColumns...).
		Values(
			record.AuditId,
			record.ConsentId,
			record.PreviousStatus,
			record.CurrentStatus,
			record.Reason,
			record.ActionBy,
			record.ActionTime,
		)

	if _, err := ExecBuilder(ctx, exec, query); err != nil {
		return models.ConsentStatusAuditRecord{}, insertionError(err,
			fmt.Sprintf("failed to insert audit record for consent %s", record.ConsentId))
	}
	return record, nil
}

// SearchStatusAuditRecords returns audit rows matching the filters, most
// recent first.
func (repo *ConsentDbRepository) SearchStatusAuditRecords(
	ctx context.Context,
	exec Executor,
	filters models.ConsentStatusAuditSearchFilters,
) ([]models.ConsentStatusAuditRecord, error) {
	query := repo.dialect.QueryBuilder().
		Select(dbmodels.SelectConsentStatusAuditColumns...).
		From(dbmodels.TABLE_CONSENT_STATUS_AUDIT).
		OrderBy("action_time DESC", "id DESC")

	if len(filters.ConsentIds) > 0 {
		query = query.Where(squirrel.Eq{"consent_id": filters.ConsentIds})
	}
	if len(filters.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"current_status": filters.Statuses})
	}
	if filters.ActionBy != "" {
		query = query.Where(squirrel.Eq{"action_by": filters.ActionBy})
	}
	if filters.FromTime != nil {
		query = query.Where(squirrel.GtOrEq{"action_time": *filters.FromTime})
	}
	if filters.ToTime != nil {
		query = query.Where(squirrel.LtOrEq{"action_time": *filters.ToTime})
	}
	query = repo.paginate(query, filters.Limit, filters.Offset)

	records, err := SqlToListOfModels(ctx, exec, query, dbmodels.AdaptConsentStatusAudit)
	if err != nil {
		return nil, retrievalError(err, "failed to search status audit records")
	}
	return records, nil
}
