package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbankly/consent-backend/models"
)

var historyColumns = []string{
	"history_id", "record_id", "record_type", "changed_attributes", "reason", "effective_at",
}

func TestCreateConsentHistoryEntries(t *testing.T) {
	repo, mock := newTestRepository(t)

	entries := []models.ConsentHistoryEntry{
		{
			HistoryId:         "hist-1",
			RecordId:          "consent-1",
			RecordType:        models.HistoryRecordTypeConsentData,
			ChangedAttributes: `{"receipt":"old"}`,
			Reason:            "amended by user",
			EffectiveAt:       testNow,
		},
		{
			HistoryId:         "hist-1",
			RecordId:          "auth-1",
			RecordType:        models.HistoryRecordTypeAuthResource,
			ChangedAttributes: `{"auth_status":"created"}`,
			Reason:            "amended by user",
			EffectiveAt:       testNow,
		},
	}

	mock.ExpectExec("INSERT INTO consent_history").
		WithArgs(
			"hist-1", "consent-1", "consent_basic_data", `{"receipt":"old"}`, "amended by user", testNow,
			"hist-1", "auth-1", "consent_auth_resource", `{"auth_status":"created"}`, "amended by user", testNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	err := repo.CreateConsentHistoryEntries(context.Background(), mock, entries)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConsentHistoryEntries_empty(t *testing.T) {
	repo, mock := newTestRepository(t)

	err := repo.CreateConsentHistoryEntries(context.Background(), mock, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListConsentAmendmentHistory(t *testing.T) {
	repo, mock := newTestRepository(t)

	older := testNow.Add(-24 * time.Hour)

	// Two amendments: hist-2 touched the consent row and one authorization,
	// hist-1 only touched a mapping.
	mock.ExpectQuery("SELECT .* FROM consent_history WHERE record_id IN .* ORDER BY effective_at DESC").
		WithArgs("consent-1", "auth-1", "map-1").
		WillReturnRows(pgxmock.NewRows(historyColumns).
			AddRow("hist-2", "consent-1", "consent_basic_data", `{"receipt":"v1"}`, "user amendment", testNow).
			AddRow("hist-2", "auth-1", "consent_auth_resource", `{"auth_status":"created"}`, "user amendment", testNow).
			AddRow("hist-1", "map-1", "consent_mapping", `{"mapping_status":"active"}`, "initial grant", older),
		)

	amendments, err := repo.ListConsentAmendmentHistory(context.Background(), mock,
		"consent-1", []string{"consent-1", "auth-1", "map-1"})
	require.NoError(t, err)
	require.Len(t, amendments, 2)

	recent := amendments[0]
	assert.Equal(t, "hist-2", recent.HistoryId)
	assert.Equal(t, "consent-1", recent.ConsentId)
	assert.Equal(t, "user amendment", recent.Reason)
	assert.Equal(t, testNow, recent.EffectiveAt)
	assert.Equal(t, `{"receipt":"v1"}`, recent.BasicData)
	assert.Equal(t, map[string]string{"auth-1": `{"auth_status":"created"}`}, recent.AuthResources)
	assert.Empty(t, recent.Mappings)

	previous := amendments[1]
	assert.Equal(t, "hist-1", previous.HistoryId)
	assert.Equal(t, older, previous.EffectiveAt)
	assert.Empty(t, previous.BasicData)
	assert.Equal(t, map[string]string{"map-1": `{"mapping_status":"active"}`}, previous.Mappings)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListConsentAmendmentHistory_noRecordIds(t *testing.T) {
	repo, mock := newTestRepository(t)

	amendments, err := repo.ListConsentAmendmentHistory(context.Background(), mock,
		"consent-1", nil)
	assert.NoError(t, err)
	assert.Empty(t, amendments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
