package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/clock"
	"github.com/openbankly/consent-backend/repositories/dialect"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) (*ConsentDbRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewConsentDbRepository(dialect.PostgresDialect{}, clock.NewMock(testNow)), mock
}

func TestCreateConsent(t *testing.T) {
	repo, mock := newTestRepository(t)

	consent := models.Consent{
		Id:            "consent-1",
		OrgId:         "org-1",
		ClientId:      "client-1",
		ConsentType:   "accounts",
		Receipt:       `{"permissions":["ReadAccountsBasic"]}`,
		CurrentStatus: "awaitingAuthorization",
		Frequency:     1,
		ValidityTime:  null.IntFrom(1780000000),
	}

	mock.ExpectExec("INSERT INTO consents").
		WithArgs(
			"consent-1", "org-1", "client-1", "accounts", consent.Receipt,
			"awaitingAuthorization", 1, consent.ValidityTime, false, testNow, testNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.CreateConsent(context.Background(), mock, consent)
	require.NoError(t, err)
	assert.Equal(t, "consent-1", created.Id)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Equal(t, testNow, created.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConsent_insertionFailure(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO consents").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(assert.AnError)

	_, err := repo.CreateConsent(context.Background(), mock, models.Consent{
		Id: "consent-1", ClientId: "client-1",
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsertionFailure))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConsent_duplicateIdIsAConflict(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO consents").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.CreateConsent(context.Background(), mock, models.Consent{
		Id: "consent-1", ClientId: "client-1",
	})
	assert.True(t, errors.Is(err, models.ConflictError))
	assert.False(t, errors.Is(err, models.ErrInsertionFailure))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConsent(t *testing.T) {
	repo, mock := newTestRepository(t)

	t.Run("nominal", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM consents").
			WithArgs("consent-1").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "org_id", "client_id", "consent_type", "receipt", "current_status",
				"frequency", "validity_time", "recurring_indicator", "created_at", "updated_at",
			}).AddRow(
				"consent-1", "org-1", "client-1", "accounts", "{}", "authorized",
				1, int64(1780000000), true, testNow, testNow,
			))

		consent, err := repo.GetConsent(context.Background(), mock, "consent-1")
		require.NoError(t, err)
		assert.Equal(t, "consent-1", consent.Id)
		assert.Equal(t, "authorized", consent.CurrentStatus)
		assert.Equal(t, null.IntFrom(1780000000), consent.ValidityTime)
		assert.True(t, consent.RecurringIndicator)
	})

	t.Run("missing consent is a NotFoundError", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM consents").
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "org_id", "client_id", "consent_type", "receipt", "current_status",
				"frequency", "validity_time", "recurring_indicator", "created_at", "updated_at",
			}))

		_, err := repo.GetConsent(context.Background(), mock, "missing")
		assert.True(t, errors.Is(err, models.NotFoundError))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConsentWithAttributes(t *testing.T) {
	repo, mock := newTestRepository(t)

	t.Run("nominal", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM consents").
			WithArgs("consent-1").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "org_id", "client_id", "consent_type", "receipt", "current_status",
				"frequency", "validity_time", "recurring_indicator", "created_at", "updated_at",
			}).AddRow(
				"consent-1", "org-1", "client-1", "accounts", "{}", "authorized",
				1, int64(1780000000), false, testNow, testNow,
			))
		mock.ExpectQuery("SELECT .* FROM consent_attributes").
			WithArgs("consent-1").
			WillReturnRows(pgxmock.NewRows([]string{"consent_id", "att_key", "att_value"}).
				AddRow("consent-1", "idempotency_key", "abc-123").
				AddRow("consent-1", "sharing_duration", "86400"))

		consent, err := repo.GetConsentWithAttributes(context.Background(), mock, "consent-1")
		require.NoError(t, err)
		assert.Equal(t, "consent-1", consent.Id)
		assert.Equal(t, "authorized", consent.CurrentStatus)
		assert.Equal(t, map[string]string{
			"idempotency_key":  "abc-123",
			"sharing_duration": "86400",
		}, consent.Attributes)
	})

	t.Run("missing consent is a NotFoundError", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM consents").
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "org_id", "client_id", "consent_type", "receipt", "current_status",
				"frequency", "validity_time", "recurring_indicator", "created_at", "updated_at",
			}))

		_, err := repo.GetConsentWithAttributes(context.Background(), mock, "missing")
		assert.True(t, errors.Is(err, models.NotFoundError))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConsentStatus(t *testing.T) {
	repo, mock := newTestRepository(t)

	t.Run("nominal", func(t *testing.T) {
		mock.ExpectExec("UPDATE consents SET current_status").
			WithArgs("revoked", testNow, "consent-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateConsentStatus(context.Background(), mock, "consent-1", "revoked")
		assert.NoError(t, err)
	})

	t.Run("missing consent is a NotFoundError", func(t *testing.T) {
		mock.ExpectExec("UPDATE consents SET current_status").
			WithArgs("revoked", testNow, "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateConsentStatus(context.Background(), mock, "missing", "revoked")
		assert.True(t, errors.Is(err, models.NotFoundError))
	})

	t.Run("db error carries the update failure mark", func(t *testing.T) {
		mock.ExpectExec("UPDATE consents SET current_status").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(assert.AnError)

		err := repo.UpdateConsentStatus(context.Background(), mock, "consent-1", "revoked")
		assert.True(t, errors.Is(err, models.ErrUpdateFailure))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStatusAuditRecord(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO consent_status_audit").
		WithArgs(
			pgxmock.AnyArg(), "consent-1", null.StringFrom("authorized"),
			"revoked", null.StringFrom("user request"), null.StringFrom("psu-1"), testNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	record, err := repo.CreateStatusAuditRecord(context.Background(), mock,
		models.ConsentStatusAuditRecord{
			ConsentId:      "consent-1",
			PreviousStatus: null.StringFrom("authorized"),
			CurrentStatus:  "revoked",
			Reason:         null.StringFrom("user request"),
			ActionBy:       null.StringFrom("psu-1"),
		})
	require.NoError(t, err)
	assert.NotEmpty(t, record.AuditId)
	assert.Equal(t, testNow, record.ActionTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiringConsents(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT .* FROM consents WHERE current_status IN .* AND validity_time <=").
		WithArgs("authorized", "awaitingAuthorization", testNow.Unix()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "org_id", "client_id", "consent_type", "receipt", "current_status",
			"frequency", "validity_time", "recurring_indicator", "created_at", "updated_at",
		}).AddRow(
			"consent-1", "org-1", "client-1", "accounts", "{}", "authorized",
			1, int64(100), false, testNow, testNow,
		))

	consents, err := repo.ListExpiringConsents(context.Background(), mock,
		[]string{"authorized", "awaitingAuthorization"})
	require.NoError(t, err)
	require.Len(t, consents, 1)
	assert.Equal(t, "consent-1", consents[0].Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteConsent(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("DELETE FROM consent_history").
		WithArgs("consent-1", "consent-1", "consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM consent_mappings").
		WithArgs("consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM consent_auth_resources").
		WithArgs("consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM consent_attributes").
		WithArgs("consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM consent_files").
		WithArgs("consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM consent_status_audit").
		WithArgs("consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec("DELETE FROM consents").
		WithArgs("consent-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.DeleteConsent(context.Background(), mock, "consent-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
