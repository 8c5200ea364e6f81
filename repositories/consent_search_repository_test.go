package repositories

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbankly/consent-backend/models"
	"github.com/openbankly/consent-backend/repositories/clock"
	"github.com/openbankly/consent-backend/repositories/dialect"
)

var searchRowColumns = []string{
	"id", "org_id", "client_id", "consent_type", "receipt", "current_status",
	"frequency", "validity_time", "recurring_indicator", "created_at", "updated_at",
	"att_keys", "att_values",
	"auth_ids", "auth_statuses", "auth_types", "user_ids",
	"mapping_auth_ids", "mapping_ids", "resources", "permissions", "mapping_statuses",
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func TestSearchConsents(t *testing.T) {
	t.Run("reconstructs a page row into a detailed consent", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("SELECT c.id, .* FROM consents c LEFT JOIN consent_auth_resources ua ON ua.consent_id = c.id .* GROUP BY .* ORDER BY c.updated_at DESC").
			WithArgs("client-1").
			WillReturnRows(pgxmock.NewRows(searchRowColumns).AddRow(
				"consent-1", "org-1", "client-1", "accounts", "{}", "authorized",
				1, int64(1780000000), false, testNow, testNow,
				strPtr("key-1"), strPtr("value-1"),
				strPtr("auth-1||auth-2"), strPtr("authorized||created"), strPtr("authorization||authorization"), strPtr("psu-1||"),
				strPtr("auth-1||auth-2"), strPtr("map-1||map-2"), strPtr("acc-001||acc-002"), strPtr("ReadBalances||ReadTransactions"), strPtr("active||active"),
			))

		consents, err := repo.SearchConsents(context.Background(), mock,
			models.ConsentSearchFilters{ClientIds: []string{"client-1"}})
		require.NoError(t, err)
		require.Len(t, consents, 1)

		detailed := consents[0]
		assert.Equal(t, "consent-1", detailed.Id)
		assert.Equal(t, map[string]string{"key-1": "value-1"}, detailed.Attributes)
		require.Len(t, detailed.AuthorizationResources, 2)
		assert.Equal(t, "psu-1", detailed.AuthorizationResources[0].UserId.String)
		assert.False(t, detailed.AuthorizationResources[1].UserId.Valid)
		require.Len(t, detailed.AuthorizationResources[0].Mappings, 1)
		assert.Equal(t, "map-1", detailed.AuthorizationResources[0].Mappings[0].Id)
		require.Len(t, detailed.AuthorizationResources[1].Mappings, 1)
		assert.Equal(t, "map-2", detailed.AuthorizationResources[1].Mappings[0].Id)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user filter flips the authorization join to inner", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("FROM consents c JOIN consent_auth_resources ua ON ua.consent_id = c.id WHERE ua.user_id IN").
			WithArgs("psu-1").
			WillReturnRows(pgxmock.NewRows(searchRowColumns))

		_, err := repo.SearchConsents(context.Background(), mock,
			models.ConsentSearchFilters{UserIds: []string{"psu-1"}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres binds limit before offset", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("LIMIT .* OFFSET").
			WithArgs("client-1", 10, 20).
			WillReturnRows(pgxmock.NewRows(searchRowColumns))

		_, err := repo.SearchConsents(context.Background(), mock,
			models.ConsentSearchFilters{
				ClientIds: []string{"client-1"},
				Limit:     intPtr(10),
				Offset:    intPtr(20),
			})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("oracle binds offset before limit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewConsentDbRepository(dialect.OracleDialect{}, clock.NewMock(testNow))

		mock.ExpectQuery("LISTAGG.* OFFSET .* ROWS FETCH NEXT .* ROWS ONLY").
			WithArgs("client-1", 20, 10).
			WillReturnRows(pgxmock.NewRows(searchRowColumns))

		_, err = repo.SearchConsents(context.Background(), mock,
			models.ConsentSearchFilters{
				ClientIds: []string{"client-1"},
				Limit:     intPtr(10),
				Offset:    intPtr(20),
			})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// The delimiter-joined page format is dialect-independent: the same
	// aggregated row set must reconstruct into the same consents whichever
	// engine produced it.
	t.Run("both dialects reconstruct the same consents from one page", func(t *testing.T) {
		seededRows := func() *pgxmock.Rows {
			return pgxmock.NewRows(searchRowColumns).AddRow(
				"consent-1", "org-1", "client-1", "accounts", "{}", "authorized",
				1, int64(1780000000), false, testNow, testNow,
				strPtr("key-1"), strPtr("value-1"),
				strPtr("auth-1||auth-2"), strPtr("authorized||created"), strPtr("authorization||authorization"), strPtr("psu-1||"),
				strPtr("auth-1||auth-2"), strPtr("map-1||map-2"), strPtr("acc-001||acc-002"), strPtr("ReadBalances||ReadTransactions"), strPtr("active||active"),
			).AddRow(
				"consent-2", "org-1", "client-1", "payments", "{}", "awaitingAuthorization",
				1, nil, true, testNow, testNow,
				nil, nil,
				nil, nil, nil, nil,
				nil, nil, nil, nil, nil,
			)
		}

		search := func(d dialect.Dialect, aggregateFn string) []models.DetailedConsentResource {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			t.Cleanup(mock.Close)
			repo := NewConsentDbRepository(d, clock.NewMock(testNow))

			mock.ExpectQuery(aggregateFn).
				WithArgs("client-1").
				WillReturnRows(seededRows())

			consents, err := repo.SearchConsents(context.Background(), mock,
				models.ConsentSearchFilters{ClientIds: []string{"client-1"}})
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
			return consents
		}

		fromPostgres := search(dialect.PostgresDialect{}, "string_agg")
		fromOracle := search(dialect.OracleDialect{}, "LISTAGG")

		require.Len(t, fromPostgres, 2)
		assert.Equal(t, fromPostgres, fromOracle)
	})

	t.Run("misaligned aggregates surface as a retrieval failure", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("FROM consents c").
			WillReturnRows(pgxmock.NewRows(searchRowColumns).AddRow(
				"consent-1", "org-1", "client-1", "accounts", "{}", "authorized",
				1, nil, false, testNow, testNow,
				nil, nil,
				strPtr("auth-1||auth-2"), strPtr("authorized"), strPtr("authorization||authorization"), strPtr("||"),
				nil, nil, nil, nil, nil,
			))

		_, err := repo.SearchConsents(context.Background(), mock,
			models.ConsentSearchFilters{})
		assert.ErrorContains(t, err, "authorization aggregate mismatch")
	})
}
