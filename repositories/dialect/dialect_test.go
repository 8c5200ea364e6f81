package dialect

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/openbankly/consent-backend/models"
)

func TestForEngine(t *testing.T) {
	t.Run("resolves postgres", func(t *testing.T) {
		d, err := ForEngine(EnginePostgres)
		assert.NoError(t, err)
		assert.Equal(t, EnginePostgres, d.Name())
	})

	t.Run("resolves oracle", func(t *testing.T) {
		d, err := ForEngine(EngineOracle)
		assert.NoError(t, err)
		assert.Equal(t, EngineOracle, d.Name())
	})

	t.Run("unknown engine is a configuration error", func(t *testing.T) {
		_, err := ForEngine("mongodb")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrConfiguration))
	})
}

func TestStringAgg(t *testing.T) {
	assert.Equal(t,
		"string_agg(a.id::text, '||' ORDER BY a.id)",
		PostgresDialect{}.StringAgg("a.id", "a.id"))
	assert.Equal(t,
		"LISTAGG(a.id, '||') WITHIN GROUP (ORDER BY a.id)",
		OracleDialect{}.StringAgg("a.id", "a.id"))
}

func TestPaginationClause(t *testing.T) {
	t.Run("postgres binds limit first", func(t *testing.T) {
		d := PostgresDialect{}
		assert.True(t, d.LimitBeforeOffset())
		assert.Equal(t, "LIMIT ? OFFSET ?", d.PaginationClause(true, true))
		assert.Equal(t, "LIMIT ?", d.PaginationClause(true, false))
		assert.Equal(t, "OFFSET ?", d.PaginationClause(false, true))
		assert.Equal(t, "", d.PaginationClause(false, false))
	})

	t.Run("oracle binds offset first", func(t *testing.T) {
		d := OracleDialect{}
		assert.False(t, d.LimitBeforeOffset())
		assert.Equal(t, "OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", d.PaginationClause(true, true))
		assert.Equal(t, "FETCH NEXT ? ROWS ONLY", d.PaginationClause(true, false))
		assert.Equal(t, "OFFSET ? ROWS", d.PaginationClause(false, true))
		assert.Equal(t, "", d.PaginationClause(false, false))
	})
}

func TestQueryBuilderPlaceholders(t *testing.T) {
	t.Run("postgres uses dollar placeholders", func(t *testing.T) {
		sql, args, err := PostgresDialect{}.QueryBuilder().
			Select("id").From("consents").Where("client_id = ?", "client-1").ToSql()
		assert.NoError(t, err)
		assert.Equal(t, "SELECT id FROM consents WHERE client_id = $1", sql)
		assert.Equal(t, []interface{}{"client-1"}, args)
	})

	t.Run("oracle uses colon placeholders", func(t *testing.T) {
		sql, args, err := OracleDialect{}.QueryBuilder().
			Select("id").From("consents").Where("client_id = ?", "client-1").ToSql()
		assert.NoError(t, err)
		assert.Equal(t, "SELECT id FROM consents WHERE client_id = :1", sql)
		assert.Equal(t, []interface{}{"client-1"}, args)
	})
}
