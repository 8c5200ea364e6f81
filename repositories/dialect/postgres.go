package dialect

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// PostgresDialect covers the engine families that paginate with a trailing
// LIMIT/OFFSET and aggregate with string_agg.
type PostgresDialect struct{}

func (PostgresDialect) Name() string {
	return EnginePostgres
}

func (PostgresDialect) StringAgg(expr string, orderBy string) string {
	return fmt.Sprintf("string_agg(%s::text, '%s' ORDER BY %s)", expr, AggregationSeparator, orderBy)
}

func (PostgresDialect) PaginationClause(hasLimit, hasOffset bool) string {
	switch {
	case hasLimit && hasOffset:
		return "LIMIT ? OFFSET ?"
	case hasLimit:
		return "LIMIT ?"
	case hasOffset:
		return "OFFSET ?"
	default:
		return ""
	}
}

func (PostgresDialect) LimitBeforeOffset() bool {
	return true
}

func (PostgresDialect) QueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
