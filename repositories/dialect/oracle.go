package dialect

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// OracleDialect covers engine families that paginate with
// OFFSET m ROWS FETCH NEXT n ROWS ONLY and aggregate with an ordered
// list-aggregation function. The offset placeholder precedes the limit one,
// so call sites must bind parameters in the opposite order to
// PostgresDialect.
type OracleDialect struct{}

func (OracleDialect) Name() string {
	return EngineOracle
}

func (OracleDialect) StringAgg(expr string, orderBy string) string {
	return fmt.Sprintf("LISTAGG(%s, '%s') WITHIN GROUP (ORDER BY %s)", expr, AggregationSeparator, orderBy)
}

func (OracleDialect) PaginationClause(hasLimit, hasOffset bool) string {
	switch {
	case hasLimit && hasOffset:
		return "OFFSET ? ROWS FETCH NEXT ? ROWS ONLY"
	case hasLimit:
		return "FETCH NEXT ? ROWS ONLY"
	case hasOffset:
		return "OFFSET ? ROWS"
	default:
		return ""
	}
}

func (OracleDialect) LimitBeforeOffset() bool {
	return false
}

func (OracleDialect) QueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Colon)
}
