package dialect

import (
	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/openbankly/consent-backend/models"
)

// AggregationSeparator joins one-to-many child values into a single column
// per consent. Splitting on it client-side and zipping by positional index
// reconstructs the (authorization, mapping) pairings, so every aggregated
// column of one query must use the same ordering key.
const AggregationSeparator = "||"

// Dialect is the single seam that keeps the consent store agnostic of the
// configured database family. Given identical semantic inputs, every
// implementation must produce queries whose result sets are identical in
// content; only syntax and pagination parameter order may differ.
type Dialect interface {
	Name() string

	// StringAgg returns the SQL expression aggregating expr into one
	// separator-joined string, ordered by orderBy.
	StringAgg(expr string, orderBy string) string

	// PaginationClause returns the trailing clause for the requested
	// combination of limit/offset, with one placeholder per value. Callers
	// bind parameters in the order given by LimitBeforeOffset.
	PaginationClause(hasLimit, hasOffset bool) string

	// LimitBeforeOffset reports whether the limit placeholder precedes the
	// offset placeholder when both are present.
	LimitBeforeOffset() bool

	// QueryBuilder returns a statement builder preconfigured with the
	// placeholder format of the database family.
	QueryBuilder() squirrel.StatementBuilderType
}

const (
	EnginePostgres = "postgres"
	EngineOracle   = "oracle"
)

// ForEngine resolves the dialect for a configured engine family, once per
// deployment. Unknown engines are a configuration error.
func ForEngine(engine string) (Dialect, error) {
	switch engine {
	case EnginePostgres:
		return PostgresDialect{}, nil
	case EngineOracle:
		return OracleDialect{}, nil
	default:
		return nil, errors.Mark(
			errors.Newf("unknown database engine %q", engine),
			models.ErrConfiguration)
	}
}
