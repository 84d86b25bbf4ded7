package tputil

import "context"

// NsPerMs is the scale between the engine's native timestamp unit
// (nanoseconds) and milliseconds. It is the only ns to ms divisor in the
// codebase; every duration conversion goes through it.
const NsPerMs float64 = 1e6

type (
	// Row is a single result record from the trace query engine, keyed by
	// column name.
	Row map[string]interface{}

	// Querier runs a read-only SQL statement against a loaded trace and
	// returns the matching rows. An empty result is not an error. Query
	// errors (including missing tables) are returned as errors and are
	// treated as degraded, never fatal, by the analysis pipeline.
	Querier interface {
		RunQuery(ctx context.Context, statement string) ([]Row, error)
	}

	// QuerierFunc adapts a function to the Querier interface.
	QuerierFunc func(ctx context.Context, statement string) ([]Row, error)
)

func (f QuerierFunc) RunQuery(ctx context.Context, statement string) ([]Row, error) {
	return f(ctx, statement)
}

// Float64 reads a numeric column, tolerating the integer and string-encoded
// values the JSON and database/sql engines produce.
func (r Row) Float64(column string) (float64, bool) {
	switch v := r[column].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func (r Row) String(column string) (string, bool) {
	switch v := r[column].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}
