package startup

import (
	"context"
	"fmt"

	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

// frameMarkerCondition matches the rendering-frame slices Android emits from
// the Choreographer frame callback.
const frameMarkerCondition = "(name LIKE '%Choreographer%' OR name LIKE '%doFrame%')"

// EstimateMs bounds the startup window: earliest slice in the trace up to
// the first rendering-frame marker, scoped to the focus process when one is
// resolved. The earliest marker wins regardless of duration. Missing anchors
// make the estimate unavailable, with the assumption naming which anchor was
// absent.
func EstimateMs(ctx context.Context, q tputil.Querier, focusPid types.Int64) (types.Float64, string) {
	earliestNs, ok, why := minTs(ctx, q, nil)
	if !ok {
		return types.Float64{}, fmt.Sprintf("Startup unavailable: no slices found in trace%s", why)
	}

	conditions := []string{frameMarkerCondition}
	scope := "trace-wide"
	if focusPid.Valid {
		conditions = append(conditions, fmt.Sprintf("pid = %d", focusPid.Value))
		scope = fmt.Sprintf("for pid %d", focusPid.Value)
	}
	firstFrameNs, ok, why := minTs(ctx, q, conditions)
	if !ok {
		return types.Float64{}, fmt.Sprintf("Startup unavailable: no Choreographer/doFrame slices found %s%s", scope, why)
	}

	startupMs := (firstFrameNs - earliestNs) / tputil.NsPerMs
	return types.NewFloat64(startupMs), fmt.Sprintf(
		"Startup estimated as earliest slice (%.2fms) to first Choreographer/doFrame (%.2fms) %s",
		earliestNs/tputil.NsPerMs, firstFrameNs/tputil.NsPerMs, scope,
	)
}

func minTs(ctx context.Context, q tputil.Querier, conditions []string) (float64, bool, string) {
	qb := tputil.QueryBuilder{
		Table:           "slice",
		SelectCols:      []string{"MIN(ts) AS min_ts"},
		WhereConditions: conditions,
	}
	statement, err := qb.Query()
	if err != nil {
		return 0, false, fmt.Sprintf(" (%v)", err)
	}
	rows, err := q.RunQuery(ctx, statement)
	if err != nil {
		return 0, false, fmt.Sprintf(" (%v)", err)
	}
	if len(rows) == 0 {
		return 0, false, ""
	}
	ts, ok := rows[0].Float64("min_ts")
	if !ok {
		return 0, false, ""
	}
	return ts, true, ""
}
