package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

// MaxProcesses caps the process inventory to bound report size.
const MaxProcesses = 20

type Process struct {
	Pid  int64  `json:"pid"`
	Name string `json:"name"`
}

// TraceDurationMs derives the trace duration from the trace_bounds table.
// When bounds are missing the duration is unavailable, never an error.
func TraceDurationMs(ctx context.Context, q tputil.Querier) (types.Float64, string) {
	qb := tputil.QueryBuilder{
		Table:      "trace_bounds",
		SelectCols: []string{"start_ts", "end_ts"},
	}
	statement, err := qb.Query()
	if err != nil {
		return types.Float64{}, fmt.Sprintf("Trace bounds query could not be built: %v", err)
	}
	rows, err := q.RunQuery(ctx, statement)
	if err != nil {
		return types.Float64{}, fmt.Sprintf("Trace bounds unavailable: %v", err)
	}
	if len(rows) == 0 {
		return types.Float64{}, "Trace bounds unavailable: trace_bounds table is empty"
	}
	startTs, okStart := rows[0].Float64("start_ts")
	endTs, okEnd := rows[0].Float64("end_ts")
	if !okStart || !okEnd {
		return types.Float64{}, "Trace bounds unavailable: start_ts or end_ts is NULL"
	}
	if endTs < startTs {
		return types.Float64{}, fmt.Sprintf("Trace bounds unavailable: end_ts %v precedes start_ts %v", endTs, startTs)
	}
	return types.NewFloat64((endTs - startTs) / tputil.NsPerMs), "Calculated from trace_bounds table (end_ts - start_ts)"
}

// Processes returns the process inventory in engine order, capped at limit.
// A missing process table yields an empty list, not an error.
func Processes(ctx context.Context, q tputil.Querier, limit int) ([]Process, string) {
	if limit <= 0 {
		limit = MaxProcesses
	}
	qb := tputil.QueryBuilder{
		Table:      "process",
		Distinct:   true,
		SelectCols: []string{"pid", "name"},
		WhereConditions: []string{
			"pid IS NOT NULL",
			"name IS NOT NULL",
		},
		OrderBy: "pid ASC",
		Limit:   uint64(limit),
	}
	statement, err := qb.Query()
	if err != nil {
		return []Process{}, fmt.Sprintf("Process inventory unavailable: %v", err)
	}
	rows, err := q.RunQuery(ctx, statement)
	if err != nil {
		return []Process{}, fmt.Sprintf("Process inventory unavailable: %v", err)
	}

	processes := make([]Process, 0, len(rows))
	for _, row := range rows {
		pid, okPid := row.Int64("pid")
		name, okName := row.String("name")
		if !okPid || !okName {
			continue
		}
		processes = append(processes, Process{Pid: pid, Name: name})
		if len(processes) == limit {
			break
		}
	}
	return processes, fmt.Sprintf("Extracted from process table, limited to %d entries", limit)
}

// ResolveFocus matches the requested focus process name against the
// inventory, exact match first, then substring. No match degrades to no
// per-process filtering downstream, recorded as an assumption.
func ResolveFocus(processes []Process, focusName string) (types.Int64, string) {
	if focusName == "" {
		return types.Int64{}, "No focus process requested; per-process attribution disabled"
	}
	for _, p := range processes {
		if p.Name == focusName {
			return types.NewInt64(p.Pid), fmt.Sprintf("Focus process %q resolved to pid %d by exact name match", focusName, p.Pid)
		}
	}
	for _, p := range processes {
		if strings.Contains(p.Name, focusName) {
			return types.NewInt64(p.Pid), fmt.Sprintf("Focus process %q resolved to pid %d by substring match against %q", focusName, p.Pid, p.Name)
		}
	}
	return types.Int64{}, fmt.Sprintf("Focus process %q not found in process inventory; per-process filtering disabled", focusName)
}
