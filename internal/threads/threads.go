package threads

import (
	"context"
	"fmt"
	"sort"

	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

// mainThreadSentinel is the conventional name Android gives the UI thread
// when it is not named after the process itself.
const mainThreadSentinel = "main"

// commLen is the kernel's thread name limit. Android process names longer
// than this show up truncated in the thread table.
const commLen = 15

type Thread struct {
	Tid          int64   `json:"tid"`
	Pid          int64   `json:"pid"`
	Name         string  `json:"name"`
	TotalSliceMs float64 `json:"totalSliceMs"`
}

// MainThread resolves the focus process's main thread, best effort. It first
// looks for a thread named after the process (or the "main" sentinel), then
// falls back to the thread with the greatest aggregate slice time within the
// process. An unknown focus pid resolves to not-found, never an error.
func MainThread(ctx context.Context, q tputil.Querier, focusPid types.Int64, focusProcessName string) (*Thread, string) {
	if !focusPid.Valid {
		return nil, "Main thread not resolved: no focus process"
	}

	qb := tputil.QueryBuilder{
		Table:           "thread",
		SelectCols:      []string{"tid", "name"},
		WhereConditions: []string{fmt.Sprintf("pid = %d", focusPid.Value)},
	}
	statement, err := qb.Query()
	if err != nil {
		return nil, fmt.Sprintf("Main thread not resolved: %v", err)
	}
	rows, err := q.RunQuery(ctx, statement)
	if err == nil {
		for _, row := range rows {
			tid, okTid := row.Int64("tid")
			name, okName := row.String("name")
			if !okTid || !okName {
				continue
			}
			if isMainThreadName(name, focusProcessName) {
				t := Thread{
					Tid:          tid,
					Pid:          focusPid.Value,
					Name:         name,
					TotalSliceMs: threadSliceMs(ctx, q, focusPid.Value, tid),
				}
				return &t, fmt.Sprintf("Main thread tid %d matched by conventional name %q", tid, name)
			}
		}
	}

	// No name match; fall back to the busiest thread in the process.
	busiest := busiestThreads(ctx, q, []string{fmt.Sprintf("pid = %d", focusPid.Value)})
	if len(busiest) == 0 {
		return nil, "Main thread not resolved: no named thread matched and process has no slices"
	}
	t := busiest[0]
	return &t, fmt.Sprintf("Main thread guessed as busiest thread tid %d (%q, %.2fms of slices); no conventional name matched", t.Tid, t.Name, t.TotalSliceMs)
}

// TopBySliceTime ranks threads trace-wide by their summed slice duration,
// descending, ties broken by ascending tid. Missing slice data yields an
// empty ranking.
func TopBySliceTime(ctx context.Context, q tputil.Querier, n int) ([]Thread, string) {
	threads := busiestThreads(ctx, q, nil)
	if len(threads) == 0 {
		return []Thread{}, "Thread ranking unavailable: no slices in trace"
	}
	if len(threads) > n {
		threads = threads[:n]
	}
	return threads, fmt.Sprintf("Top %d threads ranked by total slice duration; ties broken by ascending tid", n)
}

func isMainThreadName(threadName, processName string) bool {
	if threadName == mainThreadSentinel {
		return true
	}
	if processName == "" {
		return false
	}
	if threadName == processName {
		return true
	}
	if len(processName) > commLen && threadName == processName[len(processName)-commLen:] {
		return true
	}
	return false
}

func threadSliceMs(ctx context.Context, q tputil.Querier, pid, tid int64) float64 {
	qb := tputil.QueryBuilder{
		Table:      "slice",
		SelectCols: []string{"SUM(dur) AS total_dur"},
		WhereConditions: []string{
			fmt.Sprintf("pid = %d", pid),
			fmt.Sprintf("tid = %d", tid),
		},
	}
	statement, err := qb.Query()
	if err != nil {
		return 0
	}
	rows, err := q.RunQuery(ctx, statement)
	if err != nil || len(rows) == 0 {
		return 0
	}
	total, _ := rows[0].Float64("total_dur")
	return total / tputil.NsPerMs
}

func busiestThreads(ctx context.Context, q tputil.Querier, conditions []string) []Thread {
	qb := tputil.QueryBuilder{
		Table:           "slice",
		SelectCols:      []string{"tid", "pid", "thread_name", "SUM(dur) AS total_dur"},
		WhereConditions: conditions,
		GroupBy:         "tid, pid",
	}
	statement, err := qb.Query()
	if err != nil {
		return nil
	}
	rows, err := q.RunQuery(ctx, statement)
	if err != nil {
		return nil
	}

	threads := make([]Thread, 0, len(rows))
	for _, row := range rows {
		tid, okTid := row.Int64("tid")
		total, okTotal := row.Float64("total_dur")
		if !okTid || !okTotal {
			continue
		}
		pid, _ := row.Int64("pid")
		name, _ := row.String("thread_name")
		threads = append(threads, Thread{
			Tid:          tid,
			Pid:          pid,
			Name:         name,
			TotalSliceMs: total / tputil.NsPerMs,
		})
	}
	sort.SliceStable(threads, func(i, j int) bool {
		if threads[i].TotalSliceMs != threads[j].TotalSliceMs {
			return threads[i].TotalSliceMs > threads[j].TotalSliceMs
		}
		return threads[i].Tid < threads[j].Tid
	})
	return threads
}
