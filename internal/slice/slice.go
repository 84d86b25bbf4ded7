package slice

import (
	"context"

	"github.com/tracetriage/tracetriage/internal/tputil"
)

// Slice is one named interval of work from the trace, denormalized with its
// owning thread and process. Timestamps and durations are engine-native
// nanoseconds; conversions go through tputil.NsPerMs.
type Slice struct {
	Name        string
	TsNs        float64
	DurNs       float64
	Tid         int64
	Pid         int64
	ThreadName  string
	ProcessName string
}

// Columns is the select list shared by every slice query.
var Columns = []string{"name", "ts", "dur", "tid", "pid", "thread_name", "process_name"}

func (s Slice) DurMs() float64 {
	return s.DurNs / tputil.NsPerMs
}

func (s Slice) TsMs() float64 {
	return s.TsNs / tputil.NsPerMs
}

// Fetch runs a slice-table query and decodes the rows. Rows with no name or
// no duration are skipped; the query engine is trusted for everything else.
func Fetch(ctx context.Context, q tputil.Querier, qb tputil.QueryBuilder) ([]Slice, error) {
	qb.Table = "slice"
	qb.SelectCols = Columns
	statement, err := qb.Query()
	if err != nil {
		return nil, err
	}
	rows, err := q.RunQuery(ctx, statement)
	if err != nil {
		return nil, err
	}

	slices := make([]Slice, 0, len(rows))
	for _, row := range rows {
		name, ok := row.String("name")
		if !ok {
			continue
		}
		dur, ok := row.Float64("dur")
		if !ok {
			continue
		}
		ts, _ := row.Float64("ts")
		tid, _ := row.Int64("tid")
		pid, _ := row.Int64("pid")
		threadName, _ := row.String("thread_name")
		processName, _ := row.String("process_name")
		slices = append(slices, Slice{
			Name:        name,
			TsNs:        ts,
			DurNs:       dur,
			Tid:         tid,
			Pid:         pid,
			ThreadName:  threadName,
			ProcessName: processName,
		})
	}
	return slices, nil
}
