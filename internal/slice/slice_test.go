package slice

import (
	"context"
	"strings"
	"testing"

	"github.com/tracetriage/tracetriage/internal/testutil"
	"github.com/tracetriage/tracetriage/internal/tputil"
)

func TestFetch(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, statement string) ([]tputil.Row, error) {
		if !strings.HasPrefix(statement, "SELECT name, ts, dur, tid, pid, thread_name, process_name FROM slice") {
			t.Fatalf("unexpected statement %q", statement)
		}
		return []tputil.Row{
			{
				"name": "UI#login", "ts": float64(1_000_000), "dur": float64(20_000_000),
				"tid": int64(2), "pid": int64(1), "thread_name": "main", "process_name": "com.example.app",
			},
			// NULL name and NULL dur rows are dropped, not zeroed.
			{"name": nil, "ts": float64(0), "dur": float64(1), "tid": int64(2), "pid": int64(1)},
			{"name": "unfinished", "ts": float64(0), "dur": nil, "tid": int64(2), "pid": int64(1)},
		}, nil
	})

	slices, err := Fetch(context.Background(), q, tputil.QueryBuilder{})
	if err != nil {
		t.Fatal(err)
	}
	want := []Slice{
		{
			Name: "UI#login", TsNs: 1_000_000, DurNs: 20_000_000,
			Tid: 2, Pid: 1, ThreadName: "main", ProcessName: "com.example.app",
		},
	}
	if diff := testutil.Diff(slices, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if slices[0].DurMs() != 20 || slices[0].TsMs() != 1 {
		t.Fatalf("unexpected conversions: %g %g", slices[0].DurMs(), slices[0].TsMs())
	}
}
