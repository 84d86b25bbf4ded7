package framestats

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tracetriage/tracetriage/internal/testutil"
	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

func frameEngine(durationsMs []float64) tputil.Querier {
	return tputil.QuerierFunc(func(_ context.Context, statement string) ([]tputil.Row, error) {
		if !strings.Contains(statement, "doFrame") {
			return nil, errors.New("unexpected query: " + statement)
		}
		rows := make([]tputil.Row, 0, len(durationsMs))
		for i, d := range durationsMs {
			rows = append(rows, tputil.Row{
				"name": "Choreographer#doFrame", "ts": float64(i) * tputil.NsPerMs, "dur": d * tputil.NsPerMs,
				"tid": int64(1), "pid": int64(1), "thread_name": "main", "process_name": "app",
			})
		}
		return rows, nil
	})
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		durationsMs []float64
		want        Stats
	}{
		{
			name:        "janky frame over budget",
			durationsMs: []float64{10, 12, 30},
			want: Stats{
				TotalFrames: types.NewInt64(3),
				JankyFrames: types.NewInt64(1),
				P95FrameMs:  types.NewFloat64(30),
			},
		},
		{
			name:        "single frame p95 is its duration",
			durationsMs: []float64{7},
			want: Stats{
				TotalFrames: types.NewInt64(1),
				JankyFrames: types.NewInt64(0),
				P95FrameMs:  types.NewFloat64(7),
			},
		},
		{
			name:        "no frames means unavailable, not zero",
			durationsMs: nil,
			want:        Stats{},
		},
		{
			name:        "frame exactly on budget is not janky",
			durationsMs: []float64{16, 16},
			want: Stats{
				TotalFrames: types.NewInt64(2),
				JankyFrames: types.NewInt64(0),
				P95FrameMs:  types.NewFloat64(16),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, _ := Analyze(context.Background(), frameEngine(test.durationsMs))
			if diff := testutil.Diff(got, test.want); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestAnalyzeMissingTable(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, _ string) ([]tputil.Row, error) {
		return nil, errors.New("no such table: slice")
	})
	got, assumption := Analyze(context.Background(), q)
	if diff := testutil.Diff(got, Stats{}); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if !strings.Contains(assumption, "unavailable") {
		t.Fatalf("unexpected assumption %q", assumption)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	// 20 frames of 1..20ms: index ceil(0.95*20)-1 = 18 into the ascending
	// list, so p95 is 19.
	values := make([]float64, 0, 20)
	for i := 20; i >= 1; i-- {
		values = append(values, float64(i))
	}
	if got := percentile(values, 0.95); got != 19 {
		t.Fatalf("expected 19 but was %g", got)
	}
}
