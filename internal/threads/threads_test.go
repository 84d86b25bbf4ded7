package threads

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tracetriage/tracetriage/internal/testutil"
	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

func TestIsMainThreadName(t *testing.T) {
	tests := []struct {
		name        string
		threadName  string
		processName string
		want        bool
	}{
		{"sentinel", "main", "com.example.app", true},
		{"process name", "com.example.app", "com.example.app", true},
		{"truncated comm", "xample.heavyapp", "com.example.heavyapp", true},
		{"worker", "RenderThread", "com.example.app", false},
		{"no process name", "whatever", "", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := isMainThreadName(test.threadName, test.processName); got != test.want {
				t.Fatalf("expected %t but was %t", test.want, got)
			}
		})
	}
}

func TestMainThreadByName(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, statement string) ([]tputil.Row, error) {
		switch {
		case strings.HasPrefix(statement, "SELECT tid, name FROM thread"):
			return []tputil.Row{
				{"tid": int64(1250), "name": "RenderThread"},
				{"tid": int64(1234), "name": "com.example.app"},
			}, nil
		case strings.Contains(statement, "SUM(dur)"):
			return []tputil.Row{{"total_dur": float64(42_000_000)}}, nil
		}
		return nil, errors.New("unexpected query: " + statement)
	})

	got, assumption := MainThread(context.Background(), q, types.NewInt64(1234), "com.example.app")
	want := &Thread{Tid: 1234, Pid: 1234, Name: "com.example.app", TotalSliceMs: 42}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if !strings.Contains(assumption, "conventional name") {
		t.Fatalf("unexpected assumption %q", assumption)
	}
}

func TestMainThreadFallsBackToBusiest(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, statement string) ([]tputil.Row, error) {
		switch {
		case strings.HasPrefix(statement, "SELECT tid, name FROM thread"):
			return []tputil.Row{
				{"tid": int64(10), "name": "Worker-1"},
				{"tid": int64(11), "name": "Worker-2"},
			}, nil
		case strings.Contains(statement, "GROUP BY tid, pid"):
			return []tputil.Row{
				{"tid": int64(11), "pid": int64(99), "thread_name": "Worker-2", "total_dur": float64(5_000_000)},
				{"tid": int64(10), "pid": int64(99), "thread_name": "Worker-1", "total_dur": float64(90_000_000)},
			}, nil
		}
		return nil, errors.New("unexpected query: " + statement)
	})

	got, assumption := MainThread(context.Background(), q, types.NewInt64(99), "com.example.app")
	want := &Thread{Tid: 10, Pid: 99, Name: "Worker-1", TotalSliceMs: 90}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if !strings.Contains(assumption, "busiest") {
		t.Fatalf("unexpected assumption %q", assumption)
	}
}

func TestMainThreadNoFocus(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, _ string) ([]tputil.Row, error) {
		t.Fatal("expected no query without a focus pid")
		return nil, nil
	})
	got, _ := MainThread(context.Background(), q, types.Int64{}, "")
	if got != nil {
		t.Fatalf("expected nil thread but was %+v", got)
	}
}

func TestTopBySliceTime(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, _ string) ([]tputil.Row, error) {
		return []tputil.Row{
			{"tid": int64(30), "pid": int64(3), "thread_name": "c", "total_dur": float64(10_000_000)},
			{"tid": int64(20), "pid": int64(2), "thread_name": "b", "total_dur": float64(50_000_000)},
			{"tid": int64(10), "pid": int64(1), "thread_name": "a", "total_dur": float64(50_000_000)},
			{"tid": int64(40), "pid": int64(4), "thread_name": "d", "total_dur": float64(1_000_000)},
		}, nil
	})

	got, _ := TopBySliceTime(context.Background(), q, 3)
	// Equal totals are ordered by ascending tid.
	want := []Thread{
		{Tid: 10, Pid: 1, Name: "a", TotalSliceMs: 50},
		{Tid: 20, Pid: 2, Name: "b", TotalSliceMs: 50},
		{Tid: 30, Pid: 3, Name: "c", TotalSliceMs: 10},
	}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestTopBySliceTimeMissingTable(t *testing.T) {
	q := tputil.QuerierFunc(func(_ context.Context, _ string) ([]tputil.Row, error) {
		return nil, errors.New("no such table: slice")
	})
	got, assumption := TopBySliceTime(context.Background(), q, 5)
	if diff := testutil.Diff(got, []Thread{}); diff != "" {
		t.Fatalf("expected empty ranking, got\n%s", diff)
	}
	if !strings.Contains(assumption, "unavailable") {
		t.Fatalf("unexpected assumption %q", assumption)
	}
}
