package framestats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tracetriage/tracetriage/internal/slice"
	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

// FrameBudgetMs is one display refresh at 60Hz. A frame over budget is
// janky. Unlike the long-task threshold this is not configurable.
const FrameBudgetMs float64 = 16

// Stats summarizes rendering-frame slices. All fields are unavailable, not
// zero, when the trace contains no frame slices: "no rendering work found"
// is not "zero frames rendered".
type Stats struct {
	TotalFrames types.Int64   `json:"totalFrames"`
	JankyFrames types.Int64   `json:"jankyFrames"`
	P95FrameMs  types.Float64 `json:"p95FrameMs"`
}

// Analyze aggregates doFrame slices into totals, jank count and the p95
// frame duration.
func Analyze(ctx context.Context, q tputil.Querier) (Stats, string) {
	frames, err := slice.Fetch(ctx, q, tputil.QueryBuilder{
		WhereConditions: []string{"name LIKE '%doFrame%'"},
	})
	if err != nil {
		return Stats{}, fmt.Sprintf("Frame summary unavailable: %v", err)
	}
	if len(frames) == 0 {
		return Stats{}, "No doFrame slices found in trace"
	}

	durations := make([]float64, 0, len(frames))
	janky := 0
	for _, f := range frames {
		durMs := f.DurMs()
		durations = append(durations, durMs)
		if durMs > FrameBudgetMs {
			janky++
		}
	}

	return Stats{
			TotalFrames: types.NewInt64(int64(len(frames))),
			JankyFrames: types.NewInt64(int64(janky)),
			P95FrameMs:  types.NewFloat64(percentile(durations, 0.95)),
		}, fmt.Sprintf(
			"Frames counted from doFrame slices. Janky defined as dur > %gms (60fps budget). Found %d total frames, %d janky",
			FrameBudgetMs, len(frames), janky,
		)
}

// percentile picks by nearest rank: index ceil(q*n)-1 into the ascending
// sorted values. The caller guarantees values is non-empty.
func percentile(values []float64, q float64) float64 {
	sort.Float64s(values)
	index := int(math.Ceil(float64(len(values))*q)) - 1
	if index < 0 {
		index = 0
	}
	return values[index]
}
