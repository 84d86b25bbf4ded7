package longtask

import (
	"context"
	"fmt"
	"sort"

	"github.com/tracetriage/tracetriage/internal/slice"
	"github.com/tracetriage/tracetriage/internal/tputil"
)

const (
	// DefaultThresholdMs is the default long-task threshold, the common
	// proxy for a user-visible stall.
	DefaultThresholdMs float64 = 50

	// DefaultTopN is the default number of long tasks surfaced.
	DefaultTopN = 5
)

type (
	Task struct {
		Name  string  `json:"name"`
		DurMs float64 `json:"durMs"`
		TsMs  float64 `json:"tsMs"`
	}

	Result struct {
		ThresholdMs float64 `json:"thresholdMs"`
		Count       int     `json:"count"`
		Top         []Task  `json:"top"`
	}
)

// Detect finds slices at or above thresholdMs, ranked by descending
// duration with ties broken by ascending start timestamp. The threshold is
// converted to engine units before the query so the full slice table is
// never loaded. Alongside the truncated ranking it returns every matching
// slice, already sorted, for downstream attribution. A missing slice table
// yields an empty result, not an error.
func Detect(ctx context.Context, q tputil.Querier, thresholdMs float64, topN int) (Result, []slice.Slice, string) {
	if thresholdMs <= 0 {
		thresholdMs = DefaultThresholdMs
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	result := Result{ThresholdMs: thresholdMs, Top: []Task{}}

	thresholdNs := int64(thresholdMs * tputil.NsPerMs)
	matches, err := slice.Fetch(ctx, q, tputil.QueryBuilder{
		WhereConditions: []string{fmt.Sprintf("dur >= %d", thresholdNs)},
	})
	if err != nil {
		return result, nil, fmt.Sprintf("Long task detection degraded: %v", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DurNs != matches[j].DurNs {
			return matches[i].DurNs > matches[j].DurNs
		}
		return matches[i].TsNs < matches[j].TsNs
	})

	result.Count = len(matches)
	for i, s := range matches {
		if i == topN {
			break
		}
		result.Top = append(result.Top, Task{
			Name:  s.Name,
			DurMs: s.DurMs(),
			TsMs:  s.TsMs(),
		})
	}

	return result, matches, fmt.Sprintf("Long tasks detected as slices with dur >= %gms; %d matched", thresholdMs, len(matches))
}
