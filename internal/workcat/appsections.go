package workcat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tracetriage/tracetriage/internal/slice"
	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
)

type Section struct {
	Name  string  `json:"name"`
	DurMs float64 `json:"durMs"`
}

// AppSections finds the focus process's explicit app-marker sections and
// ranks them by total duration, descending, ties broken by name. Without a
// resolved focus no slice can be an app section, so the count is
// unavailable rather than zero.
func AppSections(ctx context.Context, q tputil.Querier, focusPid types.Int64, topN int) (types.Int64, []Section, string) {
	if !focusPid.Valid {
		return types.Int64{}, []Section{}, "App sections unavailable: no focus process resolved"
	}

	conditions := make([]string, 0, len(appMarkerTokens))
	for _, token := range appMarkerTokens {
		conditions = append(conditions, fmt.Sprintf("name LIKE '%%%s%%'", token))
	}
	matches, err := slice.Fetch(ctx, q, tputil.QueryBuilder{
		WhereConditions: []string{
			fmt.Sprintf("pid = %d", focusPid.Value),
			fmt.Sprintf("(%s)", strings.Join(conditions, " OR ")),
		},
	})
	if err != nil {
		return types.Int64{}, []Section{}, fmt.Sprintf("App sections unavailable: %v", err)
	}

	totals := make(map[string]float64, len(matches))
	for _, s := range matches {
		totals[s.Name] += s.DurMs()
	}
	sections := make([]Section, 0, len(totals))
	for name, durMs := range totals {
		sections = append(sections, Section{Name: name, DurMs: durMs})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].DurMs != sections[j].DurMs {
			return sections[i].DurMs > sections[j].DurMs
		}
		return sections[i].Name < sections[j].Name
	})
	if topN > 0 && len(sections) > topN {
		sections = sections[:topN]
	}

	return types.NewInt64(int64(len(matches))), sections,
		fmt.Sprintf("App sections matched by markers %v on pid %d; %d slices found", appMarkerTokens, focusPid.Value, len(matches))
}
