package workcat

import (
	"strings"

	"github.com/tracetriage/tracetriage/internal/slice"
	"github.com/tracetriage/tracetriage/internal/types"
)

type Category string

// Declaration order is the tie-break order for the dominant category.
const (
	App       Category = "app"
	Framework Category = "framework"
	System    Category = "system"
	Unknown   Category = "unknown"
)

var categoryOrder = []Category{App, Framework, System, Unknown}

type rule struct {
	category Category

	// requiresFocus restricts the rule to slices owned by the focus
	// process.
	requiresFocus bool
	tokens        []string
}

var (
	// appMarkerTokens are the explicit section markers apps insert via
	// Trace.beginSection; anything else on the focus process is framework
	// or unknown territory.
	appMarkerTokens = []string{
		"UI#",
		"App#",
	}

	// frameworkTokens are substrings of platform UI and rendering
	// internals.
	frameworkTokens = []string{
		"Choreographer",
		"doFrame",
		"DrawFrame",
		"RenderThread",
		"traversal",
		"measure",
		"layout",
		"draw",
		"inflate",
		"animator",
		"eglSwapBuffers",
		"dequeueBuffer",
	}

	// systemTokens are substrings of kernel and system-service work.
	systemTokens = []string{
		"binder",
		"Binder",
		"kworker",
		"irq",
		"kswapd",
		"mmcqd",
		"kernel",
		"CPU",
	}

	// rules are evaluated top to bottom; the first match wins.
	rules = []rule{
		{category: App, requiresFocus: true, tokens: appMarkerTokens},
		{category: Framework, requiresFocus: true, tokens: frameworkTokens},
		{category: System, tokens: systemTokens},
	}
)

// Classify assigns a slice to exactly one category. It is a pure function
// of the slice and the focus pid. A slice owned by another process is
// system work before any token rule is consulted; without a resolved focus
// the app and framework rules can never match.
func Classify(s slice.Slice, focusPid types.Int64) Category {
	onFocus := focusPid.Valid && s.Pid == focusPid.Value
	if focusPid.Valid && !onFocus {
		return System
	}
	for _, r := range rules {
		if r.requiresFocus && !onFocus {
			continue
		}
		if matchAny(s.Name, r.tokens) {
			return r.category
		}
	}
	return Unknown
}

func matchAny(name string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}

// Breakdown is the total attributed time per category, in milliseconds.
type Breakdown struct {
	AppMs       float64 `json:"app"`
	FrameworkMs float64 `json:"framework"`
	SystemMs    float64 `json:"system"`
	UnknownMs   float64 `json:"unknown"`
}

func (b *Breakdown) add(c Category, ms float64) {
	switch c {
	case App:
		b.AppMs += ms
	case Framework:
		b.FrameworkMs += ms
	case System:
		b.SystemMs += ms
	default:
		b.UnknownMs += ms
	}
}

func (b Breakdown) ms(c Category) float64 {
	switch c {
	case App:
		return b.AppMs
	case Framework:
		return b.FrameworkMs
	case System:
		return b.SystemMs
	default:
		return b.UnknownMs
	}
}

// TotalMs is the sum over all four categories; it equals the total duration
// of the attributed slices by construction.
func (b Breakdown) TotalMs() float64 {
	return b.AppMs + b.FrameworkMs + b.SystemMs + b.UnknownMs
}

// Aggregate classifies every slice and sums durations per category.
func Aggregate(slices []slice.Slice, focusPid types.Int64) Breakdown {
	var b Breakdown
	for _, s := range slices {
		b.add(Classify(s, focusPid), s.DurMs())
	}
	return b
}

// Dominant is the category with the greatest attributed time, ties broken
// by declaration order. With nothing attributed there is no dominant
// category.
func (b Breakdown) Dominant() types.String {
	if b.TotalMs() == 0 {
		return types.String{}
	}
	best := categoryOrder[0]
	for _, c := range categoryOrder[1:] {
		if b.ms(c) > b.ms(best) {
			best = c
		}
	}
	return types.NewString(string(best))
}

// MainThreadBlockedBy is the category of the single longest attributed
// slice on the resolved main thread, or unavailable when the main thread
// was not resolved or carries no attributed slices. Equal durations resolve
// to the earliest slice.
func MainThreadBlockedBy(slices []slice.Slice, mainTid, mainPid int64, mainFound bool, focusPid types.Int64) types.String {
	if !mainFound {
		return types.String{}
	}
	var longest *slice.Slice
	for i := range slices {
		s := &slices[i]
		if s.Tid != mainTid || s.Pid != mainPid {
			continue
		}
		if longest == nil ||
			s.DurNs > longest.DurNs ||
			(s.DurNs == longest.DurNs && s.TsNs < longest.TsNs) {
			longest = s
		}
	}
	if longest == nil {
		return types.String{}
	}
	return types.NewString(string(Classify(*longest, focusPid)))
}
