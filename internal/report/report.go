package report

import (
	"github.com/tracetriage/tracetriage/internal/framestats"
	"github.com/tracetriage/tracetriage/internal/longtask"
	"github.com/tracetriage/tracetriage/internal/metadata"
	"github.com/tracetriage/tracetriage/internal/threads"
	"github.com/tracetriage/tracetriage/internal/types"
	"github.com/tracetriage/tracetriage/internal/workcat"
)

// DefaultSchemaVersion identifies the report layout.
const DefaultSchemaVersion = "A2"

type (
	// Report is the analysis output. It is assembled once, after every
	// component has run, and never mutated. Every field is always present;
	// unavailable values serialize as null.
	Report struct {
		SchemaVersion   string             `json:"schemaVersion"`
		FocusProcess    types.String       `json:"focusProcess"`
		FocusPid        types.Int64        `json:"focusPid"`
		TracePath       string             `json:"tracePath"`
		TraceDurationMs types.Float64      `json:"traceDurationMs"`
		Processes       []metadata.Process `json:"processes"`
		StartupMs       types.Float64      `json:"startupMs"`
		Threads         Threads            `json:"threads"`
		UIThreadTasks   longtask.Result    `json:"uiThreadLongTasks"`
		Features        Features           `json:"features"`
		Summary         Summary            `json:"summary"`
		Assumptions     map[string]string  `json:"assumptions"`
	}

	Threads struct {
		MainThread          *threads.Thread  `json:"mainThread"`
		TopThreadsBySliceMs []threads.Thread `json:"topThreadsBySliceMs"`
	}

	Features struct {
		AppSections          AppSections      `json:"appSections"`
		LongSlicesAttributed int              `json:"longSlicesAttributed"`
		CPUFeatures          CPUFeatures      `json:"cpuFeatures"`
		FrameFeatures        framestats.Stats `json:"frameFeatures"`
	}

	AppSections struct {
		Count      types.Int64       `json:"count"`
		TopByDurMs []workcat.Section `json:"topByDurMs"`
	}

	CPUFeatures struct {
		WorkBreakdownMs workcat.Breakdown `json:"workBreakdownMs"`
	}

	Summary struct {
		MainThreadFound      bool         `json:"mainThreadFound"`
		TopAppSections       []string     `json:"topAppSections"`
		TopLongSliceName     types.String `json:"topLongSliceName"`
		DominantWorkCategory types.String `json:"dominantWorkCategory"`
		MainThreadBlockedBy  types.String `json:"mainThreadBlockedBy"`
	}
)

// Inputs carries each component's output into New. Pure data; the
// assembler adds no analysis of its own.
type Inputs struct {
	SchemaVersion   string
	FocusProcess    string
	FocusPid        types.Int64
	TracePath       string
	TraceDurationMs types.Float64
	Processes       []metadata.Process
	StartupMs       types.Float64

	MainThread *threads.Thread
	TopThreads []threads.Thread

	LongTasks            longtask.Result
	LongSlicesAttributed int

	AppSectionCount types.Int64
	AppSections     []workcat.Section

	WorkBreakdown workcat.Breakdown
	Dominant      types.String
	BlockedBy     types.String

	FrameStats framestats.Stats

	Assumptions map[string]string
}

// New composes the final report. Empty collections stay empty, never null.
func New(in Inputs) Report {
	if in.SchemaVersion == "" {
		in.SchemaVersion = DefaultSchemaVersion
	}
	if in.Processes == nil {
		in.Processes = []metadata.Process{}
	}
	if in.TopThreads == nil {
		in.TopThreads = []threads.Thread{}
	}
	if in.LongTasks.Top == nil {
		in.LongTasks.Top = []longtask.Task{}
	}
	if in.AppSections == nil {
		in.AppSections = []workcat.Section{}
	}
	if in.Assumptions == nil {
		in.Assumptions = map[string]string{}
	}

	focusProcess := types.String{}
	if in.FocusProcess != "" {
		focusProcess = types.NewString(in.FocusProcess)
	}

	topLongSliceName := types.String{}
	if len(in.LongTasks.Top) > 0 {
		topLongSliceName = types.NewString(in.LongTasks.Top[0].Name)
	}

	topAppSections := make([]string, 0, len(in.AppSections))
	for _, s := range in.AppSections {
		topAppSections = append(topAppSections, s.Name)
	}

	return Report{
		SchemaVersion:   in.SchemaVersion,
		FocusProcess:    focusProcess,
		FocusPid:        in.FocusPid,
		TracePath:       in.TracePath,
		TraceDurationMs: in.TraceDurationMs,
		Processes:       in.Processes,
		StartupMs:       in.StartupMs,
		Threads: Threads{
			MainThread:          in.MainThread,
			TopThreadsBySliceMs: in.TopThreads,
		},
		UIThreadTasks: in.LongTasks,
		Features: Features{
			AppSections: AppSections{
				Count:      in.AppSectionCount,
				TopByDurMs: in.AppSections,
			},
			LongSlicesAttributed: in.LongSlicesAttributed,
			CPUFeatures:          CPUFeatures{WorkBreakdownMs: in.WorkBreakdown},
			FrameFeatures:        in.FrameStats,
		},
		Summary: Summary{
			MainThreadFound:      in.MainThread != nil,
			TopAppSections:       topAppSections,
			TopLongSliceName:     topLongSliceName,
			DominantWorkCategory: in.Dominant,
			MainThreadBlockedBy:  in.BlockedBy,
		},
		Assumptions: in.Assumptions,
	}
}
