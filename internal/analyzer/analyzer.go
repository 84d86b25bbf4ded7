package analyzer

import (
	"context"

	"github.com/tracetriage/tracetriage/internal/framestats"
	"github.com/tracetriage/tracetriage/internal/longtask"
	"github.com/tracetriage/tracetriage/internal/metadata"
	"github.com/tracetriage/tracetriage/internal/report"
	"github.com/tracetriage/tracetriage/internal/startup"
	"github.com/tracetriage/tracetriage/internal/threads"
	"github.com/tracetriage/tracetriage/internal/tputil"
	"github.com/tracetriage/tracetriage/internal/types"
	"github.com/tracetriage/tracetriage/internal/workcat"
)

type Options struct {
	TracePath           string
	FocusProcess        string
	LongTaskThresholdMs float64
	TopN                int
	SchemaVersion       string
}

// Run drives the whole pipeline: one trace, a fixed set of queries, one
// report. Every component degrades independently; by the time Run is
// entered the trace has been opened, so nothing in here can fail the run.
func Run(ctx context.Context, q tputil.Querier, opt Options) report.Report {
	if opt.LongTaskThresholdMs <= 0 {
		opt.LongTaskThresholdMs = longtask.DefaultThresholdMs
	}
	if opt.TopN <= 0 {
		opt.TopN = longtask.DefaultTopN
	}

	assumptions := make(map[string]string)

	durationMs, note := metadata.TraceDurationMs(ctx, q)
	assumptions["traceDuration"] = note

	processes, note := metadata.Processes(ctx, q, metadata.MaxProcesses)
	assumptions["processes"] = note

	focusPid, note := metadata.ResolveFocus(processes, opt.FocusProcess)
	assumptions["focus"] = note

	mainThread, note := threads.MainThread(ctx, q, focusPid, opt.FocusProcess)
	assumptions["mainThread"] = note

	topThreads, note := threads.TopBySliceTime(ctx, q, opt.TopN)
	assumptions["threads"] = note

	startupMs, note := startup.EstimateMs(ctx, q, focusPid)
	assumptions["startup"] = note

	longTasks, longSlices, note := longtask.Detect(ctx, q, opt.LongTaskThresholdMs, opt.TopN)
	assumptions["longTasks"] = note

	frameStats, note := framestats.Analyze(ctx, q)
	assumptions["frames"] = note

	sectionCount, sections, note := workcat.AppSections(ctx, q, focusPid, opt.TopN)
	assumptions["appSections"] = note

	breakdown := workcat.Aggregate(longSlices, focusPid)
	var mainTid, mainPid int64
	if mainThread != nil {
		mainTid, mainPid = mainThread.Tid, mainThread.Pid
	}
	blockedBy := workcat.MainThreadBlockedBy(longSlices, mainTid, mainPid, mainThread != nil, focusPid)
	assumptions["classification"] = classificationNote(focusPid)

	return report.New(report.Inputs{
		SchemaVersion:        opt.SchemaVersion,
		FocusProcess:         opt.FocusProcess,
		FocusPid:             focusPid,
		TracePath:            opt.TracePath,
		TraceDurationMs:      durationMs,
		Processes:            processes,
		StartupMs:            startupMs,
		MainThread:           mainThread,
		TopThreads:           topThreads,
		LongTasks:            longTasks,
		LongSlicesAttributed: len(longSlices),
		AppSectionCount:      sectionCount,
		AppSections:          sections,
		WorkBreakdown:        breakdown,
		Dominant:             breakdown.Dominant(),
		BlockedBy:            blockedBy,
		FrameStats:           frameStats,
		Assumptions:          assumptions,
	})
}

func classificationNote(focusPid types.Int64) string {
	if focusPid.Valid {
		return "Long slices attributed by ordered token rules; off-focus-process slices are system before framework tokens are consulted"
	}
	return "Long slices attributed without a focus process; app and framework categories cannot match"
}
