package main

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tracetriage/tracetriage/internal/analyzer"
	"github.com/tracetriage/tracetriage/internal/errorutil"
	"github.com/tracetriage/tracetriage/internal/httputil"
	"github.com/tracetriage/tracetriage/internal/report"
	"github.com/tracetriage/tracetriage/internal/tputil"
)

// analysisOptions reads the shared analysis query parameters. A false
// return means a 400 was already written.
func (env *environment) analysisOptions(w http.ResponseWriter, r *http.Request) (analyzer.Options, zerolog.Logger, bool) {
	p, logger, ok := httputil.GetRequiredQueryParameters(w, r, "trace")
	if !ok {
		return analyzer.Options{}, logger, false
	}

	threshold, ok := httputil.GetPositiveFloatParameter(w, r, "threshold_ms", env.config.LongTaskThresholdMs)
	if !ok {
		return analyzer.Options{}, logger, false
	}
	topN, ok := httputil.GetPositiveIntParameter(w, r, "top_n", env.config.TopN)
	if !ok {
		return analyzer.Options{}, logger, false
	}

	return analyzer.Options{
		TracePath:           p["trace"],
		FocusProcess:        r.URL.Query().Get("focus"),
		LongTaskThresholdMs: threshold,
		TopN:                topN,
		SchemaVersion:       env.config.SchemaVersion,
	}, logger, true
}

// analyze opens the trace named by the request and runs the pipeline over
// it. A false return means an error response was already written.
func (env *environment) analyze(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	opt, logger, ok := env.analysisOptions(w, r)
	if !ok {
		return report.Report{}, false
	}
	hub.Scope().SetTag("trace", opt.TracePath)

	s := sentry.StartSpan(ctx, "trace.open")
	s.Description = "Open the trace database"
	db, err := tputil.OpenDB(opt.TracePath)
	s.Finish()
	if err != nil {
		if errors.Is(err, errorutil.ErrTraceOpen) {
			logger.Err(err).Msg("trace can't be opened")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return report.Report{}, false
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return report.Report{}, false
	}
	defer db.Close()

	s = sentry.StartSpan(ctx, "trace.analyze")
	s.Description = "Analyze the trace"
	rep := analyzer.Run(ctx, db, opt)
	s.Finish()

	return rep, true
}

func (env *environment) getAnalysis(w http.ResponseWriter, r *http.Request) {
	rep, ok := env.analyze(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := gojson.NewEncoder(w).Encode(rep); err != nil {
		hub := sentry.GetHubFromContext(r.Context())
		hub.CaptureException(err)
	}
}

func (env *environment) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
