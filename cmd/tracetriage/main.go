package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"

	"github.com/tracetriage/tracetriage/internal/analyzer"
	"github.com/tracetriage/tracetriage/internal/errorutil"
	"github.com/tracetriage/tracetriage/internal/explain"
	"github.com/tracetriage/tracetriage/internal/logutil"
	"github.com/tracetriage/tracetriage/internal/tputil"
)

var release string

func main() {
	logutil.ConfigureLogger()

	var config ServiceConfig
	if err := cleanenv.ReadEnv(&config); err != nil {
		log.Fatal().Err(err).Msg("error reading environment configuration")
	}

	var (
		tracePath     = flag.String("trace", "", "path to a trace exported to a SQLite database")
		engineURL     = flag.String("engine", config.EngineURL, "URL of a running trace processor instance (overrides -trace)")
		outPath       = flag.String("out", "analysis.json", "output report path, - for stdout")
		explainReport = flag.Bool("explain", false, "narrate the analysis with the configured model")
		explainOut    = flag.String("explain-out", "explanation.md", "explanation markdown path, - for stdout")
		focusProcess  = flag.String("focus", config.FocusProcess, "focus process name for per-app attribution")
		longTaskMs    = flag.Float64("long-task-ms", config.LongTaskThresholdMs, "long task threshold in milliseconds")
		topN          = flag.Int("top-n", config.TopN, "number of top entries per ranking")
		schemaVersion = flag.String("schema-version", config.SchemaVersion, "report schema version")
	)
	flag.Parse()

	if config.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.SentryDSN,
			Environment: config.Environment,
			Release:     release,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("can't initialize sentry")
		}
		defer sentry.Flush(5 * time.Second)
	}

	logger := log.With().Str("run_id", uuid.New().String()).Logger()

	if *tracePath == "" && *engineURL == "" {
		fmt.Fprintln(os.Stderr, "usage: tracetriage -trace <exported trace db> | -engine <trace processor url> [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()
	q, closeEngine, err := openEngine(ctx, *engineURL, *tracePath)
	if err != nil {
		sentry.CaptureException(err)
		if errors.Is(err, errorutil.ErrTraceOpen) {
			logger.Fatal().Err(err).Str("trace", *tracePath).Msg("trace cannot be opened")
		}
		logger.Fatal().Err(err).Msg("error setting up the trace engine")
	}
	defer closeEngine()

	reportPath := *tracePath
	if reportPath == "" {
		reportPath = *engineURL
	}

	logger.Info().
		Str("trace", reportPath).
		Float64("long_task_ms", *longTaskMs).
		Int("top_n", *topN).
		Msg("analyzing trace")

	result := analyzer.Run(ctx, q, analyzer.Options{
		TracePath:           reportPath,
		FocusProcess:        *focusProcess,
		LongTaskThresholdMs: *longTaskMs,
		TopN:                *topN,
		SchemaVersion:       *schemaVersion,
	})

	body, err := gojson.MarshalIndent(result, "", "  ")
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("error marshaling the report")
	}
	body = append(body, '\n')

	if *outPath == "-" {
		if _, err := os.Stdout.Write(body); err != nil {
			logger.Fatal().Err(err).Msg("error writing the report")
		}
	} else {
		if err := os.WriteFile(*outPath, body, 0644); err != nil {
			sentry.CaptureException(err)
			logger.Fatal().Err(err).Str("out", *outPath).Msg("error writing the report")
		}
		logger.Info().Str("out", *outPath).Msg("analysis complete")
	}

	if !*explainReport {
		return
	}

	client, err := explain.NewClient(config.OpenAIAPIKey, config.OpenAIModel, config.OpenAIBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("can't set up the explanation client")
	}
	_, markdown, err := explain.Run(ctx, client, result)
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("error explaining the analysis")
	}
	if *explainOut == "-" {
		if _, err := os.Stdout.WriteString(markdown); err != nil {
			logger.Fatal().Err(err).Msg("error writing the explanation")
		}
		return
	}
	if err := os.WriteFile(*explainOut, []byte(markdown), 0644); err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Str("out", *explainOut).Msg("error writing the explanation")
	}
	logger.Info().Str("out", *explainOut).Msg("explanation complete")
}

// openEngine picks the trace source: a running trace processor when an
// engine URL is set, otherwise a local SQLite export.
func openEngine(ctx context.Context, engineURL, tracePath string) (tputil.Querier, func(), error) {
	if engineURL != "" {
		client, err := tputil.NewClient(engineURL)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
	db, err := tputil.OpenDB(tracePath)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("error closing the trace database")
		}
	}, nil
}
