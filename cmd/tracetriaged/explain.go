package main

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	gojson "github.com/goccy/go-json"

	"github.com/tracetriage/tracetriage/internal/explain"
)

type GetExplanationResponse struct {
	Explanation explain.Output `json:"explanation"`
	Markdown    string         `json:"markdown"`
}

// getExplanation runs the analysis pipeline and asks the configured model
// to narrate the result.
func (env *environment) getExplanation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	client, err := explain.NewClient(env.config.OpenAIAPIKey, env.config.OpenAIModel, env.config.OpenAIBaseURL)
	if err != nil {
		if errors.Is(err, explain.ErrNoAPIKey) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	rep, ok := env.analyze(w, r)
	if !ok {
		return
	}

	s := sentry.StartSpan(ctx, "explain.run")
	s.Description = "Explain the analysis"
	output, markdown, err := explain.Run(ctx, client, rep)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = gojson.NewEncoder(w).Encode(GetExplanationResponse{
		Explanation: output,
		Markdown:    markdown,
	})
	if err != nil {
		hub.CaptureException(err)
	}
}
