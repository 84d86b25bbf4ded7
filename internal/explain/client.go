package explain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/gojek/heimdall/v7/httpclient"
)

const (
	defaultModel   = "gpt-4o"
	apiURL         = "https://api.openai.com/v1/chat/completions"
	requestTimeout = 30 * time.Second
	maxAttempts    = 4
)

// ErrNoAPIKey means no model credentials were configured; the explanation
// feature is simply off in that case, the analysis itself is unaffected.
var ErrNoAPIKey = errors.New("OPENAI_API_KEY is not set")

const systemPrompt = "You are a performance narrator. " +
	"Use only the provided JSON input. " +
	"Every claim must include evidence paths. " +
	"If evidence is missing, say 'insufficient evidence' and list missing fields. " +
	"No fixes or optimizations; only next inspection steps. " +
	"Keep output concise and technical."

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	http   *httpclient.Client
	url    string
	model  string
	apiKey string

	// backoff is the base retry delay; attempt n waits backoff * 2^n.
	backoff time.Duration
}

// NewClient builds a client for the given credentials. An empty model
// picks the default; an empty baseURL points at the OpenAI API.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = defaultModel
	}
	url := apiURL
	if baseURL != "" {
		url = strings.TrimSuffix(baseURL, "/") + "/v1/chat/completions"
	}
	return &Client{
		http:    httpclient.NewClient(httpclient.WithHTTPTimeout(requestTimeout)),
		url:     url,
		model:   model,
		apiKey:  apiKey,
		backoff: time.Second,
	}, nil
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

// Explain sends the shaped input and decodes the model's JSON answer.
// Rate limiting and transient failures are retried with backoff, honoring
// Retry-After on 429s. A syntactically broken answer is not retried; the
// model already spent its attempt.
func (c *Client) Explain(_ context.Context, in Input) (Output, error) {
	document, err := gojson.MarshalIndent(in, "", "  ")
	if err != nil {
		return Output{}, err
	}
	userPrompt := "Return JSON with keys: title, high_level, key_findings, suspects, " +
		"next_steps, limitations. Each list item must include text and evidence " +
		"(list of JSON paths). Use only the provided JSON input:\n" + string(document)

	body, err := gojson.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return Output{}, err
	}

	headers := make(http.Header)
	headers.Set("content-type", "application/json")
	headers.Set("authorization", "Bearer "+c.apiKey)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.http.Post(c.url, bytes.NewReader(body), headers)
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelay(attempt, ""))
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			lastErr = errors.New("model API rate limited the request")
			time.Sleep(c.retryDelay(attempt, retryAfter))
			continue
		}
		if resp.StatusCode >= 400 {
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("model API returned status %d: %s", resp.StatusCode, raw)
			time.Sleep(c.retryDelay(attempt, ""))
			continue
		}

		var cr chatResponse
		err = gojson.NewDecoder(resp.Body).Decode(&cr)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelay(attempt, ""))
			continue
		}
		if len(cr.Choices) == 0 {
			lastErr = errors.New("model response carries no choices")
			time.Sleep(c.retryDelay(attempt, ""))
			continue
		}

		content := stripFences(cr.Choices[0].Message.Content)
		var out Output
		if err := gojson.Unmarshal([]byte(content), &out); err != nil {
			return Output{}, fmt.Errorf("model returned non-JSON content: %v", err)
		}
		return out, nil
	}
	return Output{}, fmt.Errorf("explanation request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) retryDelay(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, 64); err == nil && seconds >= 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return c.backoff * (1 << attempt)
}

// stripFences unwraps a ```json fenced answer; models ignore the plain-JSON
// instruction often enough that this is worth tolerating.
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimLeft(s, "`")
	s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
	s = strings.TrimRight(strings.TrimSpace(s), "`")
	return strings.TrimSpace(s)
}
