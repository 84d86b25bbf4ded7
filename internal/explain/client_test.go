package explain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/tracetriage/tracetriage/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient("test-key", "", "")
	if err != nil {
		t.Fatal(err)
	}
	client.url = server.URL
	client.backoff = time.Millisecond
	return client
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	var cr chatResponse
	cr.Choices = append(cr.Choices, struct {
		Message chatMessage `json:"message"`
	}{Message: chatMessage{Role: "assistant", Content: content}})
	if err := gojson.NewEncoder(w).Encode(cr); err != nil {
		t.Error(err)
	}
}

func TestExplainRetriesRateLimit(t *testing.T) {
	want := validOutput()
	answer, err := gojson.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}

	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if requests == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		// Fenced answer, which the client must unwrap.
		chatReply(t, w, "```json\n"+string(answer)+"\n```")
	})

	got, err := client.Explain(context.Background(), Input{})
	if err != nil {
		t.Fatal(err)
	}
	if requests != 2 {
		t.Fatalf("expected one retry, server saw %d requests", requests)
	}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestExplainNonJSONAnswer(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		chatReply(t, w, "The trace looks slow because of reasons.")
	})

	_, err := client.Explain(context.Background(), Input{})
	if err == nil || !strings.Contains(err.Error(), "non-JSON") {
		t.Fatalf("expected a non-JSON content error, was %v", err)
	}
	if requests != 1 {
		t.Fatalf("a broken answer must not be retried, server saw %d requests", requests)
	}
}

func TestExplainGivesUpAfterRetries(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Explain(context.Background(), Input{})
	if err == nil || !strings.Contains(err.Error(), "after 4 attempts") {
		t.Fatalf("expected exhausted retries, was %v", err)
	}
	if requests != maxAttempts {
		t.Fatalf("expected %d attempts, server saw %d", maxAttempts, requests)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey but was %v", err)
	}
}

func TestNewClientBaseURL(t *testing.T) {
	client, err := NewClient("test-key", "", "http://127.0.0.1:9999/")
	if err != nil {
		t.Fatal(err)
	}
	if client.url != "http://127.0.0.1:9999/v1/chat/completions" {
		t.Fatalf("unexpected url %q", client.url)
	}
	if client.model != defaultModel {
		t.Fatalf("unexpected model %q", client.model)
	}
}
