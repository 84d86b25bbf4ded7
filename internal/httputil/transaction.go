package httputil

import (
	"strconv"

	"github.com/getsentry/sentry-go"
)

// HTTPStatusCodeTag is the name of the HTTP status code tag.
const HTTPStatusCodeTag = "http.response.status_code"

// SetHTTPStatusCodeTag tags the transaction with the response status code
// when the SDK hands us the response in the event hint.
func SetHTTPStatusCodeTag(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint.Response == nil {
		return e
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	if _, exists := e.Tags[HTTPStatusCodeTag]; !exists {
		e.Tags[HTTPStatusCodeTag] = strconv.Itoa(hint.Response.StatusCode)
	}
	return e
}
