package httputil

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GetRequiredQueryParameters reads the named query parameters and returns
// them along with a logger pre-tagged with each value. A missing or blank
// parameter writes a 400 naming the offending key and returns false; the
// handler should bail out without writing anything else.
func GetRequiredQueryParameters(w http.ResponseWriter, r *http.Request, keys ...string) (map[string]string, zerolog.Logger, bool) {
	values := r.URL.Query()
	params := make(map[string]string, len(keys))
	logContext := log.With()
	for _, key := range keys {
		value := values.Get(key)
		if value == "" {
			http.Error(w, fmt.Sprintf("expected %s query parameter", key), http.StatusBadRequest)
			return nil, zerolog.Nop(), false
		}
		params[key] = value
		logContext = logContext.Str(key, value)
	}
	return params, logContext.Logger(), true
}
