package httputil

import (
	"fmt"
	"net/http"
	"strconv"
)

// GetPositiveFloatParameter parses an optional numeric query parameter. An
// absent parameter yields the fallback; a malformed or non-positive value
// writes a 400 naming the key and returns false.
func GetPositiveFloatParameter(w http.ResponseWriter, r *http.Request, key string, fallback float64) (float64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		http.Error(w, fmt.Sprintf("%s must be a positive number", key), http.StatusBadRequest)
		return 0, false
	}
	return value, true
}

// GetPositiveIntParameter is GetPositiveFloatParameter for integer
// parameters.
func GetPositiveIntParameter(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		http.Error(w, fmt.Sprintf("%s must be a positive integer", key), http.StatusBadRequest)
		return 0, false
	}
	return value, true
}
