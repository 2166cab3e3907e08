package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// validationErrors flattens validator failures into a field -> reason map
// for the error envelope.
func validationErrors(err error) map[string]string {
	out := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		out[field] = fmt.Sprintf("failed on %s", fe.Tag())
	}
	return out
}

// parseLimitSkip reads limit/skip pagination parameters, applying the
// injected default when limit is absent or zero.
func parseLimitSkip(values url.Values, defaultLimit int64) (int64, int64, error) {
	limit := defaultLimit
	var skip int64

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
		if n > 0 {
			limit = n
		}
	}
	if raw := values.Get("skip"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid skip %q", raw)
		}
		skip = n
	}
	return limit, skip, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
