package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/castboard/backend/internal/models"
)

// ParseTalentQuery turns /talents list parameters into a typed query.
// Absent parameters impose no condition; limit falls back to defaultLimit
// when missing or zero. Malformed numeric tokens are a client error rather
// than a silently empty result.
func ParseTalentQuery(values url.Values, defaultLimit int64) (*models.TalentQuery, error) {
	q := &models.TalentQuery{Limit: defaultLimit}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid limit %q", raw)
		}
		if n > 0 {
			q.Limit = n
		}
	}

	if raw := values.Get("skip"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid skip %q", raw)
		}
		q.Skip = n
	}

	q.Gender = strings.TrimSpace(values.Get("gender"))
	q.Projects = strings.TrimSpace(values.Get("projects"))

	if raw := values.Get("height"); raw != "" {
		r, err := ParseNumericRange(raw)
		if err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
		q.Height = r
	}

	// age carries a birth year or birth-year range.
	if raw := values.Get("age"); raw != "" {
		r, err := ParseNumericRange(raw)
		if err != nil {
			return nil, fmt.Errorf("age: %w", err)
		}
		q.BirthYear = r
	}

	if raw := values.Get("language"); raw != "" {
		for _, title := range strings.Split(raw, ",") {
			if title = strings.TrimSpace(title); title != "" {
				q.LanguageTitles = append(q.LanguageTitles, title)
			}
		}
	}

	return q, nil
}

// ParseNumericRange parses "v" into an exact match or "low-high" into an
// inclusive range.
func ParseNumericRange(raw string) (*models.NumericRange, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)

	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q", parts[0])
	}
	if len(parts) == 1 {
		return &models.NumericRange{Low: low, High: low}, nil
	}

	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q", parts[1])
	}
	if high < low {
		return nil, fmt.Errorf("invalid range %q: bounds out of order", raw)
	}
	return &models.NumericRange{Low: low, High: high}, nil
}
