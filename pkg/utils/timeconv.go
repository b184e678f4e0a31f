package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseTimestamp accepts the timestamp shapes seen in API responses and
// intermediate artifacts.
func ParseTimestamp(val string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", val)
}

// SlugifyKeyword makes a keyword safe to use as an artifact filename.
func SlugifyKeyword(keyword string) string {
	slug := strings.ToLower(strings.TrimSpace(keyword))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
}

// SplitKeywords parses the comma-separated keyword syntax, e.g. "kpop,music".
func SplitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
