package services

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber parses a raw cell value as a finite float. Currency symbols
// and thousands separators are tolerated; anything else fails. Callers must
// exclude failed values from computation, never coerce them to zero.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// parseThreshold parses a number from question text, accepting $ prefixes,
// thousands separators, and k/m/b magnitude suffixes ("50k", "$2m").
func parseThreshold(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "b"):
		mult, s = 1e9, strings.TrimSuffix(s, "b")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f * mult, true
}

// formatNumber renders a computed value: integers without decimals, other
// values with two. Used for sums, thresholds, and extremes.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatMean renders averages with exactly two decimals. Tests depend on
// this fixed format.
func formatMean(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
