package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

const maxTopN = 100

var (
	topNRe     = regexp.MustCompile(`\b(top|best|highest|bottom|worst|lowest)\s+(\d+)\b`)
	byClauseRe = regexp.MustCompile(`\bby\s+([a-z0-9_ ]+?)\s*(?:[?.!,]|$)`)
)

// TopNDetector claims "top/best/highest N" and "bottom/worst/lowest N"
// ranking questions.
type TopNDetector struct{}

func (TopNDetector) Name() string { return "top_n" }

func (TopNDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	m := topNRe.FindStringSubmatch(lq)
	if m == nil {
		return nil
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > maxTopN {
		n = maxTopN
	}

	ascending := m[1] == "bottom" || m[1] == "worst" || m[1] == "lowest"

	// Sort field: explicit "by X" clause, else the first numeric column the
	// question names, else the default rank field.
	var sortField string
	if bm := byClauseRe.FindStringSubmatch(lq); bm != nil {
		if f, ok := ResolveField(bm[1], schema); ok && schema.IsNumeric(f) {
			sortField = f
		}
	}
	if sortField == "" {
		if f, ok := firstNumericFieldMention(lq, schema); ok {
			sortField = f
		}
	}
	if sortField == "" {
		f, ok := defaultRankField(schema)
		if !ok {
			return nil
		}
		sortField = f
	}

	intent := models.TopNIntent{N: n, SortField: sortField, Ascending: ascending}
	if f, v, ok := findCategoricalFilter(lq, schema); ok {
		intent.FilterField = f
		intent.FilterValue = v
	}
	return intent
}

var groupRankRe = regexp.MustCompile(`\b(best|worst|top|greatest|most popular|most common)\s+([a-z0-9_ ]+?)\s*(?:[?.!,]|$)`)

// GroupRankDetector claims "best/worst/most popular CATEGORY" questions
// without an explicit N, ranking categorical groups rather than rows.
type GroupRankDetector struct{}

func (GroupRankDetector) Name() string { return "group_rank" }

func (GroupRankDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	if topNRe.MatchString(lq) {
		return nil
	}
	m := groupRankRe.FindStringSubmatch(lq)
	if m == nil {
		return nil
	}

	phrase := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[2]), "the "))
	f, ok := ResolveField(phrase, schema)
	if !ok {
		// A multi-word tail like "genre in the catalog" still names the
		// group in its first word.
		if fields := strings.Fields(phrase); len(fields) > 0 {
			f, ok = ResolveField(fields[0], schema)
		}
	}
	if !ok || !schema.IsCategorical(f) {
		return nil
	}

	byCount := strings.Contains(m[1], "popular") || strings.Contains(m[1], "common")
	intent := models.GroupRankIntent{
		GroupField: f,
		ByCount:    byCount,
		Ascending:  m[1] == "worst",
	}
	if !byCount {
		valueField, ok := defaultRankField(schema)
		if !ok {
			return nil
		}
		intent.ValueField = valueField
	}
	return intent
}
