package services

import (
	"regexp"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var (
	perGroupRe     = regexp.MustCompile(`\b(?:per|for each|by each)\s+([a-z0-9_]+)`)
	trailingByRe   = regexp.MustCompile(`\bby\s+([a-z0-9_]+)\s*[?.!]*$`)
	avgKeywordRe   = regexp.MustCompile(`\b(average|avg|mean)\b`)
	sumKeywordRe   = regexp.MustCompile(`\b(total|sum)\b`)
	countKeywordRe = regexp.MustCompile(`\b(how many|count|number of)\b`)
	maxKeywordRe   = regexp.MustCompile(`\b(max|maximum|highest|largest|biggest)\b`)
	minKeywordRe   = regexp.MustCompile(`\b(min|minimum|lowest|smallest)\b`)
)

// aggFromKeywords infers the aggregation a question asks for. The bool is
// false when no keyword matched (callers pick their own default).
func aggFromKeywords(lq string) (models.AggregateOp, bool) {
	switch {
	case avgKeywordRe.MatchString(lq):
		return models.AggAvg, true
	case countKeywordRe.MatchString(lq):
		return models.AggCount, true
	case sumKeywordRe.MatchString(lq):
		return models.AggSum, true
	case maxKeywordRe.MatchString(lq):
		return models.AggMax, true
	case minKeywordRe.MatchString(lq):
		return models.AggMin, true
	}
	return models.AggSum, false
}

// GroupByDetector claims "per X" / "for each X" / trailing "by X" breakdown
// questions. Time-unit group words are left for the trend detector.
type GroupByDetector struct{}

func (GroupByDetector) Name() string { return "group_by" }

func (GroupByDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)

	var word string
	if m := perGroupRe.FindStringSubmatch(lq); m != nil {
		word = m[1]
	} else if m := trailingByRe.FindStringSubmatch(lq); m != nil {
		word = m[1]
	}
	if word == "" || timeUnitWords[word] {
		return nil
	}

	f, ok := ResolveField(word, schema)
	if !ok || !schema.IsCategorical(f) {
		return nil
	}

	agg, _ := aggFromKeywords(lq) // default sum
	intent := models.GroupByIntent{GroupField: f, Agg: agg}

	if agg != models.AggCount {
		if vf, ok := firstNumericFieldMention(lq, schema); ok {
			intent.ValueField = vf
		} else if vf, ok := defaultRankField(schema); ok {
			intent.ValueField = vf
		} else {
			return nil
		}
	}
	return intent
}
