package services

import (
	"regexp"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var (
	trendKeywordRe     = regexp.MustCompile(`\b(over time|over the years|trend|by year|per year|yearly|annual|by month|per month|monthly|by decade|per decade)\b`)
	trendSuperlativeRe = regexp.MustCompile(`\bwhich\s+(year|month|decade)\b.*\b(highest|most|largest|biggest|top|best|lowest|least|smallest|worst)\b`)
	monthBucketRe      = regexp.MustCompile(`\b(monthly|by month|per month)\b`)
	decadeBucketRe     = regexp.MustCompile(`\b(decade|decades)\b`)
	totalsKeywordRe    = regexp.MustCompile(`\b(total|totals|sum|revenue|sales|earnings|gross|boxoffice|box office)\b`)
)

// TrendDetector claims time-series questions, both explicit ("revenue over
// time") and implicit superlatives ("which year had the highest revenue").
type TrendDetector struct{}

func (TrendDetector) Name() string { return "trend" }

func (TrendDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)

	superlative := trendSuperlativeRe.MatchString(lq)
	if !trendKeywordRe.MatchString(lq) && !superlative {
		return nil
	}

	timeField, ok := findTimeField(schema)
	if !ok {
		return nil
	}

	bucket := models.BucketYear
	switch {
	case monthBucketRe.MatchString(lq):
		bucket = models.BucketMonth
	case decadeBucketRe.MatchString(lq):
		bucket = models.BucketDecade
	}

	intent := models.TrendIntent{
		TimeField:   timeField,
		Bucket:      bucket,
		Superlative: superlative,
		WantLowest:  superlative && lowSuperlativeRe.MatchString(lq),
	}

	switch {
	case countKeywordRe.MatchString(lq):
		intent.Agg = models.AggCount
	case totalsKeywordRe.MatchString(lq) || superlative:
		intent.Agg = models.AggSum
	default:
		intent.Agg = models.AggAvg
	}

	if intent.Agg != models.AggCount {
		if f, ok := firstNumericFieldMention(lq, schema, timeField); ok {
			intent.ValueField = f
		} else if f, ok := numericFieldExcluding(schema, timeField); ok {
			intent.ValueField = f
		} else {
			// Nothing to aggregate over time but the row count itself.
			intent.Agg = models.AggCount
		}
	}
	return intent
}

// numericFieldExcluding applies the default rank field preference while
// skipping the time field itself.
func numericFieldExcluding(s *models.DatasetSchema, exclude string) (string, bool) {
	for _, pref := range defaultRankFieldPrefs {
		for _, f := range s.NumericFields {
			if f != exclude && strings.Contains(collapseToken(f), pref) {
				return f, true
			}
		}
	}
	for _, f := range s.NumericFields {
		if f != exclude {
			return f, true
		}
	}
	return "", false
}
