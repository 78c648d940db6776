package services

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var (
	aggKeywordRe     = regexp.MustCompile(`\b(average|avg|mean|total|sum|count|how many|number of)\b`)
	trailingScopeRe  = regexp.MustCompile(`\b(?:in|for|from|within)\s+(?:the\s+)?([a-z0-9 _-]+?)\s*[?.!]*$`)
	earliestRe       = regexp.MustCompile(`\b(earliest|oldest)\b`)
	latestRe         = regexp.MustCompile(`\b(latest|newest|most recent)\b`)
	extremalRecordRe = regexp.MustCompile(`\b(?:which|what|who)\b.*\b(highest|largest|biggest|most|top|best|lowest|smallest|least|worst)\b`)
	whichSubjectRe   = regexp.MustCompile(`\b(?:which|what|who)\s+([a-z0-9_]+)`)
	countSubjectRe   = regexp.MustCompile(`\b(?:how many|count of|number of)\s+(?:different\s+|unique\s+|distinct\s+)?([a-z0-9_ ]+?)\s*(?:are there|do we have|exist|in total)?\s*[?.!]*$`)
	distinctWordRe   = regexp.MustCompile(`\b(different|unique|distinct)\b`)
	lowSuperlativeRe = regexp.MustCompile(`\b(lowest|smallest|least|worst)\b`)
)

// FilteredAggregateDetector claims aggregations scoped by a trailing
// "in/for/from VALUE" clause naming a known categorical value ("average
// rating in crime movies").
type FilteredAggregateDetector struct{}

func (FilteredAggregateDetector) Name() string { return "filtered_aggregate" }

func (FilteredAggregateDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	if !aggKeywordRe.MatchString(lq) {
		return nil
	}
	m := trailingScopeRe.FindStringSubmatch(lq)
	if m == nil {
		return nil
	}

	filterField, filterValue, ok := matchCategoricalValue(m[1], schema)
	if !ok {
		return nil
	}

	agg, _ := aggFromKeywords(lq)
	intent := models.FilteredAggregateIntent{
		Agg:         agg,
		FilterField: filterField,
		FilterValue: filterValue,
	}
	if agg != models.AggCount {
		if f, ok := firstNumericFieldMention(lq, schema); ok {
			intent.TargetField = f
		} else if f, ok := defaultRankField(schema); ok {
			intent.TargetField = f
		} else {
			return nil
		}
	}
	return intent
}

// matchCategoricalValue matches a question phrase against known categorical
// values with singular/plural tolerance ("crime movies" matches "Crime").
func matchCategoricalValue(phrase string, schema *models.DatasetSchema) (field, value string, ok bool) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return "", "", false
	}
	for _, f := range schema.CategoricalFields {
		for _, v := range schema.TopValues[f] {
			if len(v) < 3 {
				continue
			}
			lv := strings.ToLower(v)
			if phrase == lv || phrase == inflection.Plural(lv) ||
				containsTerm(phrase, lv) || containsTerm(phrase, inflection.Plural(lv)) {
				return f, v, true
			}
		}
	}
	return "", "", false
}

// AggregateDetector claims dataset-wide aggregations: counts, distinct
// counts, averages, sums, extremes, and earliest/latest/extremal records.
// Generic entity words never count as field names, and ID-like fields are
// never averaged or summed.
type AggregateDetector struct{}

func (AggregateDetector) Name() string { return "aggregate" }

func (AggregateDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)

	// Earliest/latest record over a time-like field.
	if earliestRe.MatchString(lq) || latestRe.MatchString(lq) {
		if tf, ok := findTimeField(schema); ok && schema.IsNumeric(tf) {
			agg := models.AggMax
			if earliestRe.MatchString(lq) {
				agg = models.AggMin
			}
			return models.AggregateIntent{Agg: agg, TargetField: tf, WantRecord: true}
		}
	}

	// Extremal record: "which movie has the highest rating". Time-unit
	// subjects ("which year ...") belong to the trend detector.
	if extremalRecordRe.MatchString(lq) {
		if sm := whichSubjectRe.FindStringSubmatch(lq); sm != nil && timeUnitWords[sm[1]] {
			return nil
		}
		field, ok := firstNumericFieldMention(lq, schema)
		if !ok {
			field, ok = defaultRankField(schema)
		}
		if ok {
			agg := models.AggMax
			if lowSuperlativeRe.MatchString(lq) {
				agg = models.AggMin
			}
			return models.AggregateIntent{Agg: agg, TargetField: field, WantRecord: true}
		}
		return nil
	}

	// Counts: rows, distinct values, or non-empty values of a column.
	// Comparison phrasing ("how many movies have a rating over 8") belongs
	// to the filter detector.
	if m := countSubjectRe.FindStringSubmatch(lq); m != nil && !comparisonRe.MatchString(lq) {
		subject := strings.TrimSpace(m[1])
		words := strings.Fields(subject)
		last := subject
		if len(words) > 0 {
			last = words[len(words)-1]
		}
		if isEntityWord(last) {
			return models.AggregateIntent{Agg: models.AggCount}
		}
		if f, ok := ResolveField(subject, schema); ok {
			if schema.IsCategorical(f) || distinctWordRe.MatchString(lq) {
				return models.AggregateIntent{Agg: models.AggCountDistinct, TargetField: f}
			}
			return models.AggregateIntent{Agg: models.AggCount, TargetField: f}
		}
		// "how many crime movies" scopes the count to a categorical value.
		if f, v, ok := matchCategoricalValue(subject, schema); ok {
			return models.FilteredAggregateIntent{Agg: models.AggCount, FilterField: f, FilterValue: v}
		}
		// An unresolvable subject ("movies", "passengers") names the rows
		// themselves.
		return models.AggregateIntent{Agg: models.AggCount}
	}

	// Average / sum of a named numeric field.
	if avgKeywordRe.MatchString(lq) {
		if f, ok := firstNumericFieldMention(lq, schema); ok && !isIDLikeField(f) {
			return models.AggregateIntent{Agg: models.AggAvg, TargetField: f}
		}
		return nil
	}
	if sumKeywordRe.MatchString(lq) {
		if f, ok := firstNumericFieldMention(lq, schema); ok && !isIDLikeField(f) {
			return models.AggregateIntent{Agg: models.AggSum, TargetField: f}
		}
		return nil
	}

	// Extreme value of a named numeric field.
	if maxKeywordRe.MatchString(lq) || minKeywordRe.MatchString(lq) {
		if f, ok := firstNumericFieldMention(lq, schema); ok {
			agg := models.AggMax
			if minKeywordRe.MatchString(lq) && !maxKeywordRe.MatchString(lq) {
				agg = models.AggMin
			}
			return models.AggregateIntent{Agg: agg, TargetField: f}
		}
	}

	return nil
}
