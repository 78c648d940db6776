package services

import (
	"regexp"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var thresholdRe = regexp.MustCompile(`(?:^|\s)([a-z0-9_ ]+?)\s+(?:is |are |was |were )?(over|under|above|below|more than|less than|greater than|higher than|lower than)\s+\$?([0-9][0-9,.]*[kmb]?)\b`)

var greaterWords = map[string]bool{
	"over": true, "above": true, "more than": true,
	"greater than": true, "higher than": true,
}

// ThresholdFilterDetector claims "FIELD over/under NUMBER" questions that
// list all qualifying rows rather than aggregating them.
type ThresholdFilterDetector struct{}

func (ThresholdFilterDetector) Name() string { return "threshold_filter" }

func (ThresholdFilterDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	m := thresholdRe.FindStringSubmatch(lq)
	if m == nil {
		return nil
	}

	threshold, ok := parseThreshold(m[3])
	if !ok {
		return nil
	}

	field, ok := resolveThresholdField(m[1], lq, schema)
	if !ok {
		return nil
	}

	return models.FilterIntent{
		Field:       field,
		GreaterThan: greaterWords[m[2]],
		Threshold:   threshold,
	}
}

// resolveThresholdField resolves the words immediately before the comparator
// ("movies with a rating over 8" -> rating), falling back to any numeric
// column the question names.
func resolveThresholdField(phrase, question string, schema *models.DatasetSchema) (string, bool) {
	words := strings.Fields(strings.TrimSpace(phrase))
	for n := 2; n >= 1; n-- {
		if len(words) < n {
			continue
		}
		candidate := strings.Join(words[len(words)-n:], " ")
		if f, ok := ResolveField(candidate, schema); ok && schema.IsNumeric(f) {
			return f, true
		}
	}
	if f, ok := firstNumericFieldMention(question, schema); ok {
		return f, true
	}
	return "", false
}
