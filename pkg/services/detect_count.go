package services

import (
	"regexp"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var (
	countPrefixRe   = regexp.MustCompile(`\b(?:how many|number of|count of)\b`)
	comparisonRe    = regexp.MustCompile(`\b(?:over|under|above|below|more than|less than|greater than|higher than|lower than)\b`)
	haveFieldRe     = regexp.MustCompile(`\b(?:have|has|with)\s+(?:a\s+|an\s+|any\s+)?([a-z0-9_ ]+?)\s*[?.!]*$`)
	numberLiteralRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ConditionalCountDetector claims "how many X ..." questions that count rows
// by a condition: a non-empty field ("with a director"), a field/number
// equality ("pclass 1"), or an implicit 0/1 boolean field mentioned as a
// verb ("survived").
type ConditionalCountDetector struct{}

func (ConditionalCountDetector) Name() string { return "conditional_count" }

func (ConditionalCountDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	if !countPrefixRe.MatchString(lq) {
		return nil
	}
	// Threshold phrasing belongs to the filter detector.
	if comparisonRe.MatchString(lq) {
		return nil
	}

	// (a) "have/has/with FIELD" counts rows with any value.
	if m := haveFieldRe.FindStringSubmatch(lq); m != nil {
		if f, ok := ResolveField(m[1], schema); ok {
			return models.ConditionalCountIntent{Field: f, Mode: models.CountNonEmpty}
		}
	}

	// (b) "FIELD NUMBER" counts rows equal to a literal.
	toks := tokenizeQuestion(lq)
	for i := 0; i+1 < len(toks); i++ {
		if !numberLiteralRe.MatchString(toks[i+1]) {
			continue
		}
		if len(toks[i]) < 3 || isEntityWord(toks[i]) {
			continue
		}
		if f, ok := ResolveField(toks[i], schema); ok {
			return models.ConditionalCountIntent{Field: f, Mode: models.CountEquals, Value: toks[i+1]}
		}
	}

	// (c) An implicit boolean field named as a verb counts its 1s.
	for _, f := range schema.NumericFields {
		r := schema.Ranges[f]
		if r.Min != 0 || r.Max != 1 {
			continue
		}
		if containsTerm(lq, f) {
			return models.ConditionalCountIntent{Field: f, Mode: models.CountBooleanTrue}
		}
	}

	return nil
}
