package services

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var (
	wordRe    = regexp.MustCompile(`[a-z0-9_$.]+`)
	nonWordRe = regexp.MustCompile(`[^a-z0-9_.]+`)

	// structuralRe gates the detector chain: questions matching none of
	// these keywords (and naming no column) skip straight to retrieval.
	structuralRe = regexp.MustCompile(`\b(top|bottom|best|worst|highest|lowest|biggest|smallest|average|avg|mean|median|sum|total|count|how many|number of|per|by|list|show|all|distinct|unique|different|over|under|above|below|more than|less than|at least|trend|time|yearly|monthly|decade|outlier|anomal|which|what|most|least|earliest|latest|oldest|newest|min|minimum|max|maximum|have|with)\b`)

	// followUpRe recognizes explicit back-references to prior answers.
	followUpRe = regexp.MustCompile(`^(why|how come|what about|how about|and |what else|tell me more|explain|elaborate|really|go on|more detail)`)

	timeUnitWords = map[string]bool{
		"year": true, "years": true, "month": true, "months": true,
		"day": true, "days": true, "date": true, "dates": true,
		"week": true, "weeks": true, "decade": true, "decades": true,
		"time": true, "quarter": true, "quarters": true,
	}

	// entityWords are generic nouns that must never be mistaken for field
	// names in aggregation questions ("how many records ...").
	entityWords = map[string]bool{
		"row": true, "record": true, "entry": true, "item": true,
		"result": true, "value": true, "datapoint": true, "data": true,
		"dataset": true, "thing": true, "one": true,
	}
)

// defaultRankFieldPrefs orders the numeric fields preferred for ranking when
// a question names no sort column.
var defaultRankFieldPrefs = []string{"rating", "score", "imdb", "votes", "boxoffice", "revenue"}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func tokenizeQuestion(q string) []string {
	return wordRe.FindAllString(normalizeQuestion(q), -1)
}

// containsTerm reports whether term appears in q on word boundaries,
// ignoring case and punctuation.
func containsTerm(q, term string) bool {
	qn := " " + nonWordRe.ReplaceAllString(strings.ToLower(q), " ") + " "
	tn := " " + nonWordRe.ReplaceAllString(strings.ToLower(term), " ") + " "
	return strings.Contains(qn, tn)
}

// looksStructural reports whether a question plausibly requests a computed
// operation. Purely conversational text skips the detector chain entirely.
func looksStructural(q string, s *models.DatasetSchema) bool {
	lq := normalizeQuestion(q)
	if structuralRe.MatchString(lq) {
		return true
	}
	return mentionsField(lq, s)
}

// mentionsField reports whether any question token resolves to a column.
func mentionsField(q string, s *models.DatasetSchema) bool {
	for _, tok := range tokenizeQuestion(q) {
		if len(tok) < 3 {
			continue
		}
		if _, ok := ResolveField(tok, s); ok {
			return true
		}
	}
	return false
}

// isFollowUp recognizes short vague questions and explicit back-references
// that should be answered from conversation history, not the dataset.
func isFollowUp(q string, history []models.ChatMessage, s *models.DatasetSchema) bool {
	if len(history) == 0 {
		return false
	}
	lq := normalizeQuestion(q)
	if followUpRe.MatchString(lq) {
		return true
	}
	toks := tokenizeQuestion(lq)
	return len(toks) <= 3 && !mentionsField(lq, s) && !structuralRe.MatchString(lq)
}

// findCategoricalFilter scans the question for any known categorical value
// appearing verbatim (with plural tolerance), so "top 10 crime movies" can
// filter genre=Crime before ranking.
func findCategoricalFilter(q string, s *models.DatasetSchema) (field, value string, ok bool) {
	for _, f := range s.CategoricalFields {
		for _, v := range s.TopValues[f] {
			if len(v) < 3 {
				continue
			}
			if containsTerm(q, v) || containsTerm(q, inflection.Plural(v)) {
				return f, v, true
			}
		}
	}
	return "", "", false
}

// firstNumericFieldMention returns the first numeric column the question
// names, scanning two-word phrases before single tokens so "box office"
// resolves ahead of "office". Excluded fields (e.g. a trend's time field)
// are skipped.
func firstNumericFieldMention(q string, s *models.DatasetSchema, exclude ...string) (string, bool) {
	excluded := func(f string) bool {
		for _, e := range exclude {
			if f == e {
				return true
			}
		}
		return false
	}

	toks := tokenizeQuestion(q)
	for i := 0; i+1 < len(toks); i++ {
		phrase := toks[i] + " " + toks[i+1]
		if f, ok := ResolveField(phrase, s); ok && s.IsNumeric(f) && !excluded(f) {
			return f, true
		}
	}
	for _, tok := range toks {
		if len(tok) < 3 || timeUnitWords[tok] {
			continue
		}
		if f, ok := ResolveField(tok, s); ok && s.IsNumeric(f) && !excluded(f) {
			return f, true
		}
	}
	return "", false
}

// defaultRankField picks the numeric field used when a ranking question
// names no sort column: fixed preference order, else the first numeric
// field in schema order.
func defaultRankField(s *models.DatasetSchema) (string, bool) {
	for _, pref := range defaultRankFieldPrefs {
		for _, f := range s.NumericFields {
			if strings.Contains(collapseToken(f), pref) {
				return f, true
			}
		}
	}
	if len(s.NumericFields) > 0 {
		return s.NumericFields[0], true
	}
	return "", false
}

// findTimeField locates a time-like column: by name first, then any numeric
// field whose whole range looks like calendar years.
func findTimeField(s *models.DatasetSchema) (string, bool) {
	timeNames := []string{"year", "date", "month", "released", "time"}
	for _, f := range s.AllFields {
		name := collapseToken(f)
		for _, t := range timeNames {
			if strings.Contains(name, t) {
				return f, true
			}
		}
	}
	for _, f := range s.NumericFields {
		r := s.Ranges[f]
		if r.Min >= 1500 && r.Max <= 2200 {
			return f, true
		}
	}
	return "", false
}

// isIDLikeField reports whether a column looks like an identifier.
// Averaging or summing IDs is never meaningful.
func isIDLikeField(field string) bool {
	name := collapseToken(field)
	return name == "id" || strings.HasSuffix(name, "id")
}

func isEntityWord(tok string) bool {
	return entityWords[inflection.Singular(strings.ToLower(tok))]
}
