package services

import (
	"regexp"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

var (
	listAllRe = regexp.MustCompile(`\b(?:list|show|give|what are)\b(?:\s+(?:me|us|the))*\s+(?:(?:all|every|each|unique|distinct|different)\s+)+(?:the\s+)?([a-z0-9_ ]+?)\s*[?.!]*$`)

	// listPhraseTrailers are noise suffixes stripped before resolving the
	// listed field ("all genres in the dataset").
	listPhraseTrailers = []string{
		" values", " in the dataset", " in the data", " in this dataset",
		" we have", " available",
	}

	outlierRe = regexp.MustCompile(`\b(outlier|outliers|anomaly|anomalies|anomalous|unusual)\b`)
)

// ListAllDetector claims "list/show all X" enumeration questions. It exists
// because retrieval only surfaces a handful of similar snippets and can
// never enumerate an entire column.
type ListAllDetector struct{}

func (ListAllDetector) Name() string { return "list_all" }

func (ListAllDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	// Ranking and threshold questions phrased with "show" are not listings.
	if topNRe.MatchString(lq) || thresholdRe.MatchString(lq) {
		return nil
	}
	m := listAllRe.FindStringSubmatch(lq)
	if m == nil {
		return nil
	}

	phrase := strings.TrimSpace(m[1])
	for _, trailer := range listPhraseTrailers {
		phrase = strings.TrimSuffix(phrase, trailer)
	}
	phrase = strings.TrimSpace(phrase)

	f, ok := ResolveField(phrase, schema)
	if !ok {
		if words := strings.Fields(phrase); len(words) > 0 {
			f, ok = ResolveField(words[len(words)-1], schema)
		}
	}
	if !ok {
		return nil
	}
	return models.ListAllIntent{Field: f}
}

// OutlierDetector claims outlier/anomaly questions over a numeric field.
type OutlierDetector struct{}

func (OutlierDetector) Name() string { return "outlier" }

func (OutlierDetector) Detect(question string, schema *models.DatasetSchema) models.Intent {
	lq := normalizeQuestion(question)
	if !outlierRe.MatchString(lq) {
		return nil
	}

	field, ok := firstNumericFieldMention(lq, schema)
	if !ok {
		field, ok = defaultRankField(schema)
	}
	if !ok {
		return nil
	}
	return models.OutlierIntent{Field: field}
}
