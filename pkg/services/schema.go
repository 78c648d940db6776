// Package services implements the natural-language query engine: schema
// inference, field resolution, intent detection, dispatch, and execution.
package services

import (
	"sort"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

const (
	// numericRatioThreshold is the fraction of non-empty values that must
	// parse as finite numbers for a field to be classified numeric.
	numericRatioThreshold = 0.6
	// maxCategoricalDistinct is the distinct-value ceiling for categorical
	// classification of non-numeric fields.
	maxCategoricalDistinct = 50
	// uniquenessRatioCeiling classifies a non-numeric field categorical when
	// its distinct/total ratio falls below it, regardless of distinct count.
	uniquenessRatioCeiling = 0.3
	// topValuesLimit caps the frequency-ranked value list per categorical field.
	topValuesLimit = 20
	// summarySampleCap bounds per-field sampling for ingest-time summaries.
	// Structural query execution always scans the full row set.
	summarySampleCap = 200
)

// identifyingFieldNames pick the title field used to label rows in answers.
var identifyingFieldNames = []string{
	"title", "name", "movie", "film", "song", "book", "product", "item", "show",
}

// BuildSchema infers the schema of a row set, scanning every value. It is
// deterministic: identical input yields identical field order,
// classifications, and ranges. Empty input yields an empty schema, not an
// error.
func BuildSchema(columns []string, rows []models.Row) *models.DatasetSchema {
	return buildSchema(columns, rows, 0)
}

// SummarizeSchema infers a schema sampling at most 200 values per field.
// Used for ingest summaries on large datasets where exact classification of
// every value is not worth a full scan.
func SummarizeSchema(columns []string, rows []models.Row) *models.DatasetSchema {
	return buildSchema(columns, rows, summarySampleCap)
}

func buildSchema(columns []string, rows []models.Row, sampleCap int) *models.DatasetSchema {
	schema := &models.DatasetSchema{
		Ranges:    make(map[string]models.FieldRange),
		TopValues: make(map[string][]string),
		Aliases:   make(map[string]string),
	}

	schema.AllFields = fieldOrder(columns, rows)
	if len(rows) == 0 || len(schema.AllFields) == 0 {
		return schema
	}

	for _, field := range schema.AllFields {
		values := collectValues(field, rows, sampleCap)
		if len(values) == 0 {
			continue
		}

		parsed := make([]float64, 0, len(values))
		for _, v := range values {
			if f, ok := parseNumber(v); ok {
				parsed = append(parsed, f)
			}
		}

		if float64(len(parsed))/float64(len(values)) >= numericRatioThreshold {
			schema.NumericFields = append(schema.NumericFields, field)
			r := models.FieldRange{Min: parsed[0], Max: parsed[0]}
			for _, f := range parsed[1:] {
				if f < r.Min {
					r.Min = f
				}
				if f > r.Max {
					r.Max = f
				}
			}
			schema.Ranges[field] = r
			continue
		}

		distinct := make(map[string]int, len(values))
		for _, v := range values {
			distinct[v]++
		}
		ratio := float64(len(distinct)) / float64(len(values))
		if len(distinct) <= maxCategoricalDistinct || ratio < uniquenessRatioCeiling {
			schema.CategoricalFields = append(schema.CategoricalFields, field)
			schema.TopValues[field] = rankValues(distinct)
		}
		// Fields meeting neither threshold stay in AllFields only.
	}

	schema.TitleField = findTitleField(schema.AllFields)
	schema.Aliases = buildAliases(schema)
	return schema
}

// fieldOrder returns columns in first-seen order. The stored column order is
// authoritative; keys appearing only in row payloads are appended sorted so
// the result stays deterministic even without header metadata.
func fieldOrder(columns []string, rows []models.Row) []string {
	seen := make(map[string]bool, len(columns))
	var fields []string
	for _, c := range columns {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		fields = append(fields, c)
	}

	var extras []string
	for _, row := range rows {
		for k := range row {
			k = strings.ToLower(k)
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	return append(fields, extras...)
}

// collectValues gathers non-empty trimmed values for one field, up to
// sampleCap when positive.
func collectValues(field string, rows []models.Row, sampleCap int) []string {
	var values []string
	for _, row := range rows {
		v := strings.TrimSpace(row[field])
		if v == "" {
			continue
		}
		values = append(values, v)
		if sampleCap > 0 && len(values) >= sampleCap {
			break
		}
	}
	return values
}

// rankValues orders distinct values by descending frequency, breaking ties
// alphabetically so the ranking is stable across runs.
func rankValues(counts map[string]int) []string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	if len(values) > topValuesLimit {
		values = values[:topValuesLimit]
	}
	return values
}

func findTitleField(fields []string) string {
	for _, f := range fields {
		name := collapseToken(f)
		for _, id := range identifyingFieldNames {
			if name == id {
				return f
			}
		}
	}
	return ""
}
