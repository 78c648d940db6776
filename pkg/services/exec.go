package services

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// chartLabelMax is the display cap for chart labels. Truncation applies to
// chart payloads only, never to textual answers.
const chartLabelMax = 14

// Execute runs a resolved intent against the full row set. Executors never
// re-parse the question text; per-row numeric parsing failures exclude the
// row silently.
func Execute(intent models.Intent, rows []models.Row, schema *models.DatasetSchema) (*models.QueryResult, error) {
	switch it := intent.(type) {
	case models.TopNIntent:
		return executeTopN(it, rows, schema), nil
	case models.GroupByIntent:
		return executeGroupBy(it, rows, schema), nil
	case models.GroupRankIntent:
		return executeGroupRank(it, rows, schema), nil
	case models.ConditionalCountIntent:
		return executeConditionalCount(it, rows, schema), nil
	case models.FilteredAggregateIntent:
		return executeFilteredAggregate(it, rows, schema), nil
	case models.AggregateIntent:
		return executeAggregate(it, rows, schema), nil
	case models.FilterIntent:
		return executeFilter(it, rows, schema), nil
	case models.TrendIntent:
		return executeTrend(it, rows, schema), nil
	case models.ListAllIntent:
		return executeListAll(it, rows, schema), nil
	case models.OutlierIntent:
		return executeOutlier(it, rows, schema), nil
	default:
		return nil, fmt.Errorf("no executor for intent %T", intent)
	}
}

// labelField picks the column used to name rows in answers: the title
// field, else the first categorical field, else the first field.
func labelField(schema *models.DatasetSchema) string {
	if schema.TitleField != "" {
		return schema.TitleField
	}
	if len(schema.CategoricalFields) > 0 {
		return schema.CategoricalFields[0]
	}
	if len(schema.AllFields) > 0 {
		return schema.AllFields[0]
	}
	return ""
}

func rowLabel(row models.Row, schema *models.DatasetSchema) string {
	if f := labelField(schema); f != "" {
		if v := strings.TrimSpace(row[f]); v != "" {
			return v
		}
	}
	return "(untitled)"
}

// matchesCategory compares a cell against a filter value with case and
// singular/plural tolerance.
func matchesCategory(cell, filterValue string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	v := strings.ToLower(strings.TrimSpace(filterValue))
	if c == v {
		return true
	}
	return inflection.Singular(c) == inflection.Singular(v)
}

// truncateChartLabel shortens long labels for chart display only.
func truncateChartLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= chartLabelMax {
		return s
	}
	return string(runes[:chartLabelMax]) + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pluralizeRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

func pluralizeRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return fmt.Sprintf("%d records", n)
}

func structuralResult(answer, context string, chart *models.ChartData) *models.QueryResult {
	return &models.QueryResult{
		Answer:    answer,
		Context:   context,
		Sources:   []string{},
		ChartData: chart,
	}
}

// fieldValue pairs a row with one parsed numeric cell. Raw keeps the cell
// text verbatim for answers.
type fieldValue struct {
	row   models.Row
	value float64
	raw   string
}

// collectNumeric extracts parseable values of a field, preserving row order.
func collectNumeric(rows []models.Row, field string) []fieldValue {
	out := make([]fieldValue, 0, len(rows))
	for _, row := range rows {
		raw := row[field]
		if v, ok := parseNumber(raw); ok {
			out = append(out, fieldValue{row: row, value: v, raw: strings.TrimSpace(raw)})
		}
	}
	return out
}

// aggLabel names an aggregation in answers.
func aggLabel(agg models.AggregateOp) string {
	switch agg {
	case models.AggAvg:
		return "average"
	case models.AggSum:
		return "total"
	case models.AggMin:
		return "minimum"
	case models.AggMax:
		return "maximum"
	case models.AggCount:
		return "count"
	case models.AggCountDistinct:
		return "distinct count"
	default:
		return string(agg)
	}
}
