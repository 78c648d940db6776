package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// filterListLimit caps the rows listed in a threshold filter answer.
const filterListLimit = 15

func executeFilter(intent models.FilterIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	comparator := "under"
	if intent.GreaterThan {
		comparator = "over"
	}
	threshold := formatNumber(intent.Threshold)

	var matched []fieldValue
	for _, fv := range collectNumeric(rows, intent.Field) {
		if intent.GreaterThan && fv.value > intent.Threshold {
			matched = append(matched, fv)
		}
		if !intent.GreaterThan && fv.value < intent.Threshold {
			matched = append(matched, fv)
		}
	}
	ctx := fmt.Sprintf("threshold_filter field=%s %s %s matched=%d", intent.Field, comparator, threshold, len(matched))

	if len(matched) == 0 {
		answer := fmt.Sprintf("No records found where %s is %s %s.", intent.Field, comparator, threshold)
		return structuralResult(answer, ctx, nil)
	}

	header := fmt.Sprintf("Found %s where %s is %s %s", pluralizeRecords(len(matched)), intent.Field, comparator, threshold)
	listed := matched
	if len(listed) > filterListLimit {
		listed = listed[:filterListLimit]
		header += fmt.Sprintf(" (showing first %d)", filterListLimit)
	}

	var b strings.Builder
	b.WriteString(header + ":")
	for _, fv := range listed {
		b.WriteString(fmt.Sprintf("\n- %s (%s: %s)", rowLabel(fv.row, schema), intent.Field, fv.raw))
	}
	return structuralResult(b.String(), ctx, nil)
}

func executeListAll(intent models.ListAllIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	seen := map[string]string{} // lowercased -> first-seen casing
	for _, row := range rows {
		v := strings.TrimSpace(row[intent.Field])
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; !ok {
			seen[key] = v
		}
	}
	ctx := fmt.Sprintf("list_all field=%s distinct=%d", intent.Field, len(seen))

	if len(seen) == 0 {
		return structuralResult(fmt.Sprintf("No values found for %s.", intent.Field), ctx, nil)
	}

	values := make([]string, 0, len(seen))
	for _, v := range seen {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})

	noun := "values"
	if len(values) == 1 {
		noun = "value"
	}
	answer := fmt.Sprintf("There are %d distinct %s %s:\n%s", len(values), intent.Field, noun, strings.Join(values, ", "))
	if len(values) == 1 {
		answer = fmt.Sprintf("There is 1 distinct %s value:\n%s", intent.Field, values[0])
	}
	return structuralResult(answer, ctx, nil)
}
