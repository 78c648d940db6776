package services

import (
	"fmt"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

func executeAggregate(intent models.AggregateIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	ctx := fmt.Sprintf("aggregate agg=%s field=%s rows=%d", intent.Agg, intent.TargetField, len(rows))

	switch intent.Agg {
	case models.AggCount:
		if intent.TargetField == "" {
			return structuralResult(fmt.Sprintf("The dataset contains %s.", pluralizeRows(len(rows))), ctx, nil)
		}
		n := 0
		for _, row := range rows {
			if strings.TrimSpace(row[intent.TargetField]) != "" {
				n++
			}
		}
		return structuralResult(fmt.Sprintf("%s have a value for %s.", capitalize(pluralizeRecords(n)), intent.TargetField), ctx, nil)

	case models.AggCountDistinct:
		seen := map[string]struct{}{}
		for _, row := range rows {
			if v := strings.TrimSpace(row[intent.TargetField]); v != "" {
				seen[strings.ToLower(v)] = struct{}{}
			}
		}
		return structuralResult(fmt.Sprintf("%s has %d distinct values.", intent.TargetField, len(seen)), ctx, nil)
	}

	values := collectNumeric(rows, intent.TargetField)
	if len(values) == 0 {
		answer := fmt.Sprintf("No numeric values found for %s.", intent.TargetField)
		return structuralResult(answer, ctx, nil)
	}

	switch intent.Agg {
	case models.AggAvg:
		sum := 0.0
		for _, fv := range values {
			sum += fv.value
		}
		// Bare fixed-precision value; downstream consumers match on it.
		return structuralResult(formatMean(sum/float64(len(values))), ctx, nil)

	case models.AggSum:
		sum := 0.0
		for _, fv := range values {
			sum += fv.value
		}
		return structuralResult(fmt.Sprintf("The total %s is %s.", intent.TargetField, formatNumber(sum)), ctx, nil)

	case models.AggMin, models.AggMax:
		best := values[0]
		for _, fv := range values[1:] {
			if intent.Agg == models.AggMin && fv.value < best.value {
				best = fv
			}
			if intent.Agg == models.AggMax && fv.value > best.value {
				best = fv
			}
		}
		extreme := "highest"
		if intent.Agg == models.AggMin {
			extreme = "lowest"
		}
		if intent.WantRecord {
			answer := fmt.Sprintf("%s has the %s %s (%s).", rowLabel(best.row, schema), extreme, intent.TargetField, best.raw)
			return structuralResult(answer, ctx, nil)
		}
		answer := fmt.Sprintf("The %s %s is %s.", extreme, intent.TargetField, best.raw)
		return structuralResult(answer, ctx, nil)
	}

	return structuralResult(fmt.Sprintf("Unsupported aggregation %s.", intent.Agg), ctx, nil)
}

func executeFilteredAggregate(intent models.FilteredAggregateIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	var matched []models.Row
	for _, row := range rows {
		if matchesCategory(row[intent.FilterField], intent.FilterValue) {
			matched = append(matched, row)
		}
	}
	ctx := fmt.Sprintf("filtered_aggregate agg=%s filter=%s:%s matched=%d", intent.Agg, intent.FilterField, intent.FilterValue, len(matched))

	if len(matched) == 0 {
		answer := fmt.Sprintf("No records found where %s is %s.", intent.FilterField, intent.FilterValue)
		return structuralResult(answer, ctx, nil)
	}

	if intent.Agg == models.AggCount || intent.TargetField == "" {
		answer := fmt.Sprintf("Found %s where %s is %s.", pluralizeRecords(len(matched)), intent.FilterField, intent.FilterValue)
		return structuralResult(answer, ctx, nil)
	}

	values := collectNumeric(matched, intent.TargetField)
	if len(values) == 0 {
		answer := fmt.Sprintf("No numeric %s values found where %s is %s.", intent.TargetField, intent.FilterField, intent.FilterValue)
		return structuralResult(answer, ctx, nil)
	}

	sum := 0.0
	min, max := values[0].value, values[0].value
	for _, fv := range values {
		sum += fv.value
		if fv.value < min {
			min = fv.value
		}
		if fv.value > max {
			max = fv.value
		}
	}

	var rendered string
	switch intent.Agg {
	case models.AggAvg:
		rendered = formatMean(sum / float64(len(values)))
	case models.AggMin:
		rendered = formatNumber(min)
	case models.AggMax:
		rendered = formatNumber(max)
	default:
		rendered = formatNumber(sum)
	}
	answer := fmt.Sprintf("The %s %s for %s is %s.", aggLabel(intent.Agg), intent.TargetField, intent.FilterValue, rendered)
	return structuralResult(answer, ctx, nil)
}

func executeConditionalCount(intent models.ConditionalCountIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	ctx := fmt.Sprintf("conditional_count field=%s mode=%s rows=%d", intent.Field, intent.Mode, len(rows))

	n := 0
	switch intent.Mode {
	case models.CountNonEmpty:
		for _, row := range rows {
			if strings.TrimSpace(row[intent.Field]) != "" {
				n++
			}
		}
		if n == 0 {
			return structuralResult(fmt.Sprintf("No records have a value for %s.", intent.Field), ctx, nil)
		}
		answer := fmt.Sprintf("%d of the %s have a value for %s.", n, pluralizeRecords(len(rows)), intent.Field)
		return structuralResult(answer, ctx, nil)

	case models.CountEquals:
		want, wantNumeric := parseNumber(intent.Value)
		for _, row := range rows {
			cell := strings.TrimSpace(row[intent.Field])
			if strings.EqualFold(cell, intent.Value) {
				n++
				continue
			}
			if wantNumeric {
				if v, ok := parseNumber(cell); ok && v == want {
					n++
				}
			}
		}
		if n == 0 {
			return structuralResult(fmt.Sprintf("No records found where %s is %s.", intent.Field, intent.Value), ctx, nil)
		}
		answer := fmt.Sprintf("Found %s where %s is %s.", pluralizeRecords(n), intent.Field, intent.Value)
		return structuralResult(answer, ctx, nil)

	case models.CountBooleanTrue:
		for _, row := range rows {
			if v, ok := parseNumber(row[intent.Field]); ok && v == 1 {
				n++
			}
		}
		if n == 0 {
			return structuralResult(fmt.Sprintf("No records have %s = 1.", intent.Field), ctx, nil)
		}
		answer := fmt.Sprintf("%d of the %s have %s = 1.", n, pluralizeRecords(len(rows)), intent.Field)
		return structuralResult(answer, ctx, nil)
	}

	return structuralResult(fmt.Sprintf("Unsupported count mode %s.", intent.Mode), ctx, nil)
}
