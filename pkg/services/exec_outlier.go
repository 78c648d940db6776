package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// minOutlierValues is the minimum sample size for the IQR method.
const minOutlierValues = 4

func executeOutlier(intent models.OutlierIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	values := collectNumeric(rows, intent.Field)
	ctx := fmt.Sprintf("outlier field=%s values=%d", intent.Field, len(values))

	if len(values) < minOutlierValues {
		answer := fmt.Sprintf("Not enough numeric %s values to detect outliers (need at least %d, found %d).",
			intent.Field, minOutlierValues, len(values))
		return structuralResult(answer, ctx, nil)
	}

	sorted := make([]float64, len(values))
	for i, fv := range values {
		sorted[i] = fv.value
	}
	sort.Float64s(sorted)

	// Percentile by index, no interpolation.
	q1 := sorted[int(float64(len(sorted))*0.25)]
	q3 := sorted[int(float64(len(sorted))*0.75)]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var outliers []fieldValue
	for _, fv := range values {
		if fv.value < lower || fv.value > upper {
			outliers = append(outliers, fv)
		}
	}
	ctx += fmt.Sprintf(" q1=%s q3=%s flagged=%d", formatNumber(q1), formatNumber(q3), len(outliers))

	if len(outliers) == 0 {
		answer := fmt.Sprintf("No outliers detected in %s; all %d values fall between %s and %s.",
			intent.Field, len(values), formatNumber(lower), formatNumber(upper))
		return structuralResult(answer, ctx, nil)
	}

	noun := "outliers"
	if len(outliers) == 1 {
		noun = "outlier"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d %s in %s (normal range %s to %s):", len(outliers), noun, intent.Field, formatNumber(lower), formatNumber(upper)))
	for _, fv := range outliers {
		b.WriteString(fmt.Sprintf("\n- %s (%s: %s)", rowLabel(fv.row, schema), intent.Field, fv.raw))
	}

	xKey := labelField(schema)
	chart := &models.ChartData{
		Type:  "bar",
		Title: fmt.Sprintf("Outliers in %s", intent.Field),
		XKey:  xKey,
		YKey:  intent.Field,
		Data:  make([]map[string]any, 0, len(outliers)),
	}
	for _, fv := range outliers {
		chart.Data = append(chart.Data, map[string]any{
			xKey:         truncateChartLabel(rowLabel(fv.row, schema)),
			intent.Field: fv.value,
		})
	}
	return structuralResult(b.String(), ctx, chart)
}
