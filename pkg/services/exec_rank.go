package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

func executeTopN(intent models.TopNIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	qualifying := rows
	if intent.FilterField != "" {
		qualifying = nil
		for _, row := range rows {
			if matchesCategory(row[intent.FilterField], intent.FilterValue) {
				qualifying = append(qualifying, row)
			}
		}
	}

	ranked := collectNumeric(qualifying, intent.SortField)
	if len(ranked) == 0 {
		answer := fmt.Sprintf("No records found with a numeric %s value.", intent.SortField)
		if intent.FilterField != "" {
			answer = fmt.Sprintf("No records found where %s is %s.", intent.FilterField, intent.FilterValue)
		}
		return structuralResult(answer, fmt.Sprintf("top_n field=%s matched=0", intent.SortField), nil)
	}

	// Stable sort: ties retain row order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if intent.Ascending {
			return ranked[i].value < ranked[j].value
		}
		return ranked[i].value > ranked[j].value
	})
	if len(ranked) > intent.N {
		ranked = ranked[:intent.N]
	}

	direction := "Top"
	if intent.Ascending {
		direction = "Bottom"
	}
	header := fmt.Sprintf("%s %d by %s", direction, len(ranked), intent.SortField)
	if intent.FilterField != "" {
		header += fmt.Sprintf(" (%s: %s)", intent.FilterField, intent.FilterValue)
	}

	var b strings.Builder
	b.WriteString(header + ":")
	for i, fv := range ranked {
		b.WriteString(fmt.Sprintf("\n%d. %s (%s: %s)", i+1, rowLabel(fv.row, schema), intent.SortField, fv.raw))
	}

	xKey := labelField(schema)
	chart := &models.ChartData{
		Type:  "bar",
		Title: header,
		XKey:  xKey,
		YKey:  intent.SortField,
		Data:  make([]map[string]any, 0, len(ranked)),
	}
	for _, fv := range ranked {
		chart.Data = append(chart.Data, map[string]any{
			xKey:             truncateChartLabel(rowLabel(fv.row, schema)),
			intent.SortField: fv.value,
		})
	}

	ctx := fmt.Sprintf("top_n n=%d field=%s ascending=%t matched=%d", intent.N, intent.SortField, intent.Ascending, len(ranked))
	return structuralResult(b.String(), ctx, chart)
}

func executeGroupRank(intent models.GroupRankIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	type groupStat struct {
		name  string
		value float64
	}

	counts := map[string]int{}
	sums := map[string]float64{}
	parsed := map[string]int{}
	for _, row := range rows {
		group := strings.TrimSpace(row[intent.GroupField])
		if group == "" {
			continue
		}
		counts[group]++
		if !intent.ByCount {
			if v, ok := parseNumber(row[intent.ValueField]); ok {
				sums[group] += v
				parsed[group]++
			}
		}
	}

	var groups []groupStat
	for name, n := range counts {
		if intent.ByCount {
			groups = append(groups, groupStat{name: name, value: float64(n)})
			continue
		}
		if parsed[name] == 0 {
			continue
		}
		groups = append(groups, groupStat{name: name, value: sums[name] / float64(parsed[name])})
	}
	if len(groups) == 0 {
		answer := fmt.Sprintf("No records found with a value for %s.", intent.GroupField)
		return structuralResult(answer, fmt.Sprintf("group_rank field=%s groups=0", intent.GroupField), nil)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].value != groups[j].value {
			if intent.Ascending {
				return groups[i].value < groups[j].value
			}
			return groups[i].value > groups[j].value
		}
		return groups[i].name < groups[j].name
	})

	best := groups[0]
	var lead string
	switch {
	case intent.ByCount:
		lead = fmt.Sprintf("The most common %s is %s (%s).", intent.GroupField, best.name, pluralizeRecords(int(best.value)))
	case intent.Ascending:
		lead = fmt.Sprintf("%s has the lowest average %s (%s).", best.name, intent.ValueField, formatMean(best.value))
	default:
		lead = fmt.Sprintf("%s has the highest average %s (%s).", best.name, intent.ValueField, formatMean(best.value))
	}

	var b strings.Builder
	b.WriteString(lead)
	for i, g := range groups {
		val := formatMean(g.value)
		if intent.ByCount {
			val = formatNumber(g.value)
		}
		b.WriteString(fmt.Sprintf("\n%d. %s: %s", i+1, g.name, val))
	}

	yKey := "average " + intent.ValueField
	if intent.ByCount {
		yKey = "count"
	}
	chart := &models.ChartData{
		Type:  "bar",
		Title: fmt.Sprintf("%s ranked by %s", intent.GroupField, yKey),
		XKey:  intent.GroupField,
		YKey:  yKey,
		Data:  make([]map[string]any, 0, len(groups)),
	}
	for _, g := range groups {
		chart.Data = append(chart.Data, map[string]any{
			intent.GroupField: truncateChartLabel(g.name),
			yKey:              g.value,
		})
	}

	ctx := fmt.Sprintf("group_rank group=%s by_count=%t groups=%d", intent.GroupField, intent.ByCount, len(groups))
	return structuralResult(b.String(), ctx, chart)
}
