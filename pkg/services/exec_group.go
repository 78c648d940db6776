package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// pieGroupLimit caps pie charts; larger breakdowns render better as bars.
const pieGroupLimit = 8

func executeGroupBy(intent models.GroupByIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	type groupStat struct {
		name  string
		value float64
	}

	counts := map[string]int{}
	sums := map[string]float64{}
	mins := map[string]float64{}
	maxs := map[string]float64{}
	parsed := map[string]int{}
	for _, row := range rows {
		group := strings.TrimSpace(row[intent.GroupField])
		if group == "" {
			continue
		}
		counts[group]++
		if intent.Agg == models.AggCount || intent.ValueField == "" {
			continue
		}
		v, ok := parseNumber(row[intent.ValueField])
		if !ok {
			continue
		}
		if parsed[group] == 0 || v < mins[group] {
			mins[group] = v
		}
		if parsed[group] == 0 || v > maxs[group] {
			maxs[group] = v
		}
		sums[group] += v
		parsed[group]++
	}

	counting := intent.Agg == models.AggCount || intent.ValueField == ""
	var groups []groupStat
	for name, n := range counts {
		if counting {
			groups = append(groups, groupStat{name: name, value: float64(n)})
			continue
		}
		if parsed[name] == 0 {
			continue
		}
		var v float64
		switch intent.Agg {
		case models.AggAvg:
			v = sums[name] / float64(parsed[name])
		case models.AggMin:
			v = mins[name]
		case models.AggMax:
			v = maxs[name]
		default:
			v = sums[name]
		}
		groups = append(groups, groupStat{name: name, value: v})
	}
	if len(groups) == 0 {
		answer := fmt.Sprintf("No records found with a value for %s.", intent.GroupField)
		return structuralResult(answer, fmt.Sprintf("group_by group=%s groups=0", intent.GroupField), nil)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].value != groups[j].value {
			return groups[i].value > groups[j].value
		}
		return groups[i].name < groups[j].name
	})

	var header string
	if counting {
		header = fmt.Sprintf("Count per %s", intent.GroupField)
	} else {
		header = fmt.Sprintf("%s %s per %s", capitalize(aggLabel(intent.Agg)), intent.ValueField, intent.GroupField)
	}

	var b strings.Builder
	b.WriteString(header + ":")
	for _, g := range groups {
		val := formatNumber(g.value)
		if intent.Agg == models.AggAvg && !counting {
			val = formatMean(g.value)
		}
		b.WriteString(fmt.Sprintf("\n- %s: %s", g.name, val))
	}

	chartType := "pie"
	if len(groups) > pieGroupLimit {
		chartType = "bar"
	}
	yKey := "count"
	if !counting {
		yKey = intent.ValueField
	}
	chart := &models.ChartData{
		Type:  chartType,
		Title: header,
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

	ctx := fmt.Sprintf("group_by group=%s agg=%s groups=%d", intent.GroupField, intent.Agg, len(groups))
	return structuralResult(b.String(), ctx, chart)
}
