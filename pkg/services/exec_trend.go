package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// stableBandRatio is the dead-band for the direction-of-change summary:
// first-to-last bucket changes within +/-5% read as flat.
const stableBandRatio = 0.05

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// bucketKey maps a raw time cell to its bucket label, or "" when the cell
// carries no usable date.
func bucketKey(raw string, bucket models.TimeBucket) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	switch bucket {
	case models.BucketMonth:
		// ISO date prefix: "2016-03-14" buckets as "2016-03".
		if len(s) >= 7 && yearRe.MatchString(s[:4]) {
			return s[:7]
		}
		return ""
	case models.BucketDecade:
		m := yearRe.FindString(s)
		if m == "" {
			return ""
		}
		var year int
		fmt.Sscanf(m, "%d", &year)
		return fmt.Sprintf("%ds", (year/10)*10)
	default:
		return yearRe.FindString(s)
	}
}

func executeTrend(intent models.TrendIntent, rows []models.Row, schema *models.DatasetSchema) *models.QueryResult {
	counting := intent.Agg == models.AggCount || intent.ValueField == ""

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, row := range rows {
		key := bucketKey(row[intent.TimeField], intent.Bucket)
		if key == "" {
			continue
		}
		if counting {
			counts[key]++
			continue
		}
		v, ok := parseNumber(row[intent.ValueField])
		if !ok {
			continue
		}
		sums[key] += v
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		if !counting && counts[k] == 0 {
			continue
		}
		keys = append(keys, k)
	}
	ctx := fmt.Sprintf("trend time=%s value=%s agg=%s bucket=%s buckets=%d", intent.TimeField, intent.ValueField, intent.Agg, intent.Bucket, len(keys))

	if len(keys) == 0 {
		answer := fmt.Sprintf("No usable %s values found to build a trend.", intent.TimeField)
		return structuralResult(answer, ctx, nil)
	}
	sort.Strings(keys)

	yKey := "count"
	if !counting {
		yKey = intent.ValueField
	}
	bucketValue := func(k string) float64 {
		if counting {
			return float64(counts[k])
		}
		if intent.Agg == models.AggAvg {
			return sums[k] / float64(counts[k])
		}
		return sums[k]
	}
	renderValue := func(v float64) string {
		if !counting && intent.Agg == models.AggAvg {
			return formatMean(v)
		}
		return formatNumber(v)
	}

	var measure string
	switch {
	case counting:
		measure = "count"
	default:
		measure = fmt.Sprintf("%s %s", aggLabel(intent.Agg), intent.ValueField)
	}

	var lead string
	if intent.Superlative {
		best := keys[0]
		for _, k := range keys[1:] {
			v, bv := bucketValue(k), bucketValue(best)
			if (intent.WantLowest && v < bv) || (!intent.WantLowest && v > bv) {
				best = k
			}
		}
		extreme := "highest"
		if intent.WantLowest {
			extreme = "lowest"
		}
		lead = fmt.Sprintf("%s had the %s %s (%s).", best, extreme, measure, renderValue(bucketValue(best)))
	} else {
		first, last := bucketValue(keys[0]), bucketValue(keys[len(keys)-1])
		var change float64
		if first != 0 {
			change = (last - first) / math.Abs(first)
		} else {
			change = last - first
		}
		switch {
		case change > stableBandRatio:
			lead = fmt.Sprintf("The %s increased from %s (%s) to %s (%s).", measure, renderValue(first), keys[0], renderValue(last), keys[len(keys)-1])
		case change < -stableBandRatio:
			lead = fmt.Sprintf("The %s decreased from %s (%s) to %s (%s).", measure, renderValue(first), keys[0], renderValue(last), keys[len(keys)-1])
		default:
			lead = fmt.Sprintf("The %s stayed relatively stable between %s and %s.", measure, keys[0], keys[len(keys)-1])
		}
	}

	var b strings.Builder
	b.WriteString(lead)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("\n- %s: %s", k, renderValue(bucketValue(k))))
	}

	chart := &models.ChartData{
		Type:  "line",
		Title: fmt.Sprintf("%s by %s", capitalize(measure), string(intent.Bucket)),
		XKey:  intent.TimeField,
		YKey:  yKey,
		Data:  make([]map[string]any, 0, len(keys)),
	}
	for _, k := range keys {
		chart.Data = append(chart.Data, map[string]any{
			intent.TimeField: k,
			yKey:             bucketValue(k),
		})
	}
	return structuralResult(b.String(), ctx, chart)
}
