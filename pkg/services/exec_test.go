package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

func TestExecuteTopN(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TopNIntent{N: 3, SortField: "rating"}, rows, schema)
	require.NoError(t, err)

	lines := strings.Split(result.Answer, "\n")
	require.Len(t, lines, 4) // header + 3 rows
	assert.Equal(t, "1. Se7en (rating: 8.6)", lines[1])
	assert.Equal(t, "2. Alien (rating: 8.5)", lines[2])
	assert.Equal(t, "3. Heat (rating: 8.3)", lines[3])

	require.NotNil(t, result.ChartData)
	assert.Equal(t, "bar", result.ChartData.Type)
	require.Len(t, result.ChartData.Data, 3)
	assert.Equal(t, "Se7en", result.ChartData.Data[0]["title"])
	assert.Equal(t, 8.6, result.ChartData.Data[0]["rating"])
}

func TestExecuteTopNAscendingOrderAndTies(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TopNIntent{N: 5, SortField: "rating", Ascending: true}, rows, schema)
	require.NoError(t, err)

	lines := strings.Split(result.Answer, "\n")
	require.Len(t, lines, 6)
	// Jaws and Fargo tie at 8.1; stable sort keeps row order (Jaws first).
	assert.Equal(t, "1. Jaws (rating: 8.1)", lines[1])
	assert.Equal(t, "2. Fargo (rating: 8.1)", lines[2])
}

func TestExecuteTopNWithFilter(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TopNIntent{
		N: 10, SortField: "rating", FilterField: "genre", FilterValue: "Crime",
	}, rows, schema)
	require.NoError(t, err)

	// Only the three Crime rows qualify.
	lines := strings.Split(result.Answer, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Crime")
	assert.Equal(t, "1. Se7en (rating: 8.6)", lines[1])
}

func TestExecuteTopNNoQualifyingRows(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TopNIntent{
		N: 3, SortField: "rating", FilterField: "genre", FilterValue: "Western",
	}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "No records found where genre is Western.", result.Answer)
	assert.Nil(t, result.ChartData)
}

func TestExecuteAggregateAverageExactFormat(t *testing.T) {
	columns := []string{"title", "rating"}
	rows := []models.Row{
		{"title": "a", "rating": "7"},
		{"title": "b", "rating": "8"},
		{"title": "c", "rating": "9"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.AggregateIntent{Agg: models.AggAvg, TargetField: "rating"}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "8.00", result.Answer)
}

func TestExecuteAggregateSkipsMalformedValues(t *testing.T) {
	columns := []string{"title", "rating"}
	rows := []models.Row{
		{"title": "a", "rating": "7"},
		{"title": "b", "rating": "n/a"},
		{"title": "c", "rating": "9"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.AggregateIntent{Agg: models.AggAvg, TargetField: "rating"}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "8.00", result.Answer)
}

func TestExecuteAggregateExtremalRecord(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.AggregateIntent{Agg: models.AggMax, TargetField: "rating", WantRecord: true}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "Se7en has the highest rating (8.6).", result.Answer)

	result, err = Execute(models.AggregateIntent{Agg: models.AggMin, TargetField: "year", WantRecord: true}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "Jaws has the lowest year (1975).", result.Answer)
}

func TestExecuteAggregateCounts(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.AggregateIntent{Agg: models.AggCount}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "The dataset contains 5 rows.", result.Answer)

	result, err = Execute(models.AggregateIntent{Agg: models.AggCountDistinct, TargetField: "genre"}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "genre has 3 distinct values.", result.Answer)
}

func TestExecuteGroupByPartitionSumIdentity(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.GroupByIntent{
		GroupField: "genre", ValueField: "rating", Agg: models.AggSum,
	}, rows, schema)
	require.NoError(t, err)
	require.NotNil(t, result.ChartData)

	var groupTotal float64
	for _, point := range result.ChartData.Data {
		groupTotal += point["rating"].(float64)
	}
	var rowTotal float64
	for _, row := range rows {
		v, ok := parseNumber(row["rating"])
		require.True(t, ok)
		rowTotal += v
	}
	assert.InDelta(t, rowTotal, groupTotal, 1e-9)
}

func TestExecuteGroupByChartTypeByGroupCount(t *testing.T) {
	small := make([]models.Row, 0)
	for i := 0; i < 6; i++ {
		small = append(small, models.Row{"cat": string(rune('a' + i)), "v": "1"})
	}
	schema := BuildSchema([]string{"cat", "v"}, small)
	result, err := Execute(models.GroupByIntent{GroupField: "cat", Agg: models.AggCount}, small, schema)
	require.NoError(t, err)
	assert.Equal(t, "pie", result.ChartData.Type)

	big := make([]models.Row, 0)
	for i := 0; i < 12; i++ {
		big = append(big, models.Row{"cat": string(rune('a' + i)), "v": "1"})
	}
	schema = BuildSchema([]string{"cat", "v"}, big)
	result, err = Execute(models.GroupByIntent{GroupField: "cat", Agg: models.AggCount}, big, schema)
	require.NoError(t, err)
	assert.Equal(t, "bar", result.ChartData.Type)
}

func TestExecuteGroupRank(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.GroupRankIntent{GroupField: "genre", ValueField: "rating"}, rows, schema)
	require.NoError(t, err)
	// Horror: 8.5, Crime: (8.3+8.6+8.1)/3 = 8.33, Thriller: 8.1.
	assert.True(t, strings.HasPrefix(result.Answer, "Horror has the highest average rating (8.50)."), result.Answer)

	result, err = Execute(models.GroupRankIntent{GroupField: "genre", ByCount: true}, rows, schema)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Answer, "The most common genre is Crime (3 records)."), result.Answer)
}

func TestExecuteConditionalCount(t *testing.T) {
	columns, rows := titanicRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.ConditionalCountIntent{Field: "survived", Mode: models.CountBooleanTrue}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "2 of the 5 records have survived = 1.", result.Answer)

	result, err = Execute(models.ConditionalCountIntent{Field: "pclass", Mode: models.CountEquals, Value: "1"}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "Found 2 records where pclass is 1.", result.Answer)

	result, err = Execute(models.ConditionalCountIntent{Field: "age", Mode: models.CountNonEmpty}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "5 of the 5 records have a value for age.", result.Answer)
}

func TestExecuteFilteredAggregate(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.FilteredAggregateIntent{
		Agg: models.AggAvg, TargetField: "rating", FilterField: "genre", FilterValue: "Crime",
	}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "The average rating for Crime is 8.33.", result.Answer)

	result, err = Execute(models.FilteredAggregateIntent{
		Agg: models.AggCount, FilterField: "genre", FilterValue: "Horror",
	}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "Found 1 record where genre is Horror.", result.Answer)

	result, err = Execute(models.FilteredAggregateIntent{
		Agg: models.AggCount, FilterField: "genre", FilterValue: "Western",
	}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "No records found where genre is Western.", result.Answer)
}

func TestExecuteThresholdFilter(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.FilterIntent{Field: "rating", GreaterThan: true, Threshold: 8.2}, rows, schema)
	require.NoError(t, err)
	lines := strings.Split(result.Answer, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Found 3 records where rating is over 8.20:", lines[0])

	result, err = Execute(models.FilterIntent{Field: "rating", GreaterThan: false, Threshold: 1}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "No records found where rating is under 1.", result.Answer)
}

func TestExecuteListAll(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.ListAllIntent{Field: "genre"}, rows, schema)
	require.NoError(t, err)
	assert.Equal(t, "There are 3 distinct genre values:\nCrime, Horror, Thriller", result.Answer)
}

func TestExecuteTrendBuckets(t *testing.T) {
	columns := []string{"title", "year"}
	rows := []models.Row{
		{"title": "a", "year": "2001"},
		{"title": "b", "year": "2001"},
		{"title": "c", "year": "2002"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TrendIntent{
		TimeField: "year", Agg: models.AggCount, Bucket: models.BucketYear,
	}, rows, schema)
	require.NoError(t, err)

	require.NotNil(t, result.ChartData)
	assert.Equal(t, "line", result.ChartData.Type)
	require.Len(t, result.ChartData.Data, 2)
	assert.Equal(t, "2001", result.ChartData.Data[0]["year"])
	assert.Equal(t, 2.0, result.ChartData.Data[0]["count"])
	assert.Equal(t, "2002", result.ChartData.Data[1]["year"])
	assert.Equal(t, 1.0, result.ChartData.Data[1]["count"])
}

func TestExecuteTrendStableDeadBand(t *testing.T) {
	columns := []string{"title", "year", "rating"}
	rows := []models.Row{
		{"title": "a", "year": "2001", "rating": "8.0"},
		{"title": "b", "year": "2002", "rating": "8.2"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TrendIntent{
		TimeField: "year", ValueField: "rating", Agg: models.AggAvg, Bucket: models.BucketYear,
	}, rows, schema)
	require.NoError(t, err)
	// 8.0 -> 8.2 is a 2.5% change, inside the dead-band.
	assert.Contains(t, result.Answer, "stayed relatively stable")
}

func TestExecuteTrendSuperlativeAndDirection(t *testing.T) {
	columns := []string{"title", "year", "gross"}
	rows := []models.Row{
		{"title": "a", "year": "2001", "gross": "100"},
		{"title": "b", "year": "2002", "gross": "300"},
		{"title": "c", "year": "2002", "gross": "200"},
		{"title": "d", "year": "2003", "gross": "150"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TrendIntent{
		TimeField: "year", ValueField: "gross", Agg: models.AggSum,
		Bucket: models.BucketYear, Superlative: true,
	}, rows, schema)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Answer, "2002 had the highest total gross (500)."), result.Answer)

	result, err = Execute(models.TrendIntent{
		TimeField: "year", ValueField: "gross", Agg: models.AggSum, Bucket: models.BucketYear,
	}, rows, schema)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "increased from 100 (2001) to 150 (2003)")
}

func TestExecuteTrendDecadeBuckets(t *testing.T) {
	columns := []string{"title", "year"}
	rows := []models.Row{
		{"title": "a", "year": "1994"},
		{"title": "b", "year": "1997"},
		{"title": "c", "year": "2003"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TrendIntent{
		TimeField: "year", Agg: models.AggCount, Bucket: models.BucketDecade,
	}, rows, schema)
	require.NoError(t, err)
	require.Len(t, result.ChartData.Data, 2)
	assert.Equal(t, "1990s", result.ChartData.Data[0]["year"])
	assert.Equal(t, 2.0, result.ChartData.Data[0]["count"])
	assert.Equal(t, "2000s", result.ChartData.Data[1]["year"])
}

func TestExecuteTrendMonthBuckets(t *testing.T) {
	columns := []string{"id", "date"}
	rows := []models.Row{
		{"id": "1", "date": "2016-03-14"},
		{"id": "2", "date": "2016-03-20"},
		{"id": "3", "date": "2016-04-01"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.TrendIntent{
		TimeField: "date", Agg: models.AggCount, Bucket: models.BucketMonth,
	}, rows, schema)
	require.NoError(t, err)
	require.Len(t, result.ChartData.Data, 2)
	assert.Equal(t, "2016-03", result.ChartData.Data[0]["date"])
	assert.Equal(t, 2.0, result.ChartData.Data[0]["count"])
}

func TestExecuteOutlierFlagsExtremeValue(t *testing.T) {
	columns := []string{"title", "v"}
	rows := []models.Row{
		{"title": "a", "v": "1"},
		{"title": "b", "v": "2"},
		{"title": "c", "v": "3"},
		{"title": "d", "v": "4"},
		{"title": "e", "v": "100"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.OutlierIntent{Field: "v"}, rows, schema)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "e (v: 100)")
	require.NotNil(t, result.ChartData)
	assert.Equal(t, "bar", result.ChartData.Type)
	require.Len(t, result.ChartData.Data, 1)
}

func TestExecuteOutlierIdenticalValuesFlagNothing(t *testing.T) {
	columns := []string{"title", "v"}
	rows := []models.Row{
		{"title": "a", "v": "7"},
		{"title": "b", "v": "7"},
		{"title": "c", "v": "7"},
		{"title": "d", "v": "7"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.OutlierIntent{Field: "v"}, rows, schema)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "No outliers detected in v")
	assert.Nil(t, result.ChartData)
}

func TestExecuteOutlierInsufficientData(t *testing.T) {
	columns := []string{"title", "v"}
	rows := []models.Row{
		{"title": "a", "v": "1"},
		{"title": "b", "v": "2"},
		{"title": "c", "v": "3"},
	}
	schema := BuildSchema(columns, rows)

	result, err := Execute(models.OutlierIntent{Field: "v"}, rows, schema)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "Not enough numeric v values")
	assert.Nil(t, result.ChartData)
}

func TestTruncateChartLabel(t *testing.T) {
	assert.Equal(t, "short", truncateChartLabel("short"))
	assert.Equal(t, "exactly 14 chr", truncateChartLabel("exactly 14 chr"))
	assert.Equal(t, "The Lord of th…", truncateChartLabel("The Lord of the Rings"))
}
