package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopN_Scenario(t *testing.T) {
	summaries := Aggregate(scenarioRecords())

	top := TopN(summaries, MetricFatalities, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "Tornado", top[0].EventType)
	assert.Equal(t, 8.0, top[0].Value)

	econ := TopN(summaries, MetricEconomicImpact, 10)
	require.Len(t, econ, 2)
	assert.Equal(t, "Flood", econ[0].EventType)
	assert.Equal(t, 5_000_000_000.0, econ[0].Value)
	assert.Equal(t, "Tornado", econ[1].EventType)
}

func TestTopN_TruncatesAndSortsDescending(t *testing.T) {
	var summaries []EventSummary
	for i := range 15 {
		summaries = append(summaries, EventSummary{
			EventType:       string(rune('A' + i)),
			TotalInjuries:   float64(i),
			TotalFatalities: float64(i % 3),
		})
	}

	top := TopN(summaries, MetricInjuries, 10)
	require.Len(t, top, 10)
	assert.Equal(t, "O", top[0].EventType)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Value, top[i].Value)
	}
}

func TestTopN_TiesKeepGroupOrder(t *testing.T) {
	summaries := []EventSummary{
		{EventType: "HAIL", TotalFatalities: 1},
		{EventType: "WIND", TotalFatalities: 3},
		{EventType: "SNOW", TotalFatalities: 1},
		{EventType: "FOG", TotalFatalities: 1},
	}

	top := TopN(summaries, MetricFatalities, 3)
	assert.Equal(t, []RankedValue{
		{EventType: "WIND", Value: 3},
		{EventType: "HAIL", Value: 1},
		{EventType: "SNOW", Value: 1},
	}, top)
}

func TestTopN_EdgeCases(t *testing.T) {
	summaries := Aggregate(scenarioRecords())

	assert.Empty(t, TopN(summaries, MetricFatalities, 0))
	assert.Empty(t, TopN(summaries, MetricFatalities, -1))
	assert.Empty(t, TopN(nil, MetricFatalities, 10))
	assert.NotNil(t, TopN(nil, MetricFatalities, 10))
}

func TestParseMetric(t *testing.T) {
	for _, m := range append(append([]Metric{}, HealthMetrics...), EconomicMetrics...) {
		got, err := ParseMetric(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.NotEqual(t, string(m), m.Title())
	}

	_, err := ParseMetric("hail_size")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hail_size")
}

func TestMetric_ValueUnknown(t *testing.T) {
	assert.Equal(t, 0.0, Metric("bogus").Value(EventSummary{TotalFatalities: 3}))
}

func TestBuildReport(t *testing.T) {
	fixed := time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	summaries := Aggregate(scenarioRecords())
	stats := RunStats{RecordsRead: 4, RecordsAggregated: 3, RecordsSkipped: 1}

	report := BuildReport("data/StormData.csv.bz2", summaries, stats, 10)

	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, "data/StormData.csv.bz2", report.Source)
	assert.Equal(t, stats, report.RunStats)
	assert.Equal(t, 2, report.EventTypes)
	assert.Equal(t, 10, report.TopN)
	require.Len(t, report.Health, 3)
	require.Len(t, report.Economic, 3)
	assert.Len(t, report.Rankings(), 6)

	fat, ok := report.Ranking(MetricFatalities)
	require.True(t, ok)
	assert.Equal(t, "Tornado", fat.Values[0].EventType)
	assert.Equal(t, "Fatalities", fat.Title)

	health, ok := report.Ranking(MetricHealthImpact)
	require.True(t, ok)
	assert.Equal(t, 20.0, health.Values[0].Value)

	_, ok = report.Ranking(Metric("bogus"))
	assert.False(t, ok)
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport("empty.csv", Aggregate(nil), RunStats{}, 10)

	assert.Equal(t, 0, report.EventTypes)
	for _, rk := range report.Rankings() {
		assert.Empty(t, rk.Values, rk.Metric)
	}
}
