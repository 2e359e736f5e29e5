package domain

import (
	"fmt"
	"sort"
)

// Metric names a summary field that can be ranked.
type Metric string

const (
	MetricFatalities     Metric = "fatalities"
	MetricInjuries       Metric = "injuries"
	MetricHealthImpact   Metric = "health_impact"
	MetricPropertyDamage Metric = "property_damage"
	MetricCropDamage     Metric = "crop_damage"
	MetricEconomicImpact Metric = "economic_impact"
)

// HealthMetrics and EconomicMetrics are the rankings for each question.
var (
	HealthMetrics   = []Metric{MetricFatalities, MetricInjuries, MetricHealthImpact}
	EconomicMetrics = []Metric{MetricPropertyDamage, MetricCropDamage, MetricEconomicImpact}
)

var metricTitles = map[Metric]string{
	MetricFatalities:     "Fatalities",
	MetricInjuries:       "Injuries",
	MetricHealthImpact:   "Fatalities + Injuries",
	MetricPropertyDamage: "Property Damage (USD)",
	MetricCropDamage:     "Crop Damage (USD)",
	MetricEconomicImpact: "Property + Crop Damage (USD)",
}

// ParseMetric validates a metric name.
func ParseMetric(name string) (Metric, error) {
	m := Metric(name)
	if _, ok := metricTitles[m]; !ok {
		return "", fmt.Errorf("unknown metric %q", name)
	}
	return m, nil
}

// Title returns a human-readable label for charts.
func (m Metric) Title() string {
	if t, ok := metricTitles[m]; ok {
		return t
	}
	return string(m)
}

// Value extracts the metric from a summary. Unknown metrics yield 0.
func (m Metric) Value(s EventSummary) float64 {
	switch m {
	case MetricFatalities:
		return s.TotalFatalities
	case MetricInjuries:
		return s.TotalInjuries
	case MetricHealthImpact:
		return s.TotalHealthImpact
	case MetricPropertyDamage:
		return s.TotalPropertyDamage
	case MetricCropDamage:
		return s.TotalCropDamage
	case MetricEconomicImpact:
		return s.TotalEconomicImpact
	default:
		return 0
	}
}

// TopN returns at most n event types ordered by the metric, largest first.
// Ties keep the order of the input summaries.
func TopN(summaries []EventSummary, m Metric, n int) []RankedValue {
	if n <= 0 || len(summaries) == 0 {
		return []RankedValue{}
	}

	ranked := make([]RankedValue, len(summaries))
	for i, s := range summaries {
		ranked[i] = RankedValue{EventType: s.EventType, Value: m.Value(s)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
