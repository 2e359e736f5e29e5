package domain

import "time"

// Dataset column names required by the report.
const (
	ColEventType  = "EVTYPE"
	ColFatalities = "FATALITIES"
	ColInjuries   = "INJURIES"
	ColPropDmg    = "PROPDMG"
	ColPropDmgExp = "PROPDMGEXP"
	ColCropDmg    = "CROPDMG"
	ColCropDmgExp = "CROPDMGEXP"
)

// RequiredColumns lists the columns a dataset must carry, in report order.
var RequiredColumns = []string{
	ColEventType,
	ColFatalities,
	ColInjuries,
	ColPropDmg,
	ColPropDmgExp,
	ColCropDmg,
	ColCropDmgExp,
}

// RawRecord is one dataset row as read from the source, before any parsing.
type RawRecord struct {
	EventType  string `json:"EVTYPE"`
	Fatalities string `json:"FATALITIES"`
	Injuries   string `json:"INJURIES"`
	PropDmg    string `json:"PROPDMG"`
	PropDmgExp string `json:"PROPDMGEXP"`
	CropDmg    string `json:"CROPDMG"`
	CropDmgExp string `json:"CROPDMGEXP"`

	Line int `json:"-"` // 1-based line in the source file, 0 if unknown
}

// EventRecord is a parsed, validated weather-event row.
type EventRecord struct {
	EventType                  string
	Fatalities                 float64
	Injuries                   float64
	PropertyDamageAmount       float64
	PropertyDamageExponentCode string
	CropDamageAmount           float64
	CropDamageExponentCode     string
}

// PropertyDamage returns the decoded property loss in dollars.
func (r EventRecord) PropertyDamage() float64 {
	return DecodeAmount(r.PropertyDamageAmount, r.PropertyDamageExponentCode)
}

// CropDamage returns the decoded crop loss in dollars.
func (r EventRecord) CropDamage() float64 {
	return DecodeAmount(r.CropDamageAmount, r.CropDamageExponentCode)
}

// EventSummary aggregates health and economic impact for one event type.
type EventSummary struct {
	EventType           string  `json:"event_type"`
	TotalFatalities     float64 `json:"total_fatalities"`
	TotalInjuries       float64 `json:"total_injuries"`
	TotalHealthImpact   float64 `json:"total_health_impact"`
	TotalPropertyDamage float64 `json:"total_property_damage"`
	TotalCropDamage     float64 `json:"total_crop_damage"`
	TotalEconomicImpact float64 `json:"total_economic_impact"`
}

// RankedValue pairs an event type with the metric value it was ranked by.
type RankedValue struct {
	EventType string  `json:"event_type"`
	Value     float64 `json:"value"`
}

// Ranking is an ordered top-N list for a single metric.
type Ranking struct {
	Metric Metric        `json:"metric"`
	Title  string        `json:"title"`
	Values []RankedValue `json:"values"`
}

// RunStats counts what happened to the input rows during a run.
type RunStats struct {
	RecordsRead       int `json:"records_read"`
	RecordsAggregated int `json:"records_aggregated"`
	RecordsSkipped    int `json:"records_skipped"`
}

// Report answers the two fixed questions of the analysis.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	RunStats
	EventTypes int       `json:"event_types"`
	TopN       int       `json:"top_n"`
	Health     []Ranking `json:"health"`
	Economic   []Ranking `json:"economic"`
}

// Rankings returns every ranking in the report, health first.
func (r Report) Rankings() []Ranking {
	out := make([]Ranking, 0, len(r.Health)+len(r.Economic))
	out = append(out, r.Health...)
	return append(out, r.Economic...)
}

// Ranking looks up a ranking by metric.
func (r Report) Ranking(m Metric) (Ranking, bool) {
	for _, rk := range r.Rankings() {
		if rk.Metric == m {
			return rk, true
		}
	}
	return Ranking{}, false
}
