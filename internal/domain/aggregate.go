package domain

// Aggregator folds event records into per-event-type summaries.
// Groups are keyed by exact EventType and kept in first-seen order.
// An Aggregator is not safe for concurrent use.
type Aggregator struct {
	index  map[string]int
	groups []EventSummary
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Add accumulates one record into its event-type group.
func (a *Aggregator) Add(rec EventRecord) {
	i, ok := a.index[rec.EventType]
	if !ok {
		i = len(a.groups)
		a.index[rec.EventType] = i
		a.groups = append(a.groups, EventSummary{EventType: rec.EventType})
	}

	g := &a.groups[i]
	g.TotalFatalities += rec.Fatalities
	g.TotalInjuries += rec.Injuries
	g.TotalPropertyDamage += rec.PropertyDamage()
	g.TotalCropDamage += rec.CropDamage()
}

// Len reports the number of distinct event types seen so far.
func (a *Aggregator) Len() int { return len(a.groups) }

// Summaries returns a copy of the groups with composite totals filled in.
func (a *Aggregator) Summaries() []EventSummary {
	out := make([]EventSummary, len(a.groups))
	for i, g := range a.groups {
		g.TotalHealthImpact = g.TotalFatalities + g.TotalInjuries
		g.TotalEconomicImpact = g.TotalPropertyDamage + g.TotalCropDamage
		out[i] = g
	}
	return out
}

// Aggregate summarizes records in one call.
func Aggregate(records []EventRecord) []EventSummary {
	a := NewAggregator()
	for _, r := range records {
		a.Add(r)
	}
	return a.Summaries()
}
