package domain

// BuildReport ranks the summaries for both questions and stamps the report
// with the package clock.
func BuildReport(source string, summaries []EventSummary, stats RunStats, topN int) Report {
	return Report{
		GeneratedAt: clock.Now().UTC(),
		Source:      source,
		RunStats:    stats,
		EventTypes:  len(summaries),
		TopN:        topN,
		Health:      rankAll(summaries, HealthMetrics, topN),
		Economic:    rankAll(summaries, EconomicMetrics, topN),
	}
}

func rankAll(summaries []EventSummary, metrics []Metric, topN int) []Ranking {
	out := make([]Ranking, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, Ranking{
			Metric: m,
			Title:  m.Title(),
			Values: TopN(summaries, m, topN),
		})
	}
	return out
}
