// Command validate checks a stormreport JSON report against the dataset it was
// built from. It re-reads and re-aggregates the dataset, then verifies record
// counts, ranking order and length, ranked values, and composite totals.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data data/StormData.csv.bz2 \
//	  -report report.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/reportfile"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// recomputed is the validator's own view of the dataset.
type recomputed struct {
	stats     domain.RunStats
	summaries map[string]domain.EventSummary
}

func main() {
	dataPath := flag.String("data", "", "path to the dataset the report was built from")
	reportPath := flag.String("report", "", "path to the JSON report written by stormreport --out")
	flag.Parse()

	if *dataPath == "" || *reportPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, os.Stderr, *dataPath, *reportPath); code != 0 {
		os.Exit(code)
	}
}

func run(w, errw io.Writer, dataPath, reportPath string) int {
	fmt.Fprintln(w, "=== Storm Impact Report Validation ===")
	fmt.Fprintln(w)

	data, err := recompute(context.Background(), dataPath)
	if err != nil {
		fmt.Fprintf(errw, "FATAL: load dataset: %v\n", err)
		return 1
	}

	report, err := reportfile.Read(reportPath)
	if err != nil {
		fmt.Fprintf(errw, "FATAL: load report: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCounts(report, data),
		validateShape(report),
		validateOrder(report, len(data.summaries)),
		validateValues(report, data),
		validateComposites(report, data),
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d read, %d aggregated, %d skipped, %d event types\n",
		data.stats.RecordsRead, data.stats.RecordsAggregated, data.stats.RecordsSkipped, len(data.summaries))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func recompute(ctx context.Context, path string) (recomputed, error) {
	src, err := csvfile.Open(path)
	if err != nil {
		return recomputed{}, err
	}
	defer src.Close()

	var stats domain.RunStats
	agg := domain.NewAggregator()
	for {
		raw, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return recomputed{}, err
		}
		stats.RecordsRead++

		rec, err := domain.ParseRawRecord(raw)
		if err != nil {
			stats.RecordsSkipped++
			continue
		}
		agg.Add(rec)
		stats.RecordsAggregated++
	}

	summaries := agg.Summaries()
	byType := make(map[string]domain.EventSummary, len(summaries))
	for _, s := range summaries {
		byType[s.EventType] = s
	}
	return recomputed{stats: stats, summaries: byType}, nil
}

// ── Phase 1: Record counts ──

func validateCounts(report domain.Report, data recomputed) *phase {
	p := &phase{name: "Phase 1: Record Counts"}

	if report.RecordsRead != data.stats.RecordsRead {
		p.errorf("records_read: report=%d, dataset=%d", report.RecordsRead, data.stats.RecordsRead)
	}
	if report.RecordsAggregated != data.stats.RecordsAggregated {
		p.errorf("records_aggregated: report=%d, dataset=%d", report.RecordsAggregated, data.stats.RecordsAggregated)
	}
	if report.RecordsSkipped != data.stats.RecordsSkipped {
		p.errorf("records_skipped: report=%d, dataset=%d", report.RecordsSkipped, data.stats.RecordsSkipped)
	}
	if report.EventTypes != len(data.summaries) {
		p.errorf("event_types: report=%d, dataset=%d", report.EventTypes, len(data.summaries))
	}
	if report.RecordsRead != report.RecordsAggregated+report.RecordsSkipped {
		p.errorf("records_read %d != aggregated %d + skipped %d",
			report.RecordsRead, report.RecordsAggregated, report.RecordsSkipped)
	}
	return p
}

// ── Phase 2: Report shape ──

func validateShape(report domain.Report) *phase {
	p := &phase{name: "Phase 2: Report Shape"}

	checkGroup(p, "health", report.Health, domain.HealthMetrics)
	checkGroup(p, "economic", report.Economic, domain.EconomicMetrics)
	if report.TopN <= 0 {
		p.errorf("top_n is %d", report.TopN)
	}
	if report.GeneratedAt.IsZero() {
		p.errorf("generated_at is zero")
	}
	return p
}

func checkGroup(p *phase, group string, rankings []domain.Ranking, want []domain.Metric) {
	if len(rankings) != len(want) {
		p.errorf("%s: %d rankings, want %d", group, len(rankings), len(want))
		return
	}
	for i, m := range want {
		if rankings[i].Metric != m {
			p.errorf("%s[%d]: metric %q, want %q", group, i, rankings[i].Metric, m)
		}
	}
}

// ── Phase 3: Ranking order ──

func validateOrder(report domain.Report, eventTypes int) *phase {
	p := &phase{name: "Phase 3: Ranking Order and Length"}

	wantLen := min(report.TopN, eventTypes)
	for _, rk := range report.Rankings() {
		if len(rk.Values) != wantLen {
			p.errorf("%s: %d values, want %d", rk.Metric, len(rk.Values), wantLen)
		}
		seen := make(map[string]bool, len(rk.Values))
		for i, v := range rk.Values {
			if seen[v.EventType] {
				p.errorf("%s: event type %q ranked twice", rk.Metric, v.EventType)
			}
			seen[v.EventType] = true
			if i > 0 && v.Value > rk.Values[i-1].Value {
				p.errorf("%s[%d]: %g ranked below %g", rk.Metric, i, v.Value, rk.Values[i-1].Value)
			}
		}
	}
	return p
}

// ── Phase 4: Ranked values ──

func validateValues(report domain.Report, data recomputed) *phase {
	p := &phase{name: "Phase 4: Ranked Values vs Dataset"}

	for _, rk := range report.Rankings() {
		for i, v := range rk.Values {
			s, ok := data.summaries[v.EventType]
			if !ok {
				p.errorf("%s[%d]: event type %q not in dataset", rk.Metric, i, v.EventType)
				continue
			}
			if want := rk.Metric.Value(s); !floatEq(v.Value, want) {
				p.errorf("%s[%d] %q: report=%g, dataset=%g", rk.Metric, i, v.EventType, v.Value, want)
			}
		}

		// Anything left out must not outrank the last entry.
		if len(rk.Values) == 0 {
			continue
		}
		floor := rk.Values[len(rk.Values)-1].Value
		ranked := make(map[string]bool, len(rk.Values))
		for _, v := range rk.Values {
			ranked[v.EventType] = true
		}
		for et, s := range data.summaries {
			if !ranked[et] && rk.Metric.Value(s) > floor {
				p.errorf("%s: %q (%g) missing from ranking with floor %g", rk.Metric, et, rk.Metric.Value(s), floor)
			}
		}
	}
	return p
}

// ── Phase 5: Composite totals ──

func validateComposites(report domain.Report, data recomputed) *phase {
	p := &phase{name: "Phase 5: Composite Totals"}

	for et, s := range data.summaries {
		if !floatEq(s.TotalHealthImpact, s.TotalFatalities+s.TotalInjuries) {
			p.errorf("%q: health impact %g != fatalities %g + injuries %g",
				et, s.TotalHealthImpact, s.TotalFatalities, s.TotalInjuries)
		}
		if !floatEq(s.TotalEconomicImpact, s.TotalPropertyDamage+s.TotalCropDamage) {
			p.errorf("%q: economic impact %g != property %g + crop %g",
				et, s.TotalEconomicImpact, s.TotalPropertyDamage, s.TotalCropDamage)
		}
	}

	checkCompositeRanking(p, report, data, domain.MetricHealthImpact, domain.MetricFatalities, domain.MetricInjuries)
	checkCompositeRanking(p, report, data, domain.MetricEconomicImpact, domain.MetricPropertyDamage, domain.MetricCropDamage)
	return p
}

func checkCompositeRanking(p *phase, report domain.Report, data recomputed, total, a, b domain.Metric) {
	rk, ok := report.Ranking(total)
	if !ok {
		return
	}
	for i, v := range rk.Values {
		s, ok := data.summaries[v.EventType]
		if !ok {
			continue
		}
		if sum := a.Value(s) + b.Value(s); !floatEq(v.Value, sum) {
			p.errorf("%s[%d] %q: %g != %s + %s = %g", total, i, v.EventType, v.Value, a, b, sum)
		}
	}
}

// ── Helpers ──

// floatEq compares with a relative tolerance; damage totals reach 1e11.
func floatEq(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff < 1e-9 {
		return true
	}
	return diff <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
