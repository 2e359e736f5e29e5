package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
)

// maxSkipWarnings caps per-record WARN logs; later skips are logged at DEBUG.
const maxSkipWarnings = 10

// RecordSource yields raw dataset rows. Next returns io.EOF after the last row.
type RecordSource interface {
	Next(ctx context.Context) (domain.RawRecord, error)
}

// Presenter consumes a finished report (charts, files, topics).
type Presenter interface {
	Name() string
	Present(ctx context.Context, report domain.Report) error
}

// Options tune a single run.
type Options struct {
	Source string // dataset path recorded in the report
	TopN   int
	Strict bool // abort on the first malformed record instead of skipping it
}

// Pipeline runs the load-aggregate-present sequence once.
type Pipeline struct {
	source     RecordSource
	presenters []Presenter
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options
	report     atomic.Pointer[domain.Report]
}

// New creates a Pipeline reading from source and handing the report to each
// presenter in order.
func New(source RecordSource, presenters []Presenter, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		source:     source,
		presenters: presenters,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
	}
}

// CheckReadiness returns nil once a report has been built.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.report.Load() == nil {
		return errors.New("report has not been built yet")
	}
	return nil
}

// Report returns the last built report, if any.
func (p *Pipeline) Report() (domain.Report, bool) {
	r := p.report.Load()
	if r == nil {
		return domain.Report{}, false
	}
	return *r, true
}

// Run reads every record, aggregates, builds the report and presents it.
// Malformed records are skipped unless Options.Strict is set.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	p.logger.Info("report run started", "source", p.opts.Source, "top_n", p.opts.TopN, "strict", p.opts.Strict)

	summaries, stats, err := p.aggregate(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	if stats.RecordsSkipped > 0 {
		p.logger.Warn("malformed records skipped", "count", stats.RecordsSkipped, "read", stats.RecordsRead)
	}
	if len(summaries) == 0 {
		p.logger.Warn("dataset produced no event summaries", "source", p.opts.Source)
	}

	report := domain.BuildReport(p.opts.Source, summaries, stats, p.opts.TopN)
	p.report.Store(&report)
	p.metrics.EventTypes.Set(float64(report.EventTypes))
	p.metrics.ReportReady.Set(1)

	p.logger.Info("report built",
		"records_read", stats.RecordsRead,
		"records_aggregated", stats.RecordsAggregated,
		"records_skipped", stats.RecordsSkipped,
		"event_types", report.EventTypes,
	)

	for _, pr := range p.presenters {
		if err := pr.Present(ctx, report); err != nil {
			p.metrics.PresenterErrors.WithLabelValues(pr.Name()).Inc()
			return report, fmt.Errorf("present %s: %w", pr.Name(), err)
		}
		p.logger.Debug("report presented", "presenter", pr.Name())
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

// aggregate folds the whole source into event summaries in a single pass.
func (p *Pipeline) aggregate(ctx context.Context) ([]domain.EventSummary, domain.RunStats, error) {
	agg := domain.NewAggregator()
	var stats domain.RunStats

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		raw, err := p.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read record: %w", err)
		}
		stats.RecordsRead++
		p.metrics.RecordsRead.Inc()

		rec, err := domain.ParseRawRecord(raw)
		if err != nil {
			if p.opts.Strict {
				return nil, stats, fmt.Errorf("strict validation: %w", err)
			}
			stats.RecordsSkipped++
			p.metrics.RecordsSkipped.Inc()
			p.logSkip(ctx, stats.RecordsSkipped, raw, err)
			continue
		}

		agg.Add(rec)
		stats.RecordsAggregated++
		p.metrics.RecordsAggregated.Inc()
	}

	return agg.Summaries(), stats, nil
}

func (p *Pipeline) logSkip(ctx context.Context, n int, raw domain.RawRecord, err error) {
	level := slog.LevelWarn
	if n > maxSkipWarnings {
		level = slog.LevelDebug
	}
	p.logger.Log(ctx, level, "skipping malformed record",
		"line", raw.Line,
		"event_type", raw.EventType,
		"error", err,
	)
}
