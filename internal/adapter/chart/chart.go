package chart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/dustin/go-humanize"
)

// DefaultBarWidth is the width of the longest bar in a ranking, in cells.
const DefaultBarWidth = 40

// Renderer draws each ranking of a report as a horizontal bar chart.
// It implements pipeline.Presenter.
type Renderer struct {
	w        io.Writer
	barWidth int

	heading lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	bar     lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer creates a Renderer writing to w. Color output is enabled only
// when w is a terminal.
func NewRenderer(w io.Writer, barWidth int) *Renderer {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:        w,
		barWidth: barWidth,
		heading:  lr.NewStyle().Bold(true).Underline(true),
		title:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:    lr.NewStyle(),
		bar:      lr.NewStyle().Foreground(lipgloss.Color("9")),
		muted:    lr.NewStyle().Faint(true),
	}
}

func (r *Renderer) Name() string { return "chart" }

// Present writes the full report in one write call.
func (r *Renderer) Present(_ context.Context, report domain.Report) error {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, r.heading.Render("Storm impact report"))
	fmt.Fprintln(&buf, r.muted.Render(fmt.Sprintf(
		"source %s | %s records read, %s skipped | %d event types | generated %s",
		report.Source,
		humanize.Comma(int64(report.RecordsRead)),
		humanize.Comma(int64(report.RecordsSkipped)),
		report.EventTypes,
		report.GeneratedAt.Format("2006-01-02 15:04 MST"),
	)))

	r.section(&buf, "Which event types are most harmful to population health?", report.Health)
	r.section(&buf, "Which event types have the greatest economic consequences?", report.Economic)

	_, err := r.w.Write(buf.Bytes())
	return err
}

func (r *Renderer) section(buf *bytes.Buffer, question string, rankings []domain.Ranking) {
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, r.heading.Render(question))
	for _, rk := range rankings {
		fmt.Fprintln(buf)
		r.ranking(buf, rk)
	}
}

func (r *Renderer) ranking(buf *bytes.Buffer, rk domain.Ranking) {
	fmt.Fprintln(buf, r.title.Render(rk.Title))
	if len(rk.Values) == 0 {
		fmt.Fprintln(buf, "  "+r.muted.Render("no data"))
		return
	}

	labelWidth := 0
	maxValue := 0.0
	for _, v := range rk.Values {
		labelWidth = max(labelWidth, lipgloss.Width(v.EventType))
		maxValue = math.Max(maxValue, v.Value)
	}

	for _, v := range rk.Values {
		label := v.EventType + strings.Repeat(" ", labelWidth-lipgloss.Width(v.EventType))
		fmt.Fprintf(buf, "  %s %s %s\n",
			r.label.Render(label),
			r.bar.Render(barFor(v.Value, maxValue, r.barWidth)),
			FormatValue(rk.Metric, v.Value),
		)
	}
}

// barFor scales value against maxValue. Non-zero values always get at least
// a sliver so they are distinguishable from zero.
func barFor(value, maxValue float64, width int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(value / maxValue * float64(width)))
	if n == 0 {
		return "▏"
	}
	return strings.Repeat("█", n)
}

// FormatValue renders people counts with thousands separators and dollar
// amounts on the short scale, e.g. "$1.5B".
func FormatValue(m domain.Metric, v float64) string {
	switch m {
	case domain.MetricPropertyDamage, domain.MetricCropDamage, domain.MetricEconomicImpact:
		return formatDollars(v)
	default:
		return humanize.Comma(int64(math.Round(v)))
	}
}

func formatDollars(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.1fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
