package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Question labels carried in the "question" header.
const (
	QuestionHealth   = "population_health"
	QuestionEconomic = "economic_impact"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes each ranking of a report as one message on the report topic.
// It implements pipeline.Presenter.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchFlushInterval,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

func (w *Writer) Name() string { return "kafka" }

// Present publishes all six rankings in a single WriteMessages call.
func (w *Writer) Present(ctx context.Context, report domain.Report) error {
	msgs, err := reportToMessages(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	w.metrics.MessagesPublished.Add(float64(len(msgs)))
	w.logger.Info("report published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// RankingMessage is the JSON value of a published ranking.
type RankingMessage struct {
	Question    string               `json:"question"`
	Metric      domain.Metric        `json:"metric"`
	Title       string               `json:"title"`
	Source      string               `json:"source"`
	GeneratedAt time.Time            `json:"generated_at"`
	Values      []domain.RankedValue `json:"values"`
}

func reportToMessages(report domain.Report) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(report.Health)+len(report.Economic))
	for _, group := range []struct {
		question string
		rankings []domain.Ranking
	}{
		{QuestionHealth, report.Health},
		{QuestionEconomic, report.Economic},
	} {
		for _, rk := range group.rankings {
			msg, err := serializeToMessage(report, group.question, rk)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// serializeToMessage marshals one ranking into a Kafka message keyed by metric.
func serializeToMessage(report domain.Report, question string, rk domain.Ranking) (kafkago.Message, error) {
	data, err := json.Marshal(RankingMessage{
		Question:    question,
		Metric:      rk.Metric,
		Title:       rk.Title,
		Source:      report.Source,
		GeneratedAt: report.GeneratedAt,
		Values:      rk.Values,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize ranking %s: %w", rk.Metric, err)
	}
	return kafkago.Message{
		Key:   []byte(rk.Metric),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "question", Value: []byte(question)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
