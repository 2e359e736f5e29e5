// Command stormreport ranks NOAA storm event types by their harm to population
// health and by their economic consequences.
//
// Configuration comes from the environment; flags override it:
//
//	stormreport --data data/StormData.csv.bz2 --top 10 --out report.json --serve
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/chart"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/storm-impact-report/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-impact-report/internal/adapter/kafka"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/noaa"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/reportfile"
	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
	"github.com/couchcryptid/storm-impact-report/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds flag values; only flags set on the command line override config.
type options struct {
	dataPath string
	dataURL  string
	topN     int
	out      string
	strict   bool
	serve    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := 0
	if err := newRootCmd(&options{}).ExecuteContext(ctx); err != nil {
		slog.Error("stormreport failed", "error", err)
		code = 1
	}
	stop()
	os.Exit(code)
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stormreport",
		Short:         "Rank storm event types by health and economic impact",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.dataPath, "data", "", "path to the cached dataset (.csv or .csv.bz2); overrides DATA_PATH")
	f.StringVar(&o.dataURL, "url", "", "download URL used when the dataset is not cached; overrides DATA_URL")
	f.IntVar(&o.topN, "top", 0, "number of event types per ranking; overrides TOP_N")
	f.StringVar(&o.out, "out", "", "write the report as JSON to this path; overrides REPORT_OUT")
	f.BoolVar(&o.strict, "strict", false, "abort on the first malformed record; overrides STRICT_VALIDATION")
	f.BoolVar(&o.serve, "serve", false, "keep serving the report over HTTP on HTTP_ADDR until interrupted")
	return cmd
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(flags *pflag.FlagSet, o *options, cfg *config.Config) {
	if flags.Changed("data") {
		cfg.DataPath = o.dataPath
	}
	if flags.Changed("url") {
		cfg.DataURL = o.dataURL
	}
	if flags.Changed("top") {
		cfg.TopN = o.topN
	}
	if flags.Changed("out") {
		cfg.ReportOut = o.out
	}
	if flags.Changed("strict") {
		cfg.StrictValidation = o.strict
	}
}

func run(ctx context.Context, cmd *cobra.Command, o *options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd.Flags(), o, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fetcher := noaa.NewFetcher(cfg.DownloadTimeout, logger, metrics)
	if err := fetcher.EnsureCached(ctx, cfg.DataURL, cfg.DataPath); err != nil {
		return fmt.Errorf("acquire dataset: %w", err)
	}

	source, err := csvfile.Open(cfg.DataPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Error("dataset close error", "error", err)
		}
	}()

	presenters := []pipeline.Presenter{chart.NewRenderer(cmd.OutOrStdout(), chart.DefaultBarWidth)}
	if cfg.ReportOut != "" {
		presenters = append(presenters, reportfile.NewWriter(cfg.ReportOut, logger))
	}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		presenters = append(presenters, writer)
		logger.Info("kafka publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	}

	p := pipeline.New(source, presenters, logger, metrics, pipeline.Options{
		Source: cfg.DataPath,
		TopN:   cfg.TopN,
		Strict: cfg.StrictValidation,
	})

	if !o.serve {
		_, err := p.Run(ctx)
		return err
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	return serveReport(ctx, srv, p, logger, cfg.HTTPAddr, cfg.ShutdownTimeout)
}

type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type reportRunner interface {
	Run(ctx context.Context) (domain.Report, error)
}

// serveReport builds the report while srv is already answering probes, then
// serves until ctx ends or the server stops on its own.
func serveReport(ctx context.Context, srv httpServer, p reportRunner, logger *slog.Logger, addr string, shutdownTimeout time.Duration) error {
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	_, err := p.Run(ctx)
	if err == nil {
		logger.Info("serving report", "addr", addr)
		select {
		case <-ctx.Done():
		case serr := <-srvErr:
			logger.Error("http server error", "error", serr)
			err = fmt.Errorf("http server: %w", serr)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("http server shutdown error", "error", serr)
	}
	logger.Info("shutdown complete")
	return err
}
