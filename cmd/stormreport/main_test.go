package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePath = filepath.Join("..", "..", "internal", "adapter", "csvfile", "testdata", "storm_sample.csv.bz2")

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	o := &options{}
	cmd := newRootCmd(o)
	require.NoError(t, cmd.ParseFlags([]string{"--top", "5", "--strict", "--out", "r.json"}))

	cfg := &config.Config{
		DataPath: "env.csv",
		DataURL:  "https://example.com/env.csv",
		TopN:     10,
	}
	applyFlags(cmd.Flags(), o, cfg)

	assert.Equal(t, "env.csv", cfg.DataPath)
	assert.Equal(t, "https://example.com/env.csv", cfg.DataURL)
	assert.Equal(t, 5, cfg.TopN)
	assert.True(t, cfg.StrictValidation)
	assert.Equal(t, "r.json", cfg.ReportOut)
}

func TestApplyFlags_EmptyURLDisablesDownload(t *testing.T) {
	o := &options{}
	cmd := newRootCmd(o)
	require.NoError(t, cmd.ParseFlags([]string{"--url", ""}))

	cfg := &config.Config{DataURL: config.DefaultDataURL}
	applyFlags(cmd.Flags(), o, cfg)

	assert.Empty(t, cfg.DataURL)
}

func TestRootCmd_RejectsInvalidTop(t *testing.T) {
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"--data", samplePath, "--top", "0"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOP_N")
}

func TestRootCmd_RendersAndWritesReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	t.Setenv("LOG_LEVEL", "error")

	var stdout bytes.Buffer
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"--data", samplePath, "--url", "", "--top", "3", "--out", out})
	cmd.SetOut(&stdout)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "EXCESSIVE HEAT")
	assert.Contains(t, stdout.String(), "HURRICANE/TYPHOON")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 3, report.TopN)
	assert.Equal(t, 10, report.RecordsRead)
	assert.Equal(t, 1, report.RecordsSkipped)

	econ, ok := report.Ranking(domain.MetricEconomicImpact)
	require.True(t, ok)
	require.Len(t, econ.Values, 3)
	assert.Equal(t, "HURRICANE/TYPHOON", econ.Values[0].EventType)
}

type fakeServer struct {
	startErr error
	stopped  chan struct{}
	shutdown atomic.Bool
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{startErr: startErr, stopped: make(chan struct{})}
}

func (f *fakeServer) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(_ context.Context) error {
	if f.shutdown.CompareAndSwap(false, true) {
		close(f.stopped)
	}
	return nil
}

type fakeRunner struct {
	err error
}

func (f fakeRunner) Run(_ context.Context) (domain.Report, error) {
	return domain.Report{}, f.err
}

func TestServeReport_ReturnsWhenServerFailsToStart(t *testing.T) {
	srv := newFakeServer(errors.New("listen tcp :8080: bind: address already in use"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := serveReport(ctx, srv, fakeRunner{}, slog.Default(), ":8080", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.NoError(t, ctx.Err(), "should return before the context ends")
	assert.True(t, srv.shutdown.Load())
}

func TestServeReport_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer(nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := serveReport(ctx, srv, fakeRunner{}, slog.Default(), ":0", time.Second)
	require.NoError(t, err)
	assert.True(t, srv.shutdown.Load())
}

func TestServeReport_RunErrorStopsServer(t *testing.T) {
	srv := newFakeServer(nil)

	err := serveReport(context.Background(), srv, fakeRunner{err: errors.New("read record: boom")}, slog.Default(), ":0", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, srv.shutdown.Load())
}
