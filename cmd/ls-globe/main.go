// Command ls-globe is a terminal globe for browsing an academic directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-globe/internal/config"
	"github.com/litescript/ls-globe/internal/engine"
	"github.com/litescript/ls-globe/internal/feed"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/metrics"
	"github.com/litescript/ls-globe/internal/render"
	"github.com/litescript/ls-globe/internal/report"
	"github.com/litescript/ls-globe/internal/state"
	"github.com/litescript/ls-globe/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	snapshotPath  string
	eventsMode    bool
	frameMode     bool
	watchInterval time.Duration
)

const (
	minRefresh = 10 * time.Second
	maxRefresh = 24 * time.Hour

	// headless frame size when stdout is not a terminal
	defaultFrameWidth  = 100
	defaultFrameHeight = 32
)

func main() {
	os.Exit(run())
}

// run executes the command and returns its exit code. Deferred cleanup,
// such as closing the log file, runs before main exits.
func run() int {
	configPath := flag.String("config", "", "Path to a YAML config file")
	source := flag.String("source", "", "Academic data source: demo, a JSON file or an http(s) URL")
	refresh := flag.Duration("refresh", 0, "Data refresh interval for file and URL sources (e.g., 1m)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to this file")
	flat := flag.Bool("flat", false, "Start with the flat map instead of the globe")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	flag.BoolVar(&summaryMode, "summary", false, "Print academics grouped by city instead of the TUI")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&eventsMode, "events", false, "Show event log")
	flag.BoolVar(&frameMode, "frame", false, "Print one ASCII frame of the globe")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat headless output at interval (e.g., 30s)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// Explicit flags win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Feed.Source = *source
		case "refresh":
			cfg.Feed.Refresh = *refresh
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-file":
			cfg.Logging.File = *logFile
		case "flat":
			cfg.Globe.Flat = *flat
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := summaryMode || snapshotPath != "" || eventsMode || frameMode || !isTTY
	if !isTTY && !(snapshotPath != "" || eventsMode || frameMode) {
		summaryMode = true
	}

	logger, closeLog, err := setupLogging(cfg, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
		logger.Info("serving metrics on %s/metrics", cfg.Metrics.Addr)
	}

	interval := refreshInterval(cfg)
	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = interval
	stateMgr := state.NewManager(stateCfg)

	fetcher := feed.NewFetcher(
		feed.WithSource(cfg.Feed.Source),
		feed.WithTimeout(cfg.Feed.Timeout),
		feed.WithMetrics(m),
		feed.WithLogger(logger.With("component", "feed")),
	)

	if headless {
		if err := runHeadless(ctx, cfg, fetcher, stateMgr, m, logger, isTTY); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	rend := render.New(render.Options{
		Stars:     cfg.Render.Stars,
		Graticule: cfg.Render.Graticule,
		Daylight:  cfg.Render.Daylight,
		Counts:    cfg.Render.Counts,
	})
	eng, err := engine.New(cfg.ToEngine(), rend,
		engine.WithLogger(logger.With("component", "engine")),
		engine.WithMetrics(m),
		engine.OnFatal(func(err error) {
			logger.Error("globe disabled: %v", err)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	model := ui.New(stateMgr, eng, rend, ui.Options{
		FrameInterval: cfg.FrameInterval(),
		Logger:        logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())

	go fetcher.Poll(ctx, interval, func(r feed.Result) {
		stateMgr.Update(r.Points, r.Dropped, r.Source, r.Duration, r.Error)
		if r.Error != nil {
			p.Send(ui.ErrorMsg{Error: r.Error})
			return
		}
		p.Send(ui.DataUpdateMsg{Snapshot: stateMgr.Snapshot()})
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}
	return 0
}

// refreshInterval returns how often to refetch. The embedded demo never
// changes, so it is loaded once.
func refreshInterval(cfg *config.Config) time.Duration {
	if feed.KindOf(cfg.Feed.Source) == feed.KindDemo || cfg.Feed.Refresh <= 0 {
		return 0
	}
	return min(max(cfg.Feed.Refresh, minRefresh), maxRefresh)
}

// setupLogging builds the logger. The TUI owns the terminal, so without a
// log file it logs nowhere.
func setupLogging(cfg *config.Config, headless bool) (*logging.Logger, func(), error) {
	if cfg.Logging.File == "" && !headless {
		return logging.Discard(), func() {}, nil
	}

	logger := logging.New(cfg.LogLevel())
	logger.SetFormat(cfg.LogFormat())
	if cfg.Logging.File == "" {
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(ctx context.Context, cfg *config.Config, fetcher *feed.Fetcher, stateMgr *state.Manager, m *metrics.Metrics, logger *logging.Logger, isTTY bool) error {
	if frameMode {
		return runFrames(ctx, cfg, fetcher, m, logger, isTTY)
	}

	outputOnce := func() error {
		result := fetcher.Fetch(ctx)
		stateMgr.Update(result.Points, result.Dropped, result.Source, result.Duration, result.Error)
		if result.Error != nil {
			return result.Error
		}
		snap := stateMgr.Snapshot()

		if snapshotPath != "" {
			if err := writeSnapshot(snap); err != nil {
				return err
			}
		}
		if summaryMode {
			report.WriteSummaryTable(os.Stdout, snap)
		}
		if eventsMode {
			fmt.Println()
			report.WriteEvents(os.Stdout, snap.Events, 10)
		}
		return nil
	}

	if watchInterval == 0 {
		return outputOnce()
	}

	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Println()
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

func writeSnapshot(snap state.Snapshot) error {
	export := report.ExportSnapshot(snap)
	if snapshotPath == "-" {
		if err := export.WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}
	f, err := os.Create(snapshotPath)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	if err := export.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}

// runFrames prints globe frames to stdout: one frame, or one per watch
// interval while the feed keeps polling.
func runFrames(ctx context.Context, cfg *config.Config, fetcher *feed.Fetcher, m *metrics.Metrics, logger *logging.Logger, isTTY bool) error {
	width, height := defaultFrameWidth, defaultFrameHeight
	if isTTY {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h-1
		}
	}

	engCfg := cfg.ToEngine()
	engCfg.IntroDuration = 0
	rend := render.New(render.Options{
		Stars:     cfg.Render.Stars,
		Graticule: cfg.Render.Graticule,
		Daylight:  cfg.Render.Daylight,
		Counts:    cfg.Render.Counts,
		Plain:     !isTTY,
		Out:       os.Stdout,
	})
	eng, err := engine.New(engCfg, rend, engine.WithLogger(logger), engine.WithMetrics(m))
	if err != nil {
		return err
	}
	eng.Resize(float64(width), float64(height))

	if watchInterval == 0 {
		result := fetcher.Fetch(ctx)
		if result.Error != nil {
			return result.Error
		}
		eng.SetData(result.Points)
		if _, ok := eng.Start(); !ok {
			return eng.Err()
		}
		if _, ok := eng.Tick(time.Now()); !ok {
			return eng.Err()
		}
		return nil
	}

	inputs := make(chan engine.Input, 4)
	go fetcher.Poll(ctx, refreshInterval(cfg), func(r feed.Result) {
		if r.Error != nil {
			return
		}
		select {
		case inputs <- engine.Input{Kind: engine.InputData, Points: r.Points}:
		case <-ctx.Done():
		}
	})

	err = eng.Run(ctx, watchInterval, inputs)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
