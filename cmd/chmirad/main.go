package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/chmirad/internal/cadence"
	"github.com/handiism/chmirad/internal/config"
	"github.com/handiism/chmirad/internal/download"
	"github.com/handiism/chmirad/internal/log"
	"github.com/handiism/chmirad/internal/metrics"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailed      = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// defaultWindow is used when neither -start/-end nor -last is given.
const defaultWindow = time.Hour

func main() {
	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

type options struct {
	configPath  string
	product     string
	cache       string
	start       string
	end         string
	last        time.Duration
	step        int
	workers     int
	list        bool
	dryRun      bool
	watch       time.Duration
	verbose     bool
	jsonLog     bool
	metricsFile string
	metricsAddr string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("chmirad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "chmirad - cache CHMI weather radar composites")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  chmirad -product maxz -start 2025-01-07T08:00 -end 2025-01-07T09:00")
		fmt.Fprintln(stderr, "  chmirad -product pseudocappi2km_png -last 3h -step 5")
		fmt.Fprintln(stderr, "  chmirad -last 30m -watch 5m -metrics-addr :9120")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Times without a zone offset are UTC. For interactive mode, use: chmirad-tui")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "Path to config file (JSON, or YAML by extension)")
	fs.StringVar(&o.product, "product", "", "Product id (overrides config; see -list)")
	fs.StringVar(&o.cache, "cache", "", "Cache directory (overrides config)")
	fs.StringVar(&o.start, "start", "", "Range start, RFC 3339 or YYYY-MM-DDTHH:MM (UTC)")
	fs.StringVar(&o.end, "end", "", "Range end, inclusive (default: now)")
	fs.DurationVar(&o.last, "last", 0, "Download the window of this length ending now, e.g. 2h")
	fs.IntVar(&o.step, "step", 0, "Minutes between files (overrides config)")
	fs.IntVar(&o.workers, "workers", 0, "Concurrent downloads (overrides config)")
	fs.BoolVar(&o.list, "list", false, "List known products and exit")
	fs.BoolVar(&o.dryRun, "dry-run", false, "Show what would be downloaded without downloading")
	fs.DurationVar(&o.watch, "watch", 0, "Repeat the -last window at this interval until interrupted")
	fs.BoolVar(&o.verbose, "verbose", false, "Show verbose output")
	fs.BoolVar(&o.jsonLog, "json-log", false, "Log as JSON")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each run")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (watch mode)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.last < 0 || o.watch < 0 {
		return nil, errors.New("-last and -watch must not be negative")
	}
	if o.last > 0 && (o.start != "" || o.end != "") {
		return nil, errors.New("-last cannot be combined with -start/-end")
	}
	if o.watch > 0 && (o.start != "" || o.end != "") {
		return nil, errors.New("-watch needs a window relative to now; use -last")
	}
	return o, nil
}

func loadSettings(o *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if o.configPath != "" {
		var err error
		settings, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if err := settings.LoadFromEnv(); err != nil {
		return nil, err
	}

	// Apply flags
	if o.product != "" {
		settings.Product = o.product
	}
	if o.cache != "" {
		settings.CacheDirectory = o.cache
	}
	if o.step != 0 {
		settings.StepMinutes = o.step
	}
	if o.workers != 0 {
		settings.MaxConcurrentDownloads = o.workers
	}
	if o.metricsFile != "" {
		settings.MetricsFile = o.metricsFile
	}
	if o.verbose {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// window resolves the requested range. "Now" is only ever read here.
func window(o *options, now time.Time) (time.Time, time.Time, error) {
	if o.start == "" && o.end == "" {
		d := o.last
		if d == 0 {
			d = defaultWindow
		}
		start, end := cadence.Window(now, d)
		return start, end, nil
	}

	end := now
	if o.end != "" {
		var err error
		end, err = cadence.ParseInstant(o.end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("-end: %w", err)
		}
	}
	if o.start == "" {
		return time.Time{}, time.Time{}, errors.New("-end needs -start")
	}
	start, err := cadence.ParseInstant(o.start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("-start: %w", err)
	}
	return start, end, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	settings, err := loadSettings(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitUsage
	}

	logger := log.New(log.Config{Level: settings.LogLevel, JSON: o.jsonLog, Output: stderr})
	recorder := metrics.NewRecorder()

	manager, err := download.NewManager(settings, log.ProgressHandler(logger))
	if err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return exitUsage
	}

	if o.list {
		printProducts(stdout, manager)
		return exitOK
	}

	session, err := manager.NewSession(settings.Product, settings.CacheDirectory)
	if err != nil {
		var fsErr *download.FilesystemError
		if errors.As(err, &fsErr) {
			logger.Error().Err(err).Msg("Cannot use cache directory")
			return exitFailed
		}
		logger.Error().Err(err).Msg("Invalid product")
		return exitUsage
	}

	start, end, err := window(o, time.Now())
	if err != nil {
		logger.Error().Err(err).Msg("Invalid range")
		return exitUsage
	}

	if o.dryRun {
		items, err := manager.Plan(session, start, end, settings.StepMinutes)
		if err != nil {
			logger.Error().Err(err).Msg("Invalid range")
			return exitUsage
		}
		printPlan(stdout, items)
		return exitOK
	}

	if o.metricsAddr != "" {
		srv, addr, err := serveMetrics(o.metricsAddr, recorder, logger)
		if err != nil {
			logger.Error().Err(err).Str("addr", o.metricsAddr).Msg("Cannot serve metrics")
			return exitFailed
		}
		logger.Info().Stringer("addr", addr).Msg("Serving metrics")
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	r := &runner{
		manager:  manager,
		session:  session,
		recorder: recorder,
		logger:   logger,
		settings: settings,
	}

	if o.watch == 0 {
		return r.once(ctx, start, end)
	}
	return r.watch(ctx, o.watch, end.Sub(start))
}

type runner struct {
	manager  *download.Manager
	session  *download.Session
	recorder *metrics.Recorder
	logger   zerolog.Logger
	settings *config.Settings
}

func (r *runner) once(ctx context.Context, start, end time.Time) int {
	done := r.recorder.StartRange(r.session.ProductID())
	outcomes, err := r.manager.DownloadRange(ctx, r.session, start, end, r.settings.StepMinutes)
	done()
	if err != nil {
		r.logger.Error().Err(err).Msg("Invalid range")
		return exitUsage
	}
	r.recorder.ObserveAll(outcomes)
	r.writeMetrics()

	stats := download.Summarize(outcomes)
	r.logger.Info().
		Str("product", r.session.ProductID()).
		Int("fetched", stats.Fetched).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Float64("mb", float64(stats.Bytes)/1024/1024).
		Msg("Complete")

	switch {
	case ctx.Err() != nil:
		r.logger.Warn().Msg("Download cancelled")
		return exitInterrupted
	case stats.Failed > 0:
		return exitFailed
	default:
		return exitOK
	}
}

// watch re-runs a window of the same length, ending now, every interval
// until interrupted.
func (r *runner) watch(ctx context.Context, interval, length time.Duration) int {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start, end := cadence.Window(time.Now(), length)
	for {
		if code := r.once(ctx, start, end); code == exitInterrupted {
			return code
		}
		r.logger.Debug().Dur("interval", interval).Msg("Waiting for next run")

		select {
		case <-ctx.Done():
			return exitInterrupted
		case now := <-ticker.C:
			r.manager.ResetProgress()
			start, end = cadence.Window(now, length)
		}
	}
}

func (r *runner) writeMetrics() {
	if r.settings.MetricsFile == "" {
		return
	}
	if err := r.recorder.WriteTextfile(r.settings.MetricsFile); err != nil {
		r.logger.Warn().Err(err).Str("path", r.settings.MetricsFile).Msg("Cannot write metrics file")
	}
}

// serveMetrics binds addr before returning, so a busy port is reported to
// the caller and ":0" yields the chosen address.
func serveMetrics(addr string, recorder *metrics.Recorder, logger zerolog.Logger) (*http.Server, net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
	return srv, ln.Addr(), nil
}

func printProducts(w io.Writer, manager *download.Manager) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range manager.Table().Descriptors() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.RemoteSubPath, d.Description)
	}
	tw.Flush()
}

func printPlan(w io.Writer, items []download.PlannedItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	cached := 0
	for _, it := range items {
		state := "missing"
		if it.Cached {
			state = "cached"
			cached++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Time.Format(time.RFC3339), state, it.RemoteURL)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n[Dry run - %d of %d files cached, not downloading]\n", cached, len(items))
}
