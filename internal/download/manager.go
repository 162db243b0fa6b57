package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/handiism/chmirad/internal/cadence"
	"github.com/handiism/chmirad/internal/chmi"
	"github.com/handiism/chmirad/internal/config"
	"github.com/handiism/chmirad/internal/http"
	ioutils "github.com/handiism/chmirad/internal/io"
	"github.com/handiism/chmirad/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("ProgressLevel(%d)", int(l))
	}
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Outcome is set for per-instant events.
	Outcome *Outcome
}

// Transport fetches a URL. A non-2xx status is reported through the status
// code, not the error; err is reserved for failing to get a response.
type Transport interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// Filesystem is the cache directory's storage.
type Filesystem interface {
	Exists(path string) bool
	WriteAtomic(path string, data []byte) error
	EnsureDir(path string) error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithTransport replaces the HTTP client built from settings.
func WithTransport(t Transport) Option {
	return func(m *Manager) { m.transport = t }
}

// WithFilesystem replaces the local disk.
func WithFilesystem(fs Filesystem) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithTable replaces the built-in descriptor table.
func WithTable(t *chmi.Table) Option {
	return func(m *Manager) { m.table = t }
}

// Manager coordinates radar composite downloads.
type Manager struct {
	settings  *config.Settings
	table     *chmi.Table
	locator   *chmi.Locator
	transport Transport
	fs        Filesystem

	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	locator, err := chmi.NewLocator(settings.BaseURL)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		settings:   settings,
		table:      chmi.DefaultTable,
		locator:    locator,
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.transport == nil {
		m.transport = http.NewClient(settings.ToHTTPOptions())
	}
	if m.fs == nil {
		m.fs = ioutils.NewFS()
	}

	return m, nil
}

// Table returns the descriptor table the manager resolves products against.
func (m *Manager) Table() *chmi.Table {
	return m.table
}

// NewSession starts a session on the manager's table and filesystem.
func (m *Manager) NewSession(productID, cacheDir string) (*Session, error) {
	return NewSession(m.table, m.fs, productID, cacheDir)
}

// DownloadOne materializes the session's active product at instant t.
//
// An existing cache file yields Skipped without touching the network. Each
// call issues at most one request; there are no retries.
func (m *Manager) DownloadOne(ctx context.Context, s *Session, t time.Time) Outcome {
	atomic.AddInt32(&m.totalFiles, 1)
	o := m.download(ctx, s.Descriptor(), s.CacheDirectory(), t)
	m.finish(s, o)
	return o
}

// DownloadRange downloads every instant from start to end at the given step,
// floored to the 5 minute grid. It returns one outcome per instant ordered by
// time, whatever the concurrency.
//
// Only an invalid step is returned as an error. Per-instant failures are
// reported in the outcomes and never abort the range. If ctx is cancelled,
// instants not yet started are reported as Failed with the context error,
// still carrying their URL and cache path.
func (m *Manager) DownloadRange(ctx context.Context, s *Session, start, end time.Time, stepMinutes int) ([]Outcome, error) {
	instants, err := cadence.Instants(start, end, stepMinutes)
	if err != nil {
		return nil, err
	}

	// The range keeps the product it started with.
	desc := s.Descriptor()
	cacheDir := s.CacheDirectory()

	atomic.AddInt32(&m.totalFiles, int32(len(instants)))
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %d %s files from %s to %s", len(instants), desc.ID,
			cadence.Floor(start).Format(time.RFC3339), cadence.Floor(end).Format(time.RFC3339)),
		Level: LevelInfo,
	})

	outcomes := make([]Outcome, len(instants))

	var g errgroup.Group
	g.SetLimit(m.workers())

	for i, t := range instants {
		g.Go(func() error {
			var o Outcome
			if err := ctx.Err(); err != nil {
				o = m.locate(desc, cacheDir, t)
				if o.Err == nil {
					o.Kind, o.Err = Failed, err
				}
			} else {
				o = m.download(ctx, desc, cacheDir, t)
			}
			outcomes[i] = o
			m.finish(s, o)
			return nil
		})
	}
	_ = g.Wait()

	stats := Summarize(outcomes)
	if stats.Failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s: %s", desc.ID, stats), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, some files failed: %s", desc.ID, stats), Level: LevelWarning})
	}

	return outcomes, nil
}

// PlannedItem is one instant of a dry run.
type PlannedItem struct {
	model.Location

	// Path is where the file is or would be cached.
	Path string

	// Cached reports whether the file is already present.
	Cached bool
}

// Plan resolves every instant of a range and reports which files are
// already cached. It performs no network access and writes nothing.
func (m *Manager) Plan(s *Session, start, end time.Time, stepMinutes int) ([]PlannedItem, error) {
	seq, err := cadence.Sequence(start, end, stepMinutes)
	if err != nil {
		return nil, err
	}

	desc := s.Descriptor()
	var items []PlannedItem
	for t := range seq {
		loc, err := m.locator.Resolve(desc, t)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(s.CacheDirectory(), loc.LocalFilename)
		items = append(items, PlannedItem{Location: loc, Path: path, Cached: m.fs.Exists(path)})
	}
	return items, nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, filesDone, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// ResetProgress zeroes the progress counters, e.g. between scheduled runs.
func (m *Manager) ResetProgress() {
	atomic.StoreInt64(&m.receivedBytes, 0)
	atomic.StoreInt32(&m.downloadedFiles, 0)
	atomic.StoreInt32(&m.totalFiles, 0)
}

// locate fills the URL and cache path of the outcome for t. A descriptor
// that cannot be resolved yields a Failed outcome carrying the *FormatError.
func (m *Manager) locate(desc model.Descriptor, cacheDir string, t time.Time) Outcome {
	o := Outcome{Product: desc.ID, Time: t.UTC()}

	loc, err := m.locator.Resolve(desc, t)
	if err != nil {
		o.Kind, o.Err = Failed, err
		return o
	}
	o.URL = loc.RemoteURL
	o.Path = filepath.Join(cacheDir, loc.LocalFilename)
	return o
}

func (m *Manager) download(ctx context.Context, desc model.Descriptor, cacheDir string, t time.Time) Outcome {
	o := m.locate(desc, cacheDir, t)
	if o.Err != nil {
		return o
	}

	if m.fs.Exists(o.Path) {
		o.Kind = Skipped
		return o
	}

	status, body, err := m.transport.Fetch(ctx, o.URL)
	if err != nil {
		o.Kind, o.Err = Failed, &TransportError{URL: o.URL, Err: err}
		return o
	}
	if status < 200 || status > 299 {
		o.Kind, o.Err = Failed, &StatusError{URL: o.URL, Code: status}
		return o
	}

	if err := m.fs.WriteAtomic(o.Path, body); err != nil {
		o.Kind, o.Err = Failed, &FilesystemError{Op: "write", Path: o.Path, Err: err}
		return o
	}

	o.Kind = Fetched
	o.Size = int64(len(body))
	atomic.AddInt64(&m.receivedBytes, o.Size)
	return o
}

func (m *Manager) finish(s *Session, o Outcome) {
	atomic.AddInt32(&m.downloadedFiles, 1)
	s.record(o)

	name := filepath.Base(o.Path)
	switch o.Kind {
	case Skipped:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", name), Level: LevelVerbose, Outcome: &o})
	case Fetched:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s (%d bytes)", name, o.Size), Level: LevelVerbose, Outcome: &o})
	case Failed:
		if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Cancelled %s at %s", o.Product, o.Time.Format(time.RFC3339)), Level: LevelWarning, Outcome: &o})
			return
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s at %s: %v", o.Product, o.Time.Format(time.RFC3339), o.Err), Level: LevelError, Outcome: &o})
	}
}

func (m *Manager) workers() int {
	if m.settings.MaxConcurrentDownloads < 1 {
		return 1
	}
	return m.settings.MaxConcurrentDownloads
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
