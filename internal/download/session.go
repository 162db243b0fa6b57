package download

import (
	"errors"
	"sync"

	"github.com/handiism/chmirad/internal/chmi"
	"github.com/handiism/chmirad/internal/model"
)

// Session is the active product selection and cache directory for a run of
// downloads. It is safe for concurrent use. Sessions share no mutable state.
type Session struct {
	table    *chmi.Table
	cacheDir string

	mu    sync.RWMutex
	desc  model.Descriptor
	stats Stats
}

// NewSession validates productID against table and creates cacheDir.
// A cache directory that cannot be created is a fatal error.
func NewSession(table *chmi.Table, fs Filesystem, productID, cacheDir string) (*Session, error) {
	if table == nil {
		return nil, errors.New("download: nil descriptor table")
	}
	if cacheDir == "" {
		return nil, errors.New("download: cache directory is required")
	}

	desc, err := table.Lookup(productID)
	if err != nil {
		return nil, err
	}

	if err := fs.EnsureDir(cacheDir); err != nil {
		return nil, &FilesystemError{Op: "mkdir", Path: cacheDir, Err: err}
	}

	return &Session{table: table, cacheDir: cacheDir, desc: desc}, nil
}

// SetProduct switches the active product. An unknown id returns
// *chmi.UnknownProductError and leaves the active product unchanged.
// A range already running keeps the product it started with.
func (s *Session) SetProduct(id string) error {
	desc, err := s.table.Lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.desc = desc
	s.mu.Unlock()
	return nil
}

// ProductID returns the active product id.
func (s *Session) ProductID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desc.ID
}

// Descriptor returns the active product descriptor.
func (s *Session) Descriptor() model.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desc
}

// CacheDirectory returns the directory files are written to.
func (s *Session) CacheDirectory() string {
	return s.cacheDir
}

// Stats returns the cumulative outcome counts of the session. They survive
// product switches.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Session) record(o Outcome) {
	s.mu.Lock()
	s.stats.Add(o)
	s.mu.Unlock()
}
