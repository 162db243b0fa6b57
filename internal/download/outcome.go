package download

import (
	"fmt"
	"time"
)

// OutcomeKind classifies the result of processing one instant.
type OutcomeKind int

const (
	// Skipped means the file was already in the cache; no request was made.
	Skipped OutcomeKind = iota
	// Fetched means the file was downloaded and committed to the cache.
	Fetched
	// Failed means the file could not be materialized; Outcome.Err says why.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Skipped:
		return "skipped"
	case Fetched:
		return "fetched"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the per-instant result of a download.
type Outcome struct {
	Kind    OutcomeKind
	Product string
	Time    time.Time
	URL     string

	// Path is the cache path of the file. Set for every outcome that got as
	// far as resolving a location.
	Path string

	// Size is the number of bytes written. Only set for Fetched.
	Size int64

	// Err is the failure reason. Only set for Failed; it is one of
	// *StatusError, *TransportError, *FilesystemError, or the context error
	// for instants never started because the run was cancelled.
	Err error
}

// Stats counts outcomes by kind.
type Stats struct {
	Skipped int
	Fetched int
	Failed  int
	Bytes   int64
}

// Add accounts one outcome.
func (s *Stats) Add(o Outcome) {
	switch o.Kind {
	case Skipped:
		s.Skipped++
	case Fetched:
		s.Fetched++
		s.Bytes += o.Size
	case Failed:
		s.Failed++
	}
}

// Total returns the number of outcomes counted.
func (s Stats) Total() int {
	return s.Skipped + s.Fetched + s.Failed
}

func (s Stats) String() string {
	return fmt.Sprintf("%d fetched, %d skipped, %d failed", s.Fetched, s.Skipped, s.Failed)
}

// Summarize counts a batch of outcomes.
func Summarize(outcomes []Outcome) Stats {
	var s Stats
	for _, o := range outcomes {
		s.Add(o)
	}
	return s
}

// Failures returns the Failed outcomes in their original order.
func Failures(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Kind == Failed {
			failed = append(failed, o)
		}
	}
	return failed
}
