package cadence

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
)

// Grid is the archive's native sampling interval.
const Grid = 5 * time.Minute

// DefaultStepMinutes is the step used when a caller does not choose one.
const DefaultStepMinutes = 10

// InvalidCadenceError is returned for a step that would never advance.
type InvalidCadenceError struct {
	StepMinutes int
}

func (e *InvalidCadenceError) Error() string {
	return fmt.Sprintf("invalid cadence: step must be a positive number of minutes, got %d", e.StepMinutes)
}

// Floor converts t to UTC and rounds it down to the 5-minute grid, dropping
// seconds and sub-second parts.
func Floor(t time.Time) time.Time {
	return t.UTC().Truncate(Grid)
}

// Sequence returns the instants from Floor(start) to Floor(end) inclusive,
// stepMinutes apart.
//
// The sequence is lazy and each range over it starts again from the
// beginning. If Floor(start) is after Floor(end) the sequence is empty.
func Sequence(start, end time.Time, stepMinutes int) (iter.Seq[time.Time], error) {
	if stepMinutes <= 0 {
		return nil, &InvalidCadenceError{StepMinutes: stepMinutes}
	}

	first := Floor(start)
	last := Floor(end)
	step := time.Duration(stepMinutes) * time.Minute

	return func(yield func(time.Time) bool) {
		for t := first; !t.After(last); t = t.Add(step) {
			if !yield(t) {
				return
			}
		}
	}, nil
}

// Instants collects Sequence into a slice.
func Instants(start, end time.Time, stepMinutes int) ([]time.Time, error) {
	seq, err := Sequence(start, end, stepMinutes)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// Window returns the range of length d that ends at end. It is a
// convenience for callers that schedule "the last hour" style requests.
func Window(end time.Time, d time.Duration) (time.Time, time.Time) {
	return end.Add(-d), end
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102150405",
	"200601021504",
}

// ParseInstant parses an RFC 3339 timestamp, or a timestamp without a zone
// which is then taken to be UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp (use RFC 3339 or 2006-01-02T15:04)", s)
}
