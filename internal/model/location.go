package model

import "time"

// Location is the resolved remote URL and local filename for one product at
// one instant.
//
// For a fixed descriptor and timestamp a Location is always the same value;
// computing one does no I/O.
type Location struct {
	// Product is the descriptor ID the location was resolved for.
	Product string

	// Time is the instant, normalised to UTC.
	Time time.Time

	// RemoteURL is the absolute URL of the resource in the archive.
	RemoteURL string

	// LocalFilename is the bare filename used inside the cache directory.
	// It embeds the formatted timestamp, so distinct instants never collide.
	LocalFilename string
}
