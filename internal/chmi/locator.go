package chmi

import (
	"fmt"
	"net/url"
	"time"

	"github.com/handiism/chmirad/internal/model"
)

// DefaultBaseURL is the root of the radar composite archive.
const DefaultBaseURL = "https://opendata.chmi.cz/meteorology/weather/radar/composite/"

// Locator resolves descriptors and instants to archive locations.
type Locator struct {
	base *url.URL
}

// NewLocator creates a Locator rooted at baseURL, which must be an absolute
// http or https URL.
func NewLocator(baseURL string) (*Locator, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) URL", baseURL)
	}
	return &Locator{base: u}, nil
}

// BaseURL returns the archive root the locator joins paths onto.
func (l *Locator) BaseURL() string {
	return l.base.String()
}

// Resolve computes the location of product d at instant t.
//
// The timestamp is rendered in UTC with d.TimestampLayout and nothing else.
// Resolve does no I/O; it fails only with a *FormatError for a descriptor
// that ValidateDescriptor would reject.
func (l *Locator) Resolve(d model.Descriptor, t time.Time) (model.Location, error) {
	if err := ValidateDescriptor(d); err != nil {
		return model.Location{}, err
	}

	filename := d.FileName(t)
	remote := l.base.JoinPath(d.SubPath(), filename)

	return model.Location{
		Product:       d.ID,
		Time:          t.UTC(),
		RemoteURL:     remote.String(),
		LocalFilename: filename,
	}, nil
}
