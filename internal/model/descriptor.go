package model

import (
	"strings"
	"time"
)

// Placeholder marks where the formatted timestamp goes in a filename template.
const Placeholder = "{}"

// Descriptor describes a radar composite product published by the archive.
//
// Descriptors are plain data: adding a product means adding a row, never a
// branch in code that consumes the table.
type Descriptor struct {
	// ID is the product key, e.g. "maxz" or "pseudocappi2km".
	ID string

	// RemoteSubPath is the directory below the archive base URL,
	// e.g. "maxz/hdf5". Leading and trailing slashes are ignored.
	RemoteSubPath string

	// FilenameTemplate is the remote and local filename with exactly one
	// Placeholder standing in for the timestamp token.
	FilenameTemplate string

	// TimestampLayout is the Go reference-time layout used to render the
	// timestamp token. Products differ here (seconds vs. minutes, dotted
	// date/time), so it is never shared through a global default.
	TimestampLayout string

	// Description is a short human readable label.
	Description string
}

// PlaceholderCount returns how many placeholders the filename template holds.
func (d Descriptor) PlaceholderCount() int {
	return strings.Count(d.FilenameTemplate, Placeholder)
}

// Token renders t in UTC using the descriptor's own layout.
func (d Descriptor) Token(t time.Time) string {
	return t.UTC().Format(d.TimestampLayout)
}

// FileName substitutes the timestamp token for t into the template.
func (d Descriptor) FileName(t time.Time) string {
	return strings.Replace(d.FilenameTemplate, Placeholder, d.Token(t), 1)
}

// SubPath returns RemoteSubPath without surrounding slashes.
func (d Descriptor) SubPath() string {
	return strings.Trim(d.RemoteSubPath, "/")
}
