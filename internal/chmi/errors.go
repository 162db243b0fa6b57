package chmi

import (
	"errors"
	"fmt"
)

// UnknownProductError is returned when a product ID is not in the table.
type UnknownProductError struct {
	ID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product type: %q", e.ID)
}

// FormatError is returned for a descriptor that cannot produce a filename,
// such as a template without exactly one placeholder. It indicates a bug in
// the table rather than bad input.
type FormatError struct {
	ID     string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed descriptor %q: %s", e.ID, e.Reason)
}

// ErrDuplicateProduct is returned by NewTable when two rows share an ID.
var ErrDuplicateProduct = errors.New("duplicate product id")
