package chmi

import (
	"fmt"
	"strings"

	"github.com/handiism/chmirad/internal/model"
)

// Table is a read-only registry of product descriptors.
//
// A Table is safe for concurrent use since it is never mutated after
// NewTable returns.
type Table struct {
	order []string
	byID  map[string]model.Descriptor
}

// NewTable builds a table from rows, keeping their order.
//
// Every row is validated with ValidateDescriptor. A repeated ID wraps
// ErrDuplicateProduct.
func NewTable(rows ...model.Descriptor) (*Table, error) {
	t := &Table{
		order: make([]string, 0, len(rows)),
		byID:  make(map[string]model.Descriptor, len(rows)),
	}

	for _, d := range rows {
		if err := ValidateDescriptor(d); err != nil {
			return nil, err
		}
		if _, ok := t.byID[d.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProduct, d.ID)
		}
		t.byID[d.ID] = d
		t.order = append(t.order, d.ID)
	}

	return t, nil
}

// MustTable is like NewTable but panics on an invalid row. It is meant for
// package-level tables built from literals.
func MustTable(rows ...model.Descriptor) *Table {
	t, err := NewTable(rows...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the descriptor registered under id.
func (t *Table) Lookup(id string) (model.Descriptor, error) {
	d, ok := t.byID[id]
	if !ok {
		return model.Descriptor{}, &UnknownProductError{ID: id}
	}
	return d, nil
}

// Has reports whether id is registered.
func (t *Table) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// IDs returns the registered product IDs in registration order.
func (t *Table) IDs() []string {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	return ids
}

// Descriptors returns all descriptors in registration order.
func (t *Table) Descriptors() []model.Descriptor {
	out := make([]model.Descriptor, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Len returns the number of registered products.
func (t *Table) Len() int {
	return len(t.order)
}

// ValidateDescriptor checks that d can produce a safe filename.
func ValidateDescriptor(d model.Descriptor) error {
	switch {
	case d.ID == "":
		return &FormatError{ID: d.ID, Reason: "empty id"}
	case d.TimestampLayout == "":
		return &FormatError{ID: d.ID, Reason: "empty timestamp layout"}
	case d.PlaceholderCount() != 1:
		return &FormatError{ID: d.ID, Reason: fmt.Sprintf("template %q must contain exactly one %s", d.FilenameTemplate, model.Placeholder)}
	case strings.ContainsAny(d.FilenameTemplate, `/\`):
		return &FormatError{ID: d.ID, Reason: fmt.Sprintf("template %q contains a path separator", d.FilenameTemplate)}
	case strings.ContainsAny(d.TimestampLayout, `/\`):
		return &FormatError{ID: d.ID, Reason: fmt.Sprintf("layout %q contains a path separator", d.TimestampLayout)}
	}
	return nil
}
