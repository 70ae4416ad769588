// Package schema compares the columns a backend reports for a table with the
// columns the repositories expect.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTableMissing = errors.New("table does not exist")
	ErrMismatch     = errors.New("schema mismatch")
)

// Column describes one table column as the backend reports it.
// Type is compared case-insensitively.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// Table is the expected layout of one table.
type Table struct {
	Name    string
	Columns []Column
}

// MismatchError lists every difference found between a table and its
// expected layout. It matches ErrMismatch.
type MismatchError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s schema validation failed", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, "; "))
	}
	return b.String()
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Compare checks actual against want. Extra columns are allowed.
// An empty actual means the table does not exist.
func Compare(want Table, actual []Column) error {
	if len(actual) == 0 {
		return fmt.Errorf("%w: %s", ErrTableMissing, want.Name)
	}

	byName := make(map[string]Column, len(actual))
	for _, c := range actual {
		byName[c.Name] = c
	}

	mismatch := &MismatchError{Table: want.Name}
	for _, expected := range want.Columns {
		got, ok := byName[expected.Name]
		if !ok {
			mismatch.Missing = append(mismatch.Missing, expected.Name)
			continue
		}
		if !strings.EqualFold(got.Type, expected.Type) {
			mismatch.Mismatched = append(mismatch.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", expected.Name, expected.Type, strings.ToLower(got.Type)))
		}
		if got.Nullable != expected.Nullable {
			mismatch.Mismatched = append(mismatch.Mismatched,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", expected.Name, expected.Nullable, got.Nullable))
		}
	}

	if len(mismatch.Missing) > 0 || len(mismatch.Mismatched) > 0 {
		return mismatch
	}
	return nil
}
