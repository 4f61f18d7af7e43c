//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform turns raw operational tables into star schema
// dimensions and facts. Transformers are pure: they never perform I/O and
// never modify their input.
package transform

import (
	"errors"
	"fmt"
)

// ErrStructural marks a failure that aborts the whole batch, such as a
// missing required column or an unresolvable foreign key.
var ErrStructural = errors.New("structural error")

// StructuralError describes a batch-level failure. Row is -1 when the
// failure concerns the table as a whole.
type StructuralError struct {
	Table  string
	Column string
	Row    int
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: %s: %s", e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s row %d: %s: %s", e.Table, e.Row, e.Column, e.Reason)
}

// Is makes errors.Is(err, ErrStructural) match.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

func missingColumn(table, column string) *StructuralError {
	return &StructuralError{Table: table, Column: column, Row: -1, Reason: "required column is missing"}
}

// Rejection records a raw row that could not be turned into an output row.
type Rejection struct {
	Table  string `json:"table"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s row %d: %s", r.Table, r.Row, r.Reason)
}

// Result is the output of one transformer: the accepted rows plus every
// rejected row with its reason.
type Result[T any] struct {
	Rows     []T
	Rejected []Rejection
}

func (r *Result[T]) reject(table string, row int, reason string) {
	r.Rejected = append(r.Rejected, Rejection{Table: table, Row: row, Reason: reason})
}
