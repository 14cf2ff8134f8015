package voyage

import (
	"fmt"
	"strings"
)

// SchemaError reports structurally required columns absent from the table.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("schema: missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema: %s is missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// RowCoercionWarning flags a cell that could not be used as a number or time.
// The row stays in the table; its contribution for that column is zero.
type RowCoercionWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w RowCoercionWarning) String() string {
	return fmt.Sprintf("row %d: %s=%q %s", w.Row, w.Column, w.Value, w.Reason)
}
