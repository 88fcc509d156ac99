// Package column describes the metric columns a profiler hierarchy view
// reports for each function, and how their values are encoded.
package column

import (
	"fmt"

	"github.com/getsentry/framestats/internal/errorutil"
)

type (
	// Column identifies a metric column. Its value is the column's slot in
	// every captured function sample.
	Column int

	// Kind is the encoding of a column's values.
	Kind int
)

const (
	FunctionName Column = iota
	TotalPercent
	SelfPercent
	Calls
	GCMemory
	TotalTime
	SelfTime
)

const (
	// Identity values name the function and are never reduced numerically.
	Identity Kind = iota
	// Numeric values are plain decimals, "12.50".
	Numeric
	// Percentage values are decimals with an optional trailing "%".
	Percentage
	// ByteSize values are human-readable sizes, "1.5 KB".
	ByteSize
)

// All lists every column in slot order.
var All = []Column{
	FunctionName,
	TotalPercent,
	SelfPercent,
	Calls,
	GCMemory,
	TotalTime,
	SelfTime,
}

// DefaultColumns is the set of columns shown in a statistics table.
var DefaultColumns = All

var (
	names = [...]string{
		FunctionName: "FunctionName",
		TotalPercent: "TotalPercent",
		SelfPercent:  "SelfPercent",
		Calls:        "Calls",
		GCMemory:     "GCMemory",
		TotalTime:    "TotalTime",
		SelfTime:     "SelfTime",
	}

	headers = [...]string{
		FunctionName: "Function",
		TotalPercent: "Total",
		SelfPercent:  "Self",
		Calls:        "Calls",
		GCMemory:     "GC Alloc",
		TotalTime:    "Time ms",
		SelfTime:     "Self ms",
	}

	kinds = [...]Kind{
		FunctionName: Identity,
		TotalPercent: Percentage,
		SelfPercent:  Percentage,
		Calls:        Numeric,
		GCMemory:     ByteSize,
		TotalTime:    Numeric,
		SelfTime:     Numeric,
	}
)

// Valid reports whether c is a known column.
func (c Column) Valid() bool {
	return c >= 0 && int(c) < len(names)
}

// Index is the slot of c in a function sample's values.
func (c Column) Index() int {
	return int(c)
}

func (c Column) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return names[c]
}

// Kind returns the encoding of c's values.
func (c Column) Kind() Kind {
	if !c.Valid() {
		return Identity
	}
	return kinds[c]
}

// Header returns the display header of c.
func (c Column) Header() string {
	if !c.Valid() {
		return c.String()
	}
	return headers[c]
}

func (k Kind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Numeric:
		return "numeric"
	case Percentage:
		return "percentage"
	case ByteSize:
		return "byte size"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Parse returns the column named name. Sort type names are column names, so
// Parse also resolves a requested sort order.
func Parse(name string) (Column, error) {
	for i, n := range names {
		if n == name {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown column %q", errorutil.ErrInvalidOptions, name)
}

// ParseList resolves a list of column names.
func ParseList(list []string) ([]Column, error) {
	columns := make([]Column, 0, len(list))
	for _, name := range list {
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, nil
}

// Names returns the names of columns.
func Names(columns []Column) []string {
	s := make([]string, 0, len(columns))
	for _, c := range columns {
		s = append(s, c.String())
	}
	return s
}
