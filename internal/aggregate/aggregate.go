// Package aggregate merges the samples of every function across a range of
// frames into one statistic per function.
package aggregate

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/getsentry/framestats/internal/capture"
	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/sample"
	"github.com/getsentry/framestats/internal/source"
	"github.com/getsentry/framestats/internal/units"
)

type (
	// Options controls an aggregation.
	Options struct {
		// Columns are the columns of each statistic, in order. The first one
		// must be column.FunctionName.
		Columns []column.Column
		Reducer Reducer
		// SortBy must be one of Columns. Statistics are sorted by its
		// reduced value, largest first, or by function path when it is
		// column.FunctionName.
		SortBy column.Column
		// FunctionPath restricts the aggregation to a function and its callees.
		FunctionPath string
	}

	// FunctionStatistic holds the reduced values of one function, one per
	// requested column.
	FunctionStatistic struct {
		FunctionPath string               `json:"functionPath"`
		Values       []sample.MetricValue `json:"values"`
	}

	ranked struct {
		stat FunctionStatistic
		key  float64
	}
)

// DefaultOptions sums every column and ranks functions by self time.
func DefaultOptions() Options {
	return Options{
		Columns: column.DefaultColumns,
		Reducer: Sum,
		SortBy:  column.SelfTime,
	}
}

func (o Options) validate() error {
	if len(o.Columns) == 0 || o.Columns[0] != column.FunctionName {
		return fmt.Errorf("%w: columns must start with %v", errorutil.ErrInvalidOptions, column.FunctionName)
	}
	for _, c := range o.Columns {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown column %v", errorutil.ErrInvalidOptions, c)
		}
	}
	if !slices.Contains(o.Columns, o.SortBy) {
		return fmt.Errorf("%w: sort column %v is not one of the columns", errorutil.ErrInvalidOptions, o.SortBy)
	}
	if !o.Reducer.Valid() {
		return fmt.Errorf("%w: unknown reducer %v", errorutil.ErrInvalidOptions, o.Reducer)
	}
	return nil
}

// Value returns the value of column c, or an empty string if c was not
// requested or never measured.
func (s FunctionStatistic) Value(c column.Column) string {
	name := c.String()
	for _, v := range s.Values {
		if v.Column == name {
			return v.Value
		}
	}
	return ""
}

// Aggregate captures frames first to last and returns one statistic per
// function found in them.
func Aggregate(src source.FrameSource, alloc *sample.Allocator, first, last int, opts Options) ([]FunctionStatistic, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cs, err := capture.Capture(src, alloc, first, last, capture.WithFunctionPath(opts.FunctionPath))
	if err != nil {
		return nil, err
	}
	defer cs.Release()
	return FromCapture(cs, opts)
}

// FromCapture returns one statistic per function path found in cs. Every
// occurrence of a function counts as a sample, including repeated ones within
// a frame. Empty values are not samples. cs is left untouched and still owned
// by the caller.
func FromCapture(cs *sample.CaptureSet, opts Options) ([]FunctionStatistic, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	occurrences := make(map[string][]*sample.FunctionSample)
	var order []string
	for _, fr := range cs.Frames {
		for _, f := range fr.Functions {
			if opts.FunctionPath != "" && !source.MatchPath(f.FunctionPath, opts.FunctionPath) {
				continue
			}
			group, ok := occurrences[f.FunctionPath]
			if !ok {
				order = append(order, f.FunctionPath)
			}
			occurrences[f.FunctionPath] = append(group, f)
		}
	}

	sortIndex := slices.Index(opts.Columns, opts.SortBy)
	rankings := make([]ranked, 0, len(order))
	values := make([]float64, 0, len(cs.Frames))
	for _, path := range order {
		r := ranked{
			stat: FunctionStatistic{
				FunctionPath: path,
				Values:       make([]sample.MetricValue, len(opts.Columns)),
			},
		}
		for i, c := range opts.Columns {
			r.stat.Values[i].Column = c.String()
			if c.Kind() == column.Identity {
				r.stat.Values[i].Value = path
				continue
			}

			values = values[:0]
			for _, f := range occurrences[path] {
				text := f.Value(c)
				if text == "" {
					continue
				}
				v, err := units.Parse(text, c.Kind())
				if err != nil {
					return nil, fmt.Errorf("function %q, column %v: %w", path, c, err)
				}
				values = append(values, v)
			}
			if len(values) == 0 {
				continue
			}
			reduced := opts.Reducer.Reduce(values)
			if math.IsInf(reduced, 0) || math.IsNaN(reduced) {
				return nil, fmt.Errorf("%w: function %q, column %v: %v of %d samples is not a finite number", errorutil.ErrDataIntegrity, path, c, opts.Reducer, len(values))
			}
			r.stat.Values[i].Value = units.Format(reduced, c.Kind())
			if i == sortIndex {
				r.key = reduced
			}
		}
		rankings = append(rankings, r)
	}

	if opts.SortBy.Kind() == column.Identity {
		slices.SortStableFunc(rankings, func(a, b ranked) int {
			return cmp.Compare(a.stat.FunctionPath, b.stat.FunctionPath)
		})
	} else {
		slices.SortStableFunc(rankings, func(a, b ranked) int {
			return cmp.Compare(b.key, a.key)
		})
	}

	stats := make([]FunctionStatistic, 0, len(rankings))
	for _, r := range rankings {
		stats = append(stats, r.stat)
	}

	log.Debug().
		Int("frames", len(cs.Frames)).
		Int("functions", len(stats)).
		Stringer("reducer", opts.Reducer).
		Stringer("sort_by", opts.SortBy).
		Msg("aggregation done")
	return stats, nil
}
