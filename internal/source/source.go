// Package source defines what the capture pipeline needs from a profiler
// backend, and a recorded session implementing it.
package source

import (
	"strings"

	"github.com/getsentry/framestats/internal/column"
)

// Version is the version of the FrameSource and FunctionSource contract.
const Version = 1

type (
	// Frame is the frame-level record of one frame.
	Frame struct {
		CPUTimeMs   float64
		GPUTimeMs   float64
		SampleCount int
	}

	// FunctionRow is one function's encoded values within one frame.
	FunctionRow struct {
		Path   string
		Values map[column.Column]string
	}

	// FrameSource provides frame-level records for a range of frame indices.
	FrameSource interface {
		// FirstFrameIndex is the first index FrameSample accepts.
		FirstFrameIndex() int
		// LastFrameIndex is the last index FrameSample accepts.
		LastFrameIndex() int
		// FrameSample returns the record of a frame. It returns an error
		// matching errorutil.ErrMissingFrame when the frame is in range but
		// has no record.
		FrameSample(index int) (Frame, error)
	}

	// FunctionSource is implemented by frame sources that also provide a
	// per-function breakdown.
	FunctionSource interface {
		// FunctionSamples returns the function rows of a frame whose path
		// matches pathFilter. An empty filter matches every row.
		FunctionSamples(index int, pathFilter string) ([]FunctionRow, error)
	}
)

// MatchPath reports whether path is filter or one of its descendants. A
// trailing "/" on filter is ignored.
func MatchPath(path, filter string) bool {
	filter = strings.TrimSuffix(filter, "/")
	if filter == "" || path == filter {
		return true
	}
	return strings.HasPrefix(path, filter) && path[len(filter)] == '/'
}
