// Package sample holds captured profiler data: a capture set of frames, each
// with the functions measured during that frame and one value per metric
// column. Every object comes from an Allocator and goes back to it through
// Release.
package sample

import (
	"github.com/getsentry/framestats/internal/column"
)

type (
	// Format is the text format a capture set is exported in.
	Format string

	// MetricValue is the encoded value of one metric column.
	MetricValue struct {
		Column string `json:"column"`
		Value  string `json:"value"`
	}

	// FunctionSample is one function's measurements within one frame. Values
	// holds one slot per column in column.All, indexed by Column.Index.
	FunctionSample struct {
		FunctionPath string         `json:"functionPath"`
		Values       []*MetricValue `json:"values"`

		alloc *Allocator
	}

	// FrameSample is one captured frame.
	FrameSample struct {
		Functions    []*FunctionSample `json:"functions"`
		FrameTimeCPU float64           `json:"frameTimeCPU"`
		FrameTimeGPU float64           `json:"frameTimeGPU"`

		alloc *Allocator
	}

	// CaptureSet is the result of one capture and owns all of its frames.
	CaptureSet struct {
		Frames []*FrameSample `json:"frames"`
		Format Format         `json:"format"`

		// FirstFrame is the index of the first requested frame.
		FirstFrame int `json:"-"`
		// SkippedFrames lists requested frames the source had no record for.
		SkippedFrames []int `json:"-"`

		alloc *Allocator
	}
)

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Value returns the encoded value of c, or an empty string if c was not
// measured.
func (f *FunctionSample) Value(c column.Column) string {
	i := c.Index()
	if i < 0 || i >= len(f.Values) {
		return ""
	}
	return f.Values[i].Value
}

// Set stores the encoded value of c.
func (f *FunctionSample) Set(c column.Column, value string) {
	i := c.Index()
	if i < 0 || i >= len(f.Values) {
		return
	}
	f.Values[i].Value = value
}

// Release returns f and its values to their pools.
func (f *FunctionSample) Release() {
	for _, v := range f.Values {
		f.alloc.values.Put(v)
	}
	f.alloc.functions.Put(f)
}

// AddFunction appends a new function sample for path to the frame. The
// sample is owned by the frame.
func (fr *FrameSample) AddFunction(path string) *FunctionSample {
	f := fr.alloc.NewFunction(path)
	fr.Functions = append(fr.Functions, f)
	return f
}

// Release returns the frame, its functions and their values to their pools.
func (fr *FrameSample) Release() {
	for _, f := range fr.Functions {
		f.Release()
	}
	fr.alloc.frames.Put(fr)
}

// AddFrame appends a new frame to the capture set. The frame is owned by the
// capture set.
func (cs *CaptureSet) AddFrame(cpu, gpu float64) *FrameSample {
	fr := cs.alloc.frames.Get()
	fr.FrameTimeCPU = cpu
	fr.FrameTimeGPU = gpu
	cs.Frames = append(cs.Frames, fr)
	return fr
}

// FunctionCount returns the number of function samples across all frames.
func (cs *CaptureSet) FunctionCount() int {
	n := 0
	for _, fr := range cs.Frames {
		n += len(fr.Functions)
	}
	return n
}

// Release returns the capture set and everything it owns to their pools.
// Nothing obtained from cs may be used afterwards.
func (cs *CaptureSet) Release() {
	for _, fr := range cs.Frames {
		fr.Release()
	}
	cs.alloc.captures.Put(cs)
}
