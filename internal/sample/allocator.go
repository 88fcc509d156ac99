package sample

import (
	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/pool"
)

const (
	expectedFrames            = 300
	expectedFunctionsPerFrame = 50
)

type (
	// PoolSizes is the number of instances each pool builds up front.
	PoolSizes struct {
		Captures  int `yaml:"captures" env:"FRAMESTATS_POOL_CAPTURES" env-default:"1"`
		Frames    int `yaml:"frames" env:"FRAMESTATS_POOL_FRAMES" env-default:"300"`
		Functions int `yaml:"functions" env:"FRAMESTATS_POOL_FUNCTIONS" env-default:"15000"`
		Values    int `yaml:"values" env:"FRAMESTATS_POOL_VALUES" env-default:"105000"`
	}

	// AllocatorStats has the counters of every pool of an Allocator.
	AllocatorStats struct {
		Captures  pool.Stats
		Frames    pool.Stats
		Functions pool.Stats
		Values    pool.Stats
	}

	// Allocator recycles capture sets, frames, function samples and metric
	// values. It is not safe for concurrent use.
	Allocator struct {
		captures  *pool.Pool[*CaptureSet]
		frames    *pool.Pool[*FrameSample]
		functions *pool.Pool[*FunctionSample]
		values    *pool.Pool[*MetricValue]
	}
)

// DefaultPoolSizes fits a capture of 300 frames with 50 functions each.
var DefaultPoolSizes = PoolSizes{
	Captures:  1,
	Frames:    expectedFrames,
	Functions: expectedFrames * expectedFunctionsPerFrame,
	Values:    expectedFrames * expectedFunctionsPerFrame * len(column.All),
}

// NewAllocator returns an allocator with pools pre-warmed to sizes.
func NewAllocator(sizes PoolSizes) *Allocator {
	a := &Allocator{}
	a.captures = pool.New(
		func() *CaptureSet {
			return &CaptureSet{
				Frames: make([]*FrameSample, 0, expectedFrames),
				alloc:  a,
			}
		},
		func(cs *CaptureSet) {
			clear(cs.Frames)
			cs.Frames = cs.Frames[:0]
			cs.Format = ""
			cs.FirstFrame = 0
			cs.SkippedFrames = cs.SkippedFrames[:0]
		},
		sizes.Captures,
	)
	a.frames = pool.New(
		func() *FrameSample {
			return &FrameSample{
				Functions: make([]*FunctionSample, 0, expectedFunctionsPerFrame),
				alloc:     a,
			}
		},
		func(fr *FrameSample) {
			clear(fr.Functions)
			fr.Functions = fr.Functions[:0]
			fr.FrameTimeCPU = 0
			fr.FrameTimeGPU = 0
		},
		sizes.Frames,
	)
	a.functions = pool.New(
		func() *FunctionSample {
			return &FunctionSample{
				Values: make([]*MetricValue, 0, len(column.All)),
				alloc:  a,
			}
		},
		func(f *FunctionSample) {
			clear(f.Values)
			f.Values = f.Values[:0]
			f.FunctionPath = ""
		},
		sizes.Functions,
	)
	a.values = pool.New(
		func() *MetricValue { return &MetricValue{} },
		func(v *MetricValue) {
			v.Column = ""
			v.Value = ""
		},
		sizes.Values,
	)
	return a
}

// NewCaptureSet returns an empty capture set. The caller owns it and must
// Release it.
func (a *Allocator) NewCaptureSet(format Format) *CaptureSet {
	cs := a.captures.Get()
	cs.Format = format
	return cs
}

// NewFunction returns a function sample for path with an empty value in
// every column slot.
func (a *Allocator) NewFunction(path string) *FunctionSample {
	f := a.functions.Get()
	f.FunctionPath = path
	for _, c := range column.All {
		v := a.values.Get()
		v.Column = c.String()
		f.Values = append(f.Values, v)
	}
	return f
}

// Live returns the number of objects handed out and not yet released.
func (a *Allocator) Live() int {
	return a.captures.Live() + a.frames.Live() + a.functions.Live() + a.values.Live()
}

// Stats returns the counters of every pool.
func (a *Allocator) Stats() AllocatorStats {
	return AllocatorStats{
		Captures:  a.captures.Stats(),
		Frames:    a.frames.Stats(),
		Functions: a.functions.Stats(),
		Values:    a.values.Stats(),
	}
}
