// Package capture copies frames from a frame source into pooled samples.
package capture

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/sample"
	"github.com/getsentry/framestats/internal/source"
)

type (
	options struct {
		functionPath string
		format       sample.Format
		noFunctions  bool
	}

	// Option changes what a capture records.
	Option func(o *options)
)

// WithFunctionPath only records the function at path and its callees.
func WithFunctionPath(path string) Option {
	return func(o *options) {
		o.functionPath = path
	}
}

// WithFormat sets the export format of the capture set.
func WithFormat(format sample.Format) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithoutFunctions only records frame times.
func WithoutFunctions() Option {
	return func(o *options) {
		o.noFunctions = true
	}
}

// Capture records frames first to last, both included. Frames the source has
// no record for are skipped and listed in the capture set's SkippedFrames.
// The caller owns the returned capture set and must Release it.
func Capture(src source.FrameSource, alloc *sample.Allocator, first, last int, opts ...Option) (*sample.CaptureSet, error) {
	o := options{format: sample.FormatJSON}
	for _, opt := range opts {
		opt(&o)
	}

	if first > last {
		return nil, fmt.Errorf("%w: first frame %d is after last frame %d", errorutil.ErrInvalidRange, first, last)
	}
	if first < src.FirstFrameIndex() || last > src.LastFrameIndex() {
		return nil, fmt.Errorf(
			"%w: frames [%d, %d] outside [%d, %d]",
			errorutil.ErrInvalidRange,
			first,
			last,
			src.FirstFrameIndex(),
			src.LastFrameIndex(),
		)
	}

	var functions source.FunctionSource
	if !o.noFunctions {
		functions, _ = src.(source.FunctionSource)
	}

	cs := alloc.NewCaptureSet(o.format)
	cs.FirstFrame = first
	for i := first; i <= last; i++ {
		err := captureFrame(cs, src, functions, i, o.functionPath)
		if errors.Is(err, errorutil.ErrMissingFrame) {
			log.Debug().Int("frame", i).Msg("no record for frame, skipping")
			cs.SkippedFrames = append(cs.SkippedFrames, i)
			continue
		}
		if err != nil {
			cs.Release()
			return nil, err
		}
	}
	log.Debug().
		Int("first_frame", first).
		Int("last_frame", last).
		Int("frames", len(cs.Frames)).
		Int("functions", cs.FunctionCount()).
		Ints("skipped_frames", cs.SkippedFrames).
		Msg("capture done")
	return cs, nil
}

func captureFrame(cs *sample.CaptureSet, src source.FrameSource, functions source.FunctionSource, index int, path string) error {
	frame, err := src.FrameSample(index)
	if err != nil {
		return err
	}
	var rows []source.FunctionRow
	if functions != nil {
		rows, err = functions.FunctionSamples(index, path)
		if err != nil {
			return err
		}
	}
	fr := cs.AddFrame(frame.CPUTimeMs, frame.GPUTimeMs)
	for _, row := range rows {
		f := fr.AddFunction(row.Path)
		for _, c := range column.All {
			if v, ok := row.Values[c]; ok {
				f.Set(c, v)
			}
		}
		if f.Value(column.FunctionName) == "" {
			f.Set(column.FunctionName, row.Path)
		}
	}
	return nil
}

// CurrentFrame records a single frame.
func CurrentFrame(src source.FrameSource, alloc *sample.Allocator, index int, opts ...Option) (*sample.CaptureSet, error) {
	return Capture(src, alloc, index, index, opts...)
}

// All records every frame the source has.
func All(src source.FrameSource, alloc *sample.Allocator, opts ...Option) (*sample.CaptureSet, error) {
	return Capture(src, alloc, src.FirstFrameIndex(), src.LastFrameIndex(), opts...)
}
