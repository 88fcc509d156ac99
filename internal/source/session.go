package source

import (
	"context"
	"fmt"
	"strings"

	"gocloud.dev/blob"

	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/storageutil"
)

type (
	// RecordedFunction is a function row as stored in a session, with values
	// keyed by column name.
	RecordedFunction struct {
		Path   string            `json:"path"`
		Values map[string]string `json:"values"`
	}

	// RecordedFrame is a frame as stored in a session.
	RecordedFrame struct {
		CPUTimeMs   float64            `json:"cpuTimeMs"`
		GPUTimeMs   float64            `json:"gpuTimeMs"`
		SampleCount int                `json:"sampleCount"`
		Functions   []RecordedFunction `json:"functions"`
	}

	// Session is a recorded profiling session. A nil frame stands for a frame
	// the profiler did not keep.
	Session struct {
		Version    int              `json:"version"`
		FirstFrame int              `json:"firstFrame"`
		Frames     []*RecordedFrame `json:"frames"`
	}
)

// LoadSession reads a session from the bucket. Keys ending in ".lz4" are read
// as compressed JSON.
func LoadSession(ctx context.Context, bucket *blob.Bucket, key string) (*Session, error) {
	var s Session
	var err error
	if strings.HasSuffix(key, ".lz4") {
		err = storageutil.UnmarshalCompressed(ctx, bucket, key, &s)
	} else {
		err = storageutil.Unmarshal(ctx, bucket, key, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %q: %w", key, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the session version and that every recorded value belongs
// to a known column.
func (s *Session) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("%w: session version %d, expected %d", errorutil.ErrDataIntegrity, s.Version, Version)
	}
	for i, fr := range s.Frames {
		if fr == nil {
			continue
		}
		for _, f := range fr.Functions {
			for name := range f.Values {
				if _, err := column.Parse(name); err != nil {
					return fmt.Errorf("%w: frame %d function %q: unknown column %q", errorutil.ErrDataIntegrity, s.FirstFrame+i, f.Path, name)
				}
			}
		}
	}
	return nil
}

func (s *Session) FirstFrameIndex() int {
	return s.FirstFrame
}

func (s *Session) LastFrameIndex() int {
	return s.FirstFrame + len(s.Frames) - 1
}

func (s *Session) frame(index int) (*RecordedFrame, error) {
	if index < s.FirstFrameIndex() || index > s.LastFrameIndex() {
		return nil, fmt.Errorf("%w: frame %d outside [%d, %d]", errorutil.ErrInvalidRange, index, s.FirstFrameIndex(), s.LastFrameIndex())
	}
	fr := s.Frames[index-s.FirstFrame]
	if fr == nil {
		return nil, fmt.Errorf("%w: frame %d", errorutil.ErrMissingFrame, index)
	}
	return fr, nil
}

func (s *Session) FrameSample(index int) (Frame, error) {
	fr, err := s.frame(index)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		CPUTimeMs:   fr.CPUTimeMs,
		GPUTimeMs:   fr.GPUTimeMs,
		SampleCount: fr.SampleCount,
	}, nil
}

func (s *Session) FunctionSamples(index int, pathFilter string) ([]FunctionRow, error) {
	fr, err := s.frame(index)
	if err != nil {
		return nil, err
	}
	rows := make([]FunctionRow, 0, len(fr.Functions))
	for _, f := range fr.Functions {
		if !MatchPath(f.Path, pathFilter) {
			continue
		}
		values := make(map[column.Column]string, len(f.Values))
		for name, v := range f.Values {
			c, err := column.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("%w: frame %d function %q: %v", errorutil.ErrDataIntegrity, index, f.Path, err)
			}
			values[c] = v
		}
		rows = append(rows, FunctionRow{Path: f.Path, Values: values})
	}
	return rows, nil
}
