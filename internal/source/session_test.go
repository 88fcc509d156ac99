package source

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gocloud.dev/blob/memblob"

	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/storageutil"
	"github.com/getsentry/framestats/internal/testutil"
)

func testSession() *Session {
	return &Session{
		Version:    Version,
		FirstFrame: 10,
		Frames: []*RecordedFrame{
			{
				CPUTimeMs:   16.5,
				GPUTimeMs:   4,
				SampleCount: 3,
				Functions: []RecordedFunction{
					{Path: "PlayerLoop", Values: map[string]string{"SelfTime": "0.50"}},
					{Path: "PlayerLoop/Update", Values: map[string]string{"SelfTime": "1.00", "GCMemory": "1.0 KB"}},
					{Path: "PlayerLoopUpdate", Values: map[string]string{"SelfTime": "2.00"}},
				},
			},
			nil,
			{CPUTimeMs: 15, GPUTimeMs: 3},
		},
	}
}

var _ FrameSource = (*Session)(nil)
var _ FunctionSource = (*Session)(nil)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		path, filter string
		want         bool
	}{
		{"PlayerLoop/Update", "", true},
		{"PlayerLoop/Update", "PlayerLoop/Update", true},
		{"PlayerLoop/Update", "PlayerLoop", true},
		{"PlayerLoopUpdate", "PlayerLoop", false},
		{"PlayerLoop", "PlayerLoop/Update", false},
		{"PlayerLoop", "PlayerLoop/", true},
		{"PlayerLoop/Update", "PlayerLoop/", true},
		{"PlayerLoopUpdate", "PlayerLoop/", false},
	}
	for _, test := range tests {
		if got := MatchPath(test.path, test.filter); got != test.want {
			t.Fatalf("MatchPath(%q, %q): expected %v, got %v", test.path, test.filter, test.want, got)
		}
	}
}

func TestSessionRange(t *testing.T) {
	s := testSession()
	if s.FirstFrameIndex() != 10 || s.LastFrameIndex() != 12 {
		t.Fatalf("expected range [10, 12], got [%d, %d]", s.FirstFrameIndex(), s.LastFrameIndex())
	}

	frame, err := s.FrameSample(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := testutil.Diff(frame, Frame{CPUTimeMs: 16.5, GPUTimeMs: 4, SampleCount: 3}); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	if _, err := s.FrameSample(11); !errors.Is(err, errorutil.ErrMissingFrame) {
		t.Fatalf("expected ErrMissingFrame, got %v", err)
	}
	if _, err := s.FrameSample(13); !errors.Is(err, errorutil.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := s.FrameSample(9); !errors.Is(err, errorutil.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSessionFunctionSamples(t *testing.T) {
	s := testSession()
	rows, err := s.FunctionSamples(10, "PlayerLoop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []FunctionRow{
		{Path: "PlayerLoop", Values: map[column.Column]string{column.SelfTime: "0.50"}},
		{Path: "PlayerLoop/Update", Values: map[column.Column]string{column.SelfTime: "1.00", column.GCMemory: "1.0 KB"}},
	}
	if diff := testutil.Diff(rows, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	rows, err = s.FunctionSamples(12, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestValidate(t *testing.T) {
	s := testSession()
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Frames[0].Functions[0].Values["DontSort"] = "1"
	if err := s.Validate(); !errors.Is(err, errorutil.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}

	s = testSession()
	s.Version = 2
	if err := s.Validate(); !errors.Is(err, errorutil.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestLoadSession(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	want := testSession()

	t.Run("plain", func(t *testing.T) {
		key := uuid.New().String() + ".json"
		b, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("we should be able to marshal this: %v", err)
		}
		if err := bucket.WriteAll(ctx, key, b, nil); err != nil {
			t.Fatalf("we should be able to write: %v", err)
		}
		got, err := LoadSession(ctx, bucket, key)
		if err != nil {
			t.Fatalf("we should be able to load the session: %v", err)
		}
		if diff := testutil.Diff(got, want); diff != "" {
			t.Fatalf("Result mismatch: got - want +\n%s", diff)
		}
	})

	t.Run("compressed", func(t *testing.T) {
		key := uuid.New().String() + ".json.lz4"
		if err := storageutil.CompressedWrite(ctx, bucket, key, want); err != nil {
			t.Fatalf("we should be able to write: %v", err)
		}
		got, err := LoadSession(ctx, bucket, key)
		if err != nil {
			t.Fatalf("we should be able to load the session: %v", err)
		}
		if diff := testutil.Diff(got, want); diff != "" {
			t.Fatalf("Result mismatch: got - want +\n%s", diff)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadSession(ctx, bucket, "missing.json")
		if !errors.Is(err, storageutil.ErrObjectNotFound) {
			t.Fatalf("expected ErrObjectNotFound, got %v", err)
		}
	})
}
