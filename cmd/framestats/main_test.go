package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/source"
	"github.com/getsentry/framestats/internal/storageutil"
	"github.com/getsentry/framestats/internal/testutil"
)

func writeSession(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	session := source.Session{
		Version:    source.Version,
		FirstFrame: 10,
		Frames: []*source.RecordedFrame{
			{
				CPUTimeMs: 16,
				GPUTimeMs: 4,
				Functions: []source.RecordedFunction{
					{Path: "PlayerLoop", Values: map[string]string{"Calls": "1", "SelfTime": "2"}},
					{Path: "PlayerLoop/Update", Values: map[string]string{"Calls": "3", "SelfTime": "5"}},
				},
			},
			{
				CPUTimeMs: 17.5,
				GPUTimeMs: 5,
				Functions: []source.RecordedFunction{
					{Path: "PlayerLoop", Values: map[string]string{"Calls": "1", "SelfTime": "4"}},
				},
			},
		},
	}
	b, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "session.json"), b, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	dir := writeSession(t)
	out, err := run(t, "stats", "--session-bucket", "file://"+dir, "--columns", "FunctionName,Calls,SelfTime", "session.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stats []struct {
		FunctionPath string `json:"functionPath"`
		Values       []struct {
			Column string `json:"column"`
			Value  string `json:"value"`
		} `json:"values"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("output should be valid JSON: %v\n%s", err, out)
	}
	got := make(map[string]string)
	for _, s := range stats {
		for _, v := range s.Values {
			if v.Column == "SelfTime" {
				got[s.FunctionPath] = v.Value
			}
		}
	}
	want := map[string]string{
		"PlayerLoop":        "6.00",
		"PlayerLoop/Update": "5.00",
	}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if stats[0].FunctionPath != "PlayerLoop" {
		t.Fatalf("expected PlayerLoop first, got %q", stats[0].FunctionPath)
	}
}

func TestStatsCommandWorkingDirectory(t *testing.T) {
	dir := writeSession(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("FRAMESTATS_SESSION_BUCKET", "")

	out, err := run(t, "stats", "--columns", "FunctionName,SelfTime", "--table", "session.json")
	if err != nil {
		t.Fatalf("sessions should be read from the working directory: %v", err)
	}
	want := "Function           Self ms\nPlayerLoop         6.00\nPlayerLoop/Update  5.00\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestStatsCommandMissingSession(t *testing.T) {
	dir := writeSession(t)
	_, err := run(t, "stats", "--session-bucket", "file://"+dir, "missing.json")
	if !errors.Is(err, storageutil.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if reportable(err) {
		t.Fatal("unknown sessions should not be reported")
	}
}

func TestStatsCommandTable(t *testing.T) {
	dir := writeSession(t)
	out, err := run(t, "stats", "--session-bucket", "file://"+dir, "--columns", "FunctionName,SelfTime", "--reducer", "max", "--table", "session.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Function           Self ms\nPlayerLoop/Update  5.00\nPlayerLoop         4.00\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestStatsCommandInvalidReducer(t *testing.T) {
	dir := writeSession(t)
	_, err := run(t, "stats", "--session-bucket", "file://"+dir, "--reducer", "p95", "session.json")
	if !errors.Is(err, errorutil.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	if reportable(err) {
		t.Fatal("invalid options should not be reported")
	}
}

func TestExportCommand(t *testing.T) {
	dir := writeSession(t)
	path := filepath.Join(t.TempDir(), "frames.csv")

	out, err := run(t, "export", "--session-bucket", "file://"+dir, "--out", path, "session.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Fatalf("expected the output path to be printed, got %q", out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Frame;CPU;GPU; PluginRenderTime\n0;16;4;\n1;17.5;5;\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, b)
	}

	_, err = run(t, "export", "--session-bucket", "file://"+dir, "--out", path, "session.json")
	if !errors.Is(err, errorutil.ErrFileExists) {
		t.Fatalf("expected ErrFileExists, got %v", err)
	}
	_, err = run(t, "export", "--session-bucket", "file://"+dir, "--out", path, "--force", "--frame", "11", "session.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Frame;CPU;GPU; PluginRenderTime\n0;17.5;5;\n"; string(b) != want {
		t.Fatalf("expected %q, got %q", want, b)
	}
}

func TestExportCommandToBucket(t *testing.T) {
	dir := writeSession(t)
	out, err := run(t, "export", "--session-bucket", "file://"+dir, "--bucket", "--format", "json", "--function", "PlayerLoop/Update", "session.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := strings.TrimSpace(out)
	if !strings.HasSuffix(key, ".json") {
		t.Fatalf("expected a JSON object key, got %q", key)
	}
	b, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		t.Fatalf("the export should be in the bucket: %v", err)
	}
	if !bytes.Contains(b, []byte(`"functionPath":"PlayerLoop/Update"`)) || bytes.Contains(b, []byte(`"functionPath":"PlayerLoop",`)) {
		t.Fatalf("only the selected function should be exported: %s", b)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "framestats dev") {
		t.Fatalf("unexpected version %q", out)
	}
}
