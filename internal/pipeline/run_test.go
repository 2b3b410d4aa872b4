package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

const tinyJSON = "../world/testdata/tiny.json"

type fakeRecorder struct {
	reports []*Report
	err     error
}

func (f *fakeRecorder) RecordRun(_ context.Context, r *Report) error {
	f.reports = append(f.reports, r)
	return f.err
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Tinyland.svg")
	require.NoError(t, os.WriteFile(path, []byte("<svg/>"), 0644))
	return path
}

// mutatedFixture writes a copy of the tiny export with mutate applied.
func mutatedFixture(t *testing.T, mutate func(doc map[string]any)) string {
	t.Helper()
	raw, err := os.ReadFile(tinyJSON)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	mutate(doc)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tiny.json")
	require.NoError(t, os.WriteFile(path, out, 0644))
	return path
}

func tinyOptions(t *testing.T, output string) Options {
	return Options{
		Sources: Sources{JSON: tinyJSON, Image: writeImage(t)},
		Output:  output,
		Workers: 4,
	}
}

func readNote(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRun_Tiny(t *testing.T) {
	out := t.TempDir()
	rec := &fakeRecorder{}
	opts := tinyOptions(t, out)
	opts.Recorder = rec

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	for _, f := range report.Failures() {
		t.Errorf("unexpected failure: %s: %v", f.Path, f.Err)
	}
	assert.Equal(t, StatusSuccess, report.Status())
	assert.Equal(t, world.FormatJSON, report.Format)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, rec.reports, 1)
	assert.Same(t, report, rec.reports[0])

	assert.Contains(t, readNote(t, out, "1. World/Burgs/Alpha.md"), "# Alpha")
	assert.Contains(t, readNote(t, out, "1. World/1. World.md"), "# Tinyland")
	assert.Contains(t, readNote(t, out, "1. World/Cultures/Cultures.md"), "```dataview")
	assert.Equal(t, "<svg/>", readNote(t, out, "z_Assets/tinyland.svg"))
	_, err = os.Stat(filepath.Join(out, "z_Assets", "tinyland.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "1. World", "Burgs", "Gamma.md"))
	assert.True(t, os.IsNotExist(err), "removed burg skipped")
	_, err = os.Stat(filepath.Join(out, "z_Map", ".fmgvault", "manifest.json"))
	assert.NoError(t, err)

	assert.Len(t, report.Documents, 25+1+len([]world.Kind{world.KindCulture, world.KindBurg, world.KindMarker}))
	assert.Len(t, report.Copies, 2)
}

func TestRun_IdempotentAndPreservesCustomContent(t *testing.T) {
	out := t.TempDir()
	opts := tinyOptions(t, out)
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	rel := "1. World/Burgs/Alpha.md"
	original := readNote(t, out, rel)
	edited := strings.Replace(original,
		vault.CustomBlock(""),
		vault.CustomBlock("Alpha smells of bread."), 1)
	require.NotEqual(t, original, edited)
	require.NoError(t, os.WriteFile(filepath.Join(out, filepath.FromSlash(rel)), []byte(edited), 0644))

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	first := readNote(t, out, rel)
	assert.Equal(t, edited, first)

	opts.SkipUnchanged = true
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, readNote(t, out, rel))
	assert.Zero(t, report.Counts()[OutcomeWritten], "nothing changed on the third run")
	assert.Equal(t, StatusSuccess, report.Status())
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	src := mutatedFixture(t, func(doc map[string]any) {
		notes := doc["notes"].([]any)
		doc["notes"] = notes[1:]
	})
	out := t.TempDir()
	opts := tinyOptions(t, out)
	opts.Sources.JSON = src

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, report.Status())

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, world.KindMarker, failures[0].Kind)
	assert.Equal(t, 0, failures[0].ID)
	var refErr *world.ReferenceError
	assert.True(t, errors.As(failures[0].Err, &refErr))
	assert.Equal(t, 1, report.ReferenceFailures())

	assert.Contains(t, readNote(t, out, "1. World/PointsOfInterest/Castle Rock.md"), "Castle Rock")
	assert.Contains(t, readNote(t, out, "1. World/Routes/roads-0.md"), "Unknown Marker 0")
}

func TestRun_LegacyOnlyFailsBurgs(t *testing.T) {
	out := t.TempDir()
	opts := Options{Sources: Sources{Map: "../world/testdata/tiny.map"}, Output: out, Workers: 2}
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, world.FormatLegacy, report.Format)
	assert.Equal(t, StatusPartial, report.Status())
	for _, f := range report.Failures() {
		assert.Equal(t, world.KindBurg, f.Kind, f.Path)
	}
	assert.Equal(t, 2, report.ReferenceFailures())
	_, err = os.Stat(filepath.Join(out, "z_Assets", "tinyland.map"))
	assert.NoError(t, err)
}

func TestRun_DeadlineSettlesEveryTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, tinyOptions(t, t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, report.Status())
	for _, d := range report.Documents {
		require.True(t, d.Failed())
		assert.ErrorIs(t, d.Err, context.Canceled)
	}
}

func TestRun_ReportsStaleNotes(t *testing.T) {
	out := t.TempDir()
	opts := tinyOptions(t, out)
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.Sources.JSON = mutatedFixture(t, func(doc map[string]any) {
		rivers := doc["pack"].(map[string]any)["rivers"].([]any)
		rivers[1].(map[string]any)["name"] = "Quick Run"
	})
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. World/Rivers/Little Run.md"}, report.Stale)
	_, err = os.Stat(filepath.Join(out, "1. World", "Rivers", "Little Run.md"))
	assert.NoError(t, err, "stale notes are kept")
}

func TestRun_RecorderErrorIsWarning(t *testing.T) {
	opts := tinyOptions(t, t.TempDir())
	opts.Recorder = &fakeRecorder{err: errors.New("disk full")}
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(report.Warnings, "\n"), "disk full")
}

func TestRun_FatalErrorsBeforeWrites(t *testing.T) {
	out := t.TempDir()

	_, err := Run(context.Background(), Options{Output: out})
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{Sources: Sources{JSON: tinyJSON}, Output: filepath.Join(out, "missing")})
	assert.Error(t, err)

	bad := mutatedFixture(t, func(doc map[string]any) {
		doc["info"].(map[string]any)["version"] = "0.5"
	})
	_, err = Run(context.Background(), Options{Sources: Sources{JSON: bad}, Output: out})
	var verErr *world.VersionError
	require.True(t, errors.As(err, &verErr))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written")
}

func TestExecutor_RecoversPanics(t *testing.T) {
	layout := testLayout(t)
	e := &executor{
		workers:  2,
		layout:   layout,
		manifest: vault.LoadManifest(filepath.Join(t.TempDir(), "m.json")),
	}
	var ran atomic.Int32
	jobs := []job{
		{Kind: world.KindBurg, ID: 1, Path: "a.md", exec: func() (Outcome, string, error) {
			panic("boom")
		}},
		e.noteJob(world.KindBurg, 2, "b.md", func() (string, error) {
			ran.Add(1)
			return vault.CustomBlock("") + "\n", nil
		}),
		e.noteJob(world.KindBurg, 3, "c.md", func() (string, error) {
			ran.Add(1)
			return "no region", nil
		}),
	}
	results := e.settle(context.Background(), jobs)
	require.Len(t, results, 3)

	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Err.Error(), "boom")
	assert.Equal(t, OutcomeWritten, results[1].Outcome)
	assert.True(t, results[2].Failed())
	assert.ErrorIs(t, results[2].Err, vault.ErrNoCustomRegion)
	assert.Equal(t, int32(2), ran.Load())
}

func TestReport_Status(t *testing.T) {
	ok := TaskResult{Outcome: OutcomeWritten}
	same := TaskResult{Outcome: OutcomeUnchanged}
	bad := TaskResult{Outcome: OutcomeFailed, Err: errors.New("x")}

	assert.Equal(t, StatusSuccess, (&Report{}).Status())
	assert.Equal(t, StatusSuccess, (&Report{Documents: []TaskResult{ok, same}}).Status())
	assert.Equal(t, StatusPartial, (&Report{Documents: []TaskResult{ok, bad}}).Status())
	assert.Equal(t, StatusPartial, (&Report{Documents: []TaskResult{ok}, Copies: []TaskResult{bad}}).Status())
	assert.Equal(t, StatusFailure, (&Report{Documents: []TaskResult{bad}}).Status())
}
