package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"fmgvault/internal/logging"
	"fmgvault/internal/render"
	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// Kinds used for notes and files that are not world entities.
const (
	KindHomepage world.Kind = "homepage"
	KindSummary  world.Kind = "summary"
	KindAsset    world.Kind = "asset"
)

// Sources are the input files of a run. One of JSON or Map is required; the
// JSON export wins when both are given.
type Sources struct {
	JSON  string
	Map   string
	Image string
}

// Recorder persists a finished report, e.g. in the run ledger.
type Recorder interface {
	RecordRun(ctx context.Context, r *Report) error
}

// Options configure one run.
type Options struct {
	Sources        Sources
	Output         string
	Dirs           vault.Dirs
	Workers        int
	Timeout        time.Duration
	IncludeRemoved bool
	SkipUnchanged  bool
	Recorder       Recorder
}

func (o *Options) normalize() error {
	if o.Sources.JSON == "" && o.Sources.Map == "" {
		return errors.New("no input: a .json export or a .map save is required")
	}
	info, err := os.Stat(o.Output)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output %s is not a directory", o.Output)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Dirs == (vault.Dirs{}) {
		o.Dirs = vault.DefaultDirs()
	}
	return nil
}

// LoadSources decodes the primary input of src.
func LoadSources(src Sources) (*world.Dataset, error) {
	path := src.JSON
	if path == "" {
		path = src.Map
	}
	if path == "" {
		return nil, errors.New("no input: a .json export or a .map save is required")
	}
	return world.Load(path)
}

// Run converts the sources into notes under opts.Output. Load and validation
// errors are returned before anything is written; per-document failures are
// collected in the report instead.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Output:  opts.Output,
	}
	logging.Pipeline("run %s: output=%s workers=%d", report.RunID, opts.Output, opts.Workers)

	ds, err := LoadSources(opts.Sources)
	if err != nil {
		return nil, err
	}
	report.Format = ds.Format
	report.MapName = ds.Info.MapName
	report.Warnings = append(report.Warnings, ds.Warnings...)

	atlas := world.NewAtlas(ds)
	layout, err := vault.NewLayout(opts.Output, opts.Dirs)
	if err != nil {
		return nil, err
	}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	manifest := vault.LoadManifest(layout.ManifestPath())
	exec := &executor{
		runID:         report.RunID,
		workers:       opts.Workers,
		layout:        layout,
		manifest:      manifest,
		skipUnchanged: opts.SkipUnchanged,
	}
	renderer := render.New(atlas, layout, render.Options{IncludeRemoved: opts.IncludeRemoved})

	plan := BuildPlan(atlas, layout, opts.IncludeRemoved)
	report.Skipped = plan.Skipped
	report.Collisions = plan.CollisionPaths()
	for _, path := range report.Collisions {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d notes share %s; the last write wins", len(plan.Collisions[path]), path))
	}

	entityJobs := make([]job, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		entityJobs = append(entityJobs, exec.noteJob(t.Kind, t.ID, t.Path, func() (string, error) {
			return renderer.Render(t.Kind, t.Entity)
		}))
	}
	report.Documents = exec.settle(ctx, entityJobs)

	// Summary pages only link to paths decided by the plan, so they run after
	// every entity note has settled.
	summaryJobs := []job{exec.noteJob(KindHomepage, -1, layout.HomepagePath(), renderer.Homepage)}
	for _, kind := range render.SummaryKinds {
		path, _ := layout.SummaryPath(kind)
		summaryJobs = append(summaryJobs, exec.noteJob(KindSummary, -1, path, func() (string, error) {
			return renderer.Summary(kind)
		}))
	}
	report.Documents = append(report.Documents, exec.settle(ctx, summaryJobs)...)

	report.Copies = exec.settle(ctx, copyJobs(exec, layout, opts.Sources, render.AssetBase(ds)))

	report.Stale = manifest.Seal(func(rel string) bool {
		_, err := os.Stat(layout.Abs(rel))
		return err == nil
	})
	if err := manifest.Save(); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("manifest not saved: %v", err))
	}
	report.Finished = time.Now()

	if opts.Recorder != nil {
		if err := opts.Recorder.RecordRun(context.WithoutCancel(ctx), report); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("run not recorded: %v", err))
		}
	}

	counts := report.Counts()
	logging.Get(logging.CategoryPipeline).StructuredLog("info", "run finished", map[string]interface{}{
		"run":       report.RunID,
		"status":    string(report.Status()),
		"written":   counts[OutcomeWritten],
		"unchanged": counts[OutcomeUnchanged],
		"failed":    counts[OutcomeFailed],
		"stale":     len(report.Stale),
		"duration":  report.Duration().String(),
	})
	return report, nil
}

func copyJobs(exec *executor, layout *vault.Layout, src Sources, base string) []job {
	var jobs []job
	add := func(from, ext string) {
		if from == "" {
			return
		}
		jobs = append(jobs, exec.copyJob(from, layout.AssetsDir()+"/"+base+ext))
	}
	add(src.JSON, ".json")
	add(src.Map, ".map")
	if src.Image != "" {
		ext := strings.ToLower(filepath.Ext(src.Image))
		if ext == "" {
			ext = ".svg"
		}
		add(src.Image, ext)
	}
	return jobs
}
