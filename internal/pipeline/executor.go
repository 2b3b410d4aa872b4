package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fmgvault/internal/logging"
	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// job is a unit of work for the executor. Path is vault-relative.
type job struct {
	Kind world.Kind
	ID   int
	Path string
	exec func() (Outcome, string, error)
}

// executor runs batches of jobs on a bounded group. Every job settles; a
// failure or panic in one never cancels the others.
type executor struct {
	runID         string
	workers       int
	layout        *vault.Layout
	manifest      *vault.Manifest
	skipUnchanged bool
}

// settle runs jobs and returns their results in job order.
func (e *executor) settle(ctx context.Context, jobs []job) []TaskResult {
	results := make([]TaskResult, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = e.do(ctx, j)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *executor) do(ctx context.Context, j job) (res TaskResult) {
	start := time.Now()
	res = TaskResult{Kind: j.Kind, ID: j.ID, Path: j.Path}
	defer func() {
		if p := recover(); p != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic in %s %d: %v", j.Kind, j.ID, p)
		}
		res.Duration = time.Since(start)
		if res.Failed() {
			logging.Get(logging.CategoryPipeline).Error("%s %d (%s): %v", j.Kind, j.ID, j.Path, res.Err)
			return
		}
		logging.PipelineDebug("%s %d (%s): %s in %v", j.Kind, j.ID, j.Path, res.Outcome, res.Duration)
	}()

	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("not started: %w", err)
		return res
	}
	outcome, hash, err := j.exec()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Outcome = outcome
	res.Hash = hash
	e.manifest.Record(j.Path, vault.ManifestEntry{
		Hash:      hash,
		Kind:      string(j.Kind),
		EntityID:  j.ID,
		RunID:     e.runID,
		WrittenAt: time.Now().UTC(),
	})
	return res
}

// noteJob renders a note and merges it into whatever is on disk.
func (e *executor) noteJob(kind world.Kind, id int, path string, render func() (string, error)) job {
	return job{
		Kind: kind,
		ID:   id,
		Path: path,
		exec: func() (Outcome, string, error) {
			text, err := render()
			if err != nil {
				return OutcomeFailed, "", fmt.Errorf("render %s %d: %w", kind, id, err)
			}
			wr, err := vault.WriteNote(e.layout.Abs(path), text, e.skipUnchanged)
			if err != nil {
				return OutcomeFailed, "", err
			}
			logging.Vault("%s changed=%t bytes=%d", path, wr.Changed, wr.Bytes)
			if wr.Changed || wr.Created {
				return OutcomeWritten, wr.Hash, nil
			}
			return OutcomeUnchanged, wr.Hash, nil
		},
	}
}

// copyJob snapshots a source file into the assets directory.
func (e *executor) copyJob(src, path string) job {
	return job{
		Kind: KindAsset,
		ID:   -1,
		Path: path,
		exec: func() (Outcome, string, error) {
			if _, err := os.Stat(src); err != nil {
				return OutcomeFailed, "", fmt.Errorf("source %s: %w", src, err)
			}
			prev, _ := e.manifest.Get(path)
			hash, err := vault.CopyFile(src, e.layout.Abs(path))
			if err != nil {
				return OutcomeFailed, "", err
			}
			if prev.Hash == hash {
				return OutcomeUnchanged, hash, nil
			}
			return OutcomeWritten, hash, nil
		},
	}
}
