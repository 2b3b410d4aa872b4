package store

import (
	"context"

	"fmgvault/internal/logging"
	"fmgvault/internal/pipeline"
)

// Deferred opens the ledger only when a run is recorded, so nothing is
// created on disk for runs that fail validation.
type Deferred struct {
	Path string
}

var _ pipeline.Recorder = Deferred{}

// RecordRun opens the ledger, records r and closes it again.
func (d Deferred) RecordRun(ctx context.Context, r *pipeline.Report) error {
	l, err := Open(d.Path)
	if err != nil {
		logging.StoreError("open %s: %v", d.Path, err)
		return err
	}
	defer l.Close()
	if err := l.RecordRun(ctx, r); err != nil {
		logging.StoreError("record run %s: %v", r.RunID, err)
		return err
	}
	return nil
}
