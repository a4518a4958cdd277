/*
Copyright © 2019 the alfpp authors.
This file is part of alfpp.

alfpp is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

alfpp is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with alfpp.  If not, see <http://www.gnu.org/licenses/>.
*/

package alfpp

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Store is an append-only collection of MetricRecords.
type Store interface {
	Insert(ctx context.Context, r *MetricRecord) error
	InsertMany(ctx context.Context, rs []*MetricRecord) error
	All(ctx context.Context) ([]*MetricRecord, error)
}

// RunConfig configures an aggregation run.
type RunConfig struct {
	// Workers is the number of timesteps processed concurrently. The
	// default is runtime.GOMAXPROCS(0).
	Workers int

	// QueueDepth is the number of timesteps queued per worker. The
	// default is 4.
	QueueDepth int

	// TaskTimeout, if positive, bounds the time a worker waits for each
	// timestep. Reads cannot be interrupted, so a timed-out timestep keeps
	// reading in the background and holds its rasters until it finishes.
	// Its result is discarded.
	TaskTimeout time.Duration

	// FailFast aborts the run at the first failed timestep. Nothing is
	// inserted into the store in that case.
	FailFast bool

	Log logrus.FieldLogger
}

// RunSummary describes a completed run.
type RunSummary struct {
	// ID identifies the run in log messages.
	ID string

	// Processed is the number of records inserted into the store.
	Processed int

	// Failed holds the timesteps that could not be processed, in input order.
	Failed []*TimestepError

	// VegDrops holds the number of cells per vegetation code dropped
	// across all timesteps.
	VegDrops map[int32]int
}

// Run processes timesteps with proc on a pool of workers and inserts the
// resulting records into store in a single batch, sorted by replicate and
// year. Unless cfg.FailFast is set, failed timesteps are logged and
// reported in the summary while the rest of the run continues.
func Run(ctx context.Context, cfg RunConfig, proc *Processor, timesteps []*Timestep, store Store) (*RunSummary, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(timesteps) && len(timesteps) > 0 {
		workers = len(timesteps)
	}
	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = 4
	}
	sum := &RunSummary{ID: uuid.New().String(), VegDrops: make(map[int32]int)}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("run_id", sum.ID)
	log.WithFields(logrus.Fields{"timesteps": len(timesteps), "workers": workers}).Info("starting run")
	start := time.Now()

	results := make([]*Result, len(timesteps))
	errs := make([]*TimestepError, len(timesteps))

	g, gctx := errgroup.WithContext(ctx)
	tasks := make(chan int, workers*depth)
	g.Go(func() error {
		defer close(tasks)
		for i := range timesteps {
			select {
			case tasks <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range tasks {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := processTimeout(gctx, proc, timesteps[i], cfg.TaskTimeout)
				if err != nil {
					var tsErr *TimestepError
					if !errors.As(err, &tsErr) {
						return err
					}
					errs[i] = tsErr
					if cfg.FailFast {
						return tsErr
					}
					continue
				}
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []*MetricRecord
	for i, res := range results {
		if err := errs[i]; err != nil {
			sum.Failed = append(sum.Failed, err)
			log.WithFields(logrus.Fields{
				"replicate": err.Replicate,
				"year":      err.Year,
			}).WithError(err.Err).Error("skipping timestep")
			continue
		}
		records = append(records, res.Record)
		for code, n := range res.VegDrops {
			sum.VegDrops[code] += n
		}
	}
	SortRecords(records)

	if len(records) > 0 {
		if err := store.InsertMany(ctx, records); err != nil {
			return nil, fmt.Errorf("alfpp: inserting %d records: %v", len(records), err)
		}
	}
	sum.Processed = len(records)

	fields := logrus.Fields{
		"processed": sum.Processed,
		"failed":    len(sum.Failed),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}
	if len(sum.VegDrops) > 0 {
		fields["veg_codes_dropped"] = dropCodes(sum.VegDrops)
	}
	log.WithFields(fields).Info("finished run")
	return sum, nil
}

// processTimeout runs proc.Process, giving up after timeout if it is
// positive or when ctx is done.
func processTimeout(ctx context.Context, proc *Processor, ts *Timestep, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		return proc.Process(ts)
	}
	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := proc.Process(ts)
		done <- outcome{res, err}
	}()
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case o := <-done:
		return o.res, o.err
	case <-t.C:
		return nil, &TimestepError{Replicate: ts.Replicate, Year: ts.Year,
			Err: fmt.Errorf("timed out after %v", timeout)}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
