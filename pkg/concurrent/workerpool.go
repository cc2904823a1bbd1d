// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package concurrent runs independent jobs on a bounded number of goroutines.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many jobs run at once. A pool of one worker runs jobs
// sequentially in submission order.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Size returns the number of workers.
func (wp *WorkerPool) Size() int {
	return wp.workerCount
}

// Run executes the jobs and returns the first error encountered. The context
// passed to each job is cancelled once any job fails, and jobs that have not
// started by then are skipped.
func (wp *WorkerPool) Run(ctx context.Context, jobs ...func(ctx context.Context) error) error {
	if len(jobs) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, job := range jobs {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return job(groupCtx)
		})
	}

	return g.Wait()
}

// RunAll executes every job regardless of failures and returns a slice with
// one entry per job, nil for jobs that succeeded. Jobs not started before ctx
// is done report ctx.Err().
func (wp *WorkerPool) RunAll(ctx context.Context, jobs ...func(ctx context.Context) error) []error {
	if len(jobs) == 0 {
		return nil
	}

	// Each goroutine writes only its own index.
	errs := make([]error, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = job(ctx)
			return nil
		})
	}

	_ = g.Wait()
	return errs
}

// Map applies fn to every input on the pool and returns the results in input
// order. The first error cancels the remaining work and is returned with a nil
// slice.
func Map[T, R any](ctx context.Context, wp *WorkerPool, inputs []T, fn func(ctx context.Context, index int, input T) (R, error)) ([]R, error) {
	results := make([]R, len(inputs))

	jobs := make([]func(context.Context) error, len(inputs))
	for i, input := range inputs {
		jobs[i] = func(ctx context.Context) error {
			result, err := fn(ctx, i, input)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		}
	}

	if err := wp.Run(ctx, jobs...); err != nil {
		return nil, err
	}
	return results, nil
}

