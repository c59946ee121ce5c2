package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Common runner errors.
var (
	ErrNilTask = errors.New("task cannot be nil")
	ErrNoTasks = errors.New("tasks slice cannot be empty")
)

// Task is one unit of work.
type Task func(ctx context.Context) error

// ProgressCallback is invoked after each task settles. Calls are serialized
// and see the settled count increase by one each time.
type ProgressCallback func(snap ProgressSnapshot)

// Runner settles a set of tasks concurrently. Every task starts at once.
type Runner struct {
	onProgress ProgressCallback
}

// NewRunner creates a runner without a progress callback.
func NewRunner() *Runner {
	return &Runner{}
}

// WithProgressCallback sets a progress callback for the runner.
func (r *Runner) WithProgressCallback(callback ProgressCallback) *Runner {
	r.onProgress = callback
	return r
}

// Outcome is the settled result of a Settle call.
type Outcome struct {
	// Errs holds one entry per task, nil for tasks that succeeded.
	Errs []error
	// First is the first failure in completion order, nil if none failed.
	First error
	// Combined aggregates every failure, nil if none failed.
	Combined *multierror.Error
}

// Failed returns the number of failed tasks.
func (o Outcome) Failed() int {
	n := 0
	for _, err := range o.Errs {
		if err != nil {
			n++
		}
	}
	return n
}

// Err returns the combined error, or nil.
func (o Outcome) Err() error {
	return o.Combined.ErrorOrNil()
}

// Settle runs all tasks and waits for every one of them to return. Task
// failures never cancel the other tasks. The returned error is only non-nil
// for invalid input; task failures are reported through the Outcome.
func (r *Runner) Settle(ctx context.Context, tasks []Task) (Outcome, error) {
	if len(tasks) == 0 {
		return Outcome{}, ErrNoTasks
	}
	for _, task := range tasks {
		if task == nil {
			return Outcome{}, ErrNilTask
		}
	}

	out := Outcome{Errs: make([]error, len(tasks))}
	progress := NewProgress(len(tasks))
	var mu sync.Mutex

	// A plain Group, not WithContext: one failure must not cancel the rest.
	var g errgroup.Group

	for i, task := range tasks {
		g.Go(func() error {
			err := runTask(ctx, task, i)

			mu.Lock()
			if err != nil {
				out.Errs[i] = err
				if out.First == nil {
					out.First = err
				}
				out.Combined = multierror.Append(out.Combined, err)
			}
			snap := progress.Record(err)
			if r.onProgress != nil {
				r.onProgress(snap)
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out, nil
}

// runTask converts a panic in task into an error so the group keeps running.
func runTask(ctx context.Context, task Task, index int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task %d panicked: %v", index, rec)
		}
	}()
	return task(ctx)
}
