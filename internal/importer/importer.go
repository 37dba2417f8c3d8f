// Package importer drives batch writes where one bad item must not stop the
// rest.
package importer

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Result tallies a batch. Err combines every per-item failure and is nil
// when all items succeeded.
type Result struct {
	Successful int   `json:"successful"`
	Total      int   `json:"total"`
	Err        error `json:"-"`
}

// Failed is the number of items that did not go through.
func (r Result) Failed() int {
	return r.Total - r.Successful
}

// Errors lists the individual failures.
func (r Result) Errors() []error {
	return multierr.Errors(r.Err)
}

// Run calls create for each item in order and keeps going after failures.
// A cancelled context stops the batch; the remaining items count as failed.
func Run[T any](ctx context.Context, items []T, create func(context.Context, T) error) Result {
	res := Result{Total: len(items)}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			res.Err = multierr.Append(res.Err, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}
		if err := create(ctx, item); err != nil {
			res.Err = multierr.Append(res.Err, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}
		res.Successful++
	}
	return res
}
