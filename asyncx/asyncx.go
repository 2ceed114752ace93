// Package asyncx runs a function over a slice concurrently.
package asyncx

import (
	"context"
	"sync"
)

// Result is the outcome of one item
type Result[R any] struct {
	Value R
	Err   error
}

// Map calls fn for every item with at most limit calls in flight and returns
// the results in item order. A limit of zero or less runs all items at once.
// Once ctx is done no further calls start and the remaining items carry ctx.Err().
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, item := range items {
		if ctx.Err() == nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
			}
		}
		if err := ctx.Err(); err != nil {
			for j := i; j < len(items); j++ {
				results[j].Err = err
			}
			break
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
		}(i, item)
	}
	wg.Wait()
	return results
}

// Errors returns the indexes of failed results
func Errors[R any](results []Result[R]) []int {
	var failed []int
	for i, r := range results {
		if r.Err != nil {
			failed = append(failed, i)
		}
	}
	return failed
}
