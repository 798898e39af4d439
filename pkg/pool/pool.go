// Package pool provides a worker pool for the independent group operations
// (scalar multiplications, modular exponentiations) that dominate the
// core's runtime: batched Schnorr repetitions, per-row presign proofs, and
// per-coefficient homomorphic evaluations all fan out across a Pool
// (spec.md §5 "Heavy computation ... is delegated to external libraries").
package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of goroutines used to run parallel group
// operations. A zero-valued size picks runtime.NumCPU().
type Pool struct {
	workers int
}

// NewPool returns a pool with the given worker count. size <= 0 uses
// runtime.NumCPU().
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{workers: size}
}

// TearDown releases the pool. Pool holds no background goroutines of its
// own (spec.md §5 "no background threads internal to the core"); TearDown
// exists for symmetry with call sites that defer it unconditionally.
func (p *Pool) TearDown() {}

// Parallelism reports the configured worker count.
func (p *Pool) Parallelism() int { return p.workers }

// Map applies f to every index in [0, n) using up to p.workers goroutines
// at once, collecting results in order. It returns the first error
// encountered, if any, cancelling outstanding work.
func Map[T any](p *Pool, n int, f func(i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(maxInt(p.workers, 1))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := f(i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Each runs f over every index in [0, n), returning the first error.
func Each(p *Pool, n int, f func(i int) error) error {
	_, err := Map(p, n, func(i int) (struct{}, error) {
		return struct{}{}, f(i)
	})
	return err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
