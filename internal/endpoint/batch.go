package endpoint

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FindAll runs Find on every cloud using at most workers goroutines.
// Results are index-aligned with clouds. The first failure cancels the
// remaining work and is returned with the failing index.
func (f *Finder) FindAll(ctx context.Context, clouds []PointCloud, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(clouds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cloud := range clouds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := f.Find(cloud)
			if err != nil {
				return fmt.Errorf("cloud %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FindEach is FindAll without the early exit: a cloud that fails leaves a
// zero Result and its error at the same index in errs, and the others still
// run. The returned error is set only when ctx ends before every cloud was
// tried.
func (f *Finder) FindEach(ctx context.Context, clouds []PointCloud, workers int) (results []Result, errs []error, err error) {
	if workers < 1 {
		workers = 1
	}
	results = make([]Result, len(clouds))
	errs = make([]error, len(clouds))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, cloud := range clouds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = f.Find(cloud)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}
