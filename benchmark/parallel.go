// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel returns a case that runs n copies of bench concurrently, each with its own cursors.
// The first failure cancels the others.
func Parallel(n int, bench BenchCase) BenchCase {
	return func(ctx context.Context, tm TimerManager, iters int) error {
		g, ctx := errgroup.WithContext(ctx)
		tm.ResetTimer()
		for i := 0; i < n; i++ {
			g.Go(func() error {
				return bench(ctx, nopTimer{}, iters)
			})
		}
		err := g.Wait()
		tm.StopTimer()
		return err
	}
}
