// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package benchmark compares eager and lazy decoding of find results. Cases follow the shape of
// testing.B benchmarks so they run both under go test and from the rawbench command.
package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is the subset of *testing.B a case uses to exclude setup from its timing.
type TimerManager interface {
	ResetTimer()
	StartTimer()
	StopTimer()
}

type BenchCase func(context.Context, TimerManager, int) error
type BenchFunction func(*testing.B)

func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

// Suite holds the find cases run against one collection.
type Suite struct {
	// Open returns a fresh source over the collection for each find.
	Open Opener
	// Documents is the number of documents each find must return. Zero disables the check.
	Documents int
	// DocumentSize is the encoded size of one document, used to report throughput in bytes.
	DocumentSize int
	// Iterations is the number of finds per trial.
	Iterations int
	Runtime    time.Duration
	Options    []cursor.Option
}

func (s *Suite) iterations() int {
	if s.Iterations <= 0 {
		return ten
	}
	return s.Iterations
}

func (s *Suite) runtime() time.Duration {
	if s.Runtime <= 0 {
		return StandardRuntime
	}
	return s.Runtime
}

// Cases returns the find cases of s in their reporting order: each eager case is followed by its
// lazy counterpart.
func (s *Suite) Cases() []*CaseDefinition {
	benches := []BenchCase{
		s.FindEager,
		s.FindRaw,
		s.FindEagerJSON,
		s.FindRawJSON,
		s.FindStepOwned,
		s.FindStepView,
	}
	cases := make([]*CaseDefinition, 0, len(benches))
	for _, bench := range benches {
		cases = append(cases, &CaseDefinition{
			Bench:   bench,
			Count:   s.iterations(),
			Size:    s.iterations() * s.Documents * s.DocumentSize,
			Runtime: s.runtime(),
		})
	}
	return cases
}

// ParallelCases returns the cases of s with n cursors running concurrently per find.
func (s *Suite) ParallelCases(n int) []*CaseDefinition {
	cases := s.Cases()
	for _, c := range cases {
		c.Label = parallelName(c.Name(), n)
		c.Bench = Parallel(n, c.Bench)
		c.Size *= n
	}
	return cases
}
