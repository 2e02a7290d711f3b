// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/patrickfreed/raw-bson-benchmarks/internal/logger"
)

type CaseDefinition struct {
	Bench   BenchCase
	Count   int
	Size    int
	Runtime time.Duration

	// Label replaces the name derived from Bench.
	Label string
	// MinTrials defaults to MinIterations and Timeout to ExecutionTimeout.
	MinTrials int
	Timeout   time.Duration

	Logger *logger.Logger
	Out    io.Writer

	startAt time.Time
}

func (c *CaseDefinition) minTrials() int {
	if c.MinTrials <= 0 {
		return MinIterations
	}
	return c.MinTrials
}

func (c *CaseDefinition) timeout() time.Duration {
	if c.Timeout <= 0 {
		return ExecutionTimeout
	}
	return c.Timeout
}

func (c *CaseDefinition) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Run runs trials of the case until its runtime has elapsed and at least the minimum number of
// trials completed, or until the execution timeout. A failing trial ends the run.
func (c *CaseDefinition) Run(ctx context.Context) *BenchResult {
	out := &BenchResult{
		DataSize:   c.Size,
		Name:       c.Name(),
		Operations: c.Count,
	}
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, c.timeout())
	defer cancel()

	fmt.Fprintln(c.out(), "=== RUN", out.Name)
	c.Logger.Print(logger.InfoLevel, &logger.BenchmarkMessage{
		MessageLiteral: logger.BenchmarkMessageCaseStartedDefault,
		Case:           out.Name,
	})
	c.startAt = time.Now()
	for ctx.Err() == nil {
		if time.Since(c.startAt) > c.Runtime && out.Trials >= c.minTrials() {
			break
		}

		res := Result{
			Iterations: c.Count,
		}
		tm := &timer{}
		tm.StartTimer()
		res.Error = c.Bench(ctx, tm, c.Count)
		tm.StopTimer()
		res.Duration = tm.elapsed

		if errors.Is(res.Error, context.Canceled) || errors.Is(res.Error, context.DeadlineExceeded) {
			break
		}

		out.Trials++
		out.Raw = append(out.Raw, res)
		if res.Error != nil {
			break
		}
	}
	out.Duration = time.Since(c.startAt)

	msg := &logger.BenchmarkMessage{
		MessageLiteral: logger.BenchmarkMessageCaseCompletedDefault,
		Case:           out.Name,
		Iterations:     out.Trials,
		Duration:       out.Duration,
	}
	if out.HasErrors() {
		msg.MessageLiteral = logger.BenchmarkMessageCaseFailedDefault
		msg.Failure = errors.New(strings.Join(out.errReport(), "; "))
		fmt.Fprintf(c.out(), "--- FAIL: %s (%s)\n", out.Name, out.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(c.out(), "--- PASS: %s (%s)\n", out.Name, out.Duration.Round(time.Millisecond))
	}
	c.Logger.Print(logger.InfoLevel, msg)

	return out
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("name=%s, count=%d, runtime=%s timeout=%s",
		c.Name(), c.Count, c.Runtime, c.timeout())
}

func (c *CaseDefinition) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return getName(c.Bench)
}

func getName(i interface{}) string {
	n := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	n = strings.TrimSuffix(n, "-fm")
	parts := strings.Split(n, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return n
}

func parallelName(name string, n int) string {
	return fmt.Sprintf("%sParallel%d", name, n)
}

// timer implements TimerManager with the semantics of *testing.B.
type timer struct {
	start   time.Time
	elapsed time.Duration
	running bool
}

func (t *timer) ResetTimer() {
	if t.running {
		t.start = time.Now()
	}
	t.elapsed = 0
}

func (t *timer) StartTimer() {
	if !t.running {
		t.start = time.Now()
		t.running = true
	}
}

func (t *timer) StopTimer() {
	if t.running {
		t.elapsed += time.Since(t.start)
		t.running = false
	}
}

type nopTimer struct{}

func (nopTimer) ResetTimer() {}
func (nopTimer) StartTimer() {}
func (nopTimer) StopTimer()  {}
