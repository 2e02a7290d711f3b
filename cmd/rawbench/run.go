// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"text/tabwriter"
	"time"

	kpretty "github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/patrickfreed/raw-bson-benchmarks/benchmark"
	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/event"
	"github.com/patrickfreed/raw-bson-benchmarks/internal/metrics"
)

type runOptions struct {
	iterations int
	runtime    string
	minTrials  int
	parallel   int
	validate   bool
	bson       bool
	json       bool
	cases      []string
	metrics    string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark cases against the source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.apply(cmd, a)
			return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.iterations, "iterations", 0, "finds per trial")
	f.StringVar(&opts.runtime, "runtime", "", "minimum runtime of each case")
	f.IntVar(&opts.minTrials, "min-trials", 0, "minimum number of trials of each case")
	f.IntVar(&opts.parallel, "parallel", 0, "cursors running concurrently in each find")
	f.BoolVar(&opts.validate, "validate", false, "fully validate every document")
	f.BoolVar(&opts.bson, "bson", false, "also run the single document cases")
	f.BoolVar(&opts.json, "json", false, "print results as JSON")
	f.StringSliceVar(&opts.cases, "case", nil, "run only the named cases")
	f.StringVar(&opts.metrics, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// apply copies the flags that were set into the configuration.
func (opts *runOptions) apply(cmd *cobra.Command, a *app) {
	f := cmd.Flags()
	if f.Changed("iterations") {
		a.cfg.Iterations = opts.iterations
	}
	if f.Changed("runtime") {
		a.cfg.Runtime = opts.runtime
	}
	if f.Changed("parallel") {
		a.cfg.Parallel = opts.parallel
	}
	if f.Changed("validate") {
		a.cfg.ValidateDocuments = opts.validate
	}
	if f.Changed("json") {
		a.cfg.JSON = opts.json
	}
	if f.Changed("case") {
		a.cfg.Cases = opts.cases
	}
	if f.Changed("metrics-addr") {
		a.cfg.MetricsAddr = opts.metrics
	}
}

func (a *app) run(ctx context.Context, stdout, stderr io.Writer, opts runOptions) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	runtime, err := a.cfg.RuntimeDuration()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if a.cfg.MetricsAddr != "" {
		stop, err := serveMetrics(a.cfg.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	monitor := m.Monitor()
	if a.verbose {
		monitor = traceEvents(monitor, stderr)
	}

	open, release, err := a.opener(ctx)
	if err != nil {
		return err
	}
	defer release()

	suite := &benchmark.Suite{
		Open:         open,
		Documents:    a.cfg.Documents,
		DocumentSize: len(benchmark.NewFixtureDocument(primitive.NilObjectID)),
		Iterations:   a.cfg.Iterations,
		Runtime:      runtime,
		Options: []cursor.Option{
			cursor.WithName(a.sourceName()),
			cursor.WithLogger(a.log),
			cursor.WithMonitor(monitor),
			cursor.WithValidation(a.cfg.ValidateDocuments),
		},
	}
	cases := suite.Cases()
	if a.cfg.Parallel > 1 {
		cases = suite.ParallelCases(a.cfg.Parallel)
	}
	if opts.bson {
		cases = append(cases, benchmark.BSONCases()...)
	}

	var summaries []benchmark.Summary
	var failed []string
	for _, c := range cases {
		if !a.cfg.WantCase(c.Name()) {
			continue
		}
		c.Logger = a.log
		c.Out = stderr
		c.MinTrials = opts.minTrials
		c.Runtime = runtime

		res := c.Run(ctx)
		s, err := res.Summarize()
		if err != nil {
			return errors.Wrapf(err, "summarizing %s", c.Name())
		}
		m.ObserveCase(s.Name, s.OpsPerSecond)
		summaries = append(summaries, s)
		if res.HasErrors() {
			failed = append(failed, s.Name)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if a.cfg.JSON {
		if err := writeJSON(stdout, summaries); err != nil {
			return err
		}
	} else {
		writeTable(stdout, summaries)
	}
	if len(failed) > 0 {
		return errors.Errorf("failed cases: %v", failed)
	}
	return ctx.Err()
}

func writeJSON(w io.Writer, summaries []benchmark.Summary) error {
	if summaries == nil {
		summaries = []benchmark.Summary{}
	}
	j, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Pretty(j))
	return err
}

func writeTable(w io.Writer, summaries []benchmark.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tTRIALS\tOPS/S\tMIN\tMAX\tMB/S")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n", s.Name, s.Trials, s.OpsPerSecond, s.OpsMin, s.OpsMax, s.MBPerSecond)
	}
	tw.Flush()
}

// serveMetrics serves the metrics of reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// traceEvents returns a copy of m that also dumps every failed and closed cursor event to w.
func traceEvents(m *event.CursorMonitor, w io.Writer) *event.CursorMonitor {
	var mu sync.Mutex
	dump := func(evt interface{}) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%# v\n", kpretty.Formatter(evt))
	}
	traced := *m
	traced.Failed = func(evt *event.CursorFailedEvent) {
		if m.Failed != nil {
			m.Failed(evt)
		}
		dump(evt)
	}
	traced.Closed = func(evt *event.CursorClosedEvent) {
		if m.Closed != nil {
			m.Closed(evt)
		}
		dump(evt)
	}
	return &traced
}
