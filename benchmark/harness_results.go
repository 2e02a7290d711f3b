// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

type BenchResult struct {
	Name       string
	Trials     int
	Duration   time.Duration
	Raw        []Result
	DataSize   int
	Operations int
	hasErrors  *bool
}

type Metric struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Summary is the throughput of a case over its successful trials.
type Summary struct {
	Name         string   `json:"name"`
	Trials       int      `json:"trials"`
	Seconds      float64  `json:"seconds"`
	OpsPerSecond float64  `json:"ops_per_second"`
	OpsMin       float64  `json:"ops_per_second_min"`
	OpsMax       float64  `json:"ops_per_second_max"`
	OpsP90       float64  `json:"ops_per_second_p90"`
	MBPerSecond  float64  `json:"mb_per_second,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// Summarize computes the summary of r. Throughput figures are derived from the per trial timings:
// the minimum throughput comes from the slowest trial.
func (r *BenchResult) Summarize() (Summary, error) {
	out := Summary{
		Name:    r.Name,
		Trials:  r.Trials,
		Seconds: r.roundedRuntime().Seconds(),
		Errors:  r.errReport(),
	}
	timings := r.timings()
	if len(timings) == 0 {
		return out, nil
	}

	median, err := stats.Median(timings)
	if err != nil {
		return out, err
	}
	min, err := stats.Min(timings)
	if err != nil {
		return out, err
	}
	max, err := stats.Max(timings)
	if err != nil {
		return out, err
	}
	// Nearest rank is defined for any number of trials.
	p10, err := stats.PercentileNearestRank(timings, 10)
	if err != nil {
		return out, err
	}

	out.OpsPerSecond = r.getThroughput(median)
	out.OpsMin = r.getThroughput(max)
	out.OpsMax = r.getThroughput(min)
	out.OpsP90 = r.getThroughput(p10)
	if r.DataSize > 0 {
		out.MBPerSecond = r.adjustResults(median) / 1e6
	}
	return out, nil
}

// PerfFormat returns the result in the layout of perf.send, one entry for throughput and, when the
// data size is known, one for bytes per second.
func (r *BenchResult) PerfFormat() ([]interface{}, error) {
	s, err := r.Summarize()
	if err != nil {
		return nil, err
	}

	out := []interface{}{
		map[string]interface{}{
			"info": map[string]interface{}{
				"test_name": r.Name + "-throughput",
				"args": map[string]interface{}{
					"threads": 1,
				},
			},
			"metrics": []Metric{
				{Name: "seconds", Value: s.Seconds},
				{Name: "ops_per_second", Value: s.OpsPerSecond},
				{Name: "ops_per_second_min", Value: s.OpsMin},
				{Name: "ops_per_second_max", Value: s.OpsMax},
			},
		},
	}

	if r.DataSize > 0 {
		median, err := stats.Median(r.timings())
		if err != nil {
			return nil, err
		}
		out = append(out, interface{}(map[string]interface{}{
			"info": map[string]interface{}{
				"test_name": r.Name + "-MB-adjusted",
				"args": map[string]interface{}{
					"threads": 1,
				},
			},
			"metrics": []Metric{
				{Name: "seconds", Value: s.Seconds},
				{Name: "ops_per_second", Value: r.adjustResults(median)},
			},
		}))
	}

	return out, nil
}

// timings returns the duration in seconds of every successful trial.
func (r *BenchResult) timings() []float64 {
	out := []float64{}
	for _, r := range r.Raw {
		if r.Error != nil {
			continue
		}
		out = append(out, r.Duration.Seconds())
	}
	return out
}

func (r *BenchResult) totalDuration() time.Duration {
	var out time.Duration
	for _, trial := range r.Raw {
		out += trial.Duration
	}
	return out
}

func (r *BenchResult) adjustResults(data float64) float64 { return float64(r.DataSize) / data }
func (r *BenchResult) getThroughput(data float64) float64 { return float64(r.Operations) / data }
func (r *BenchResult) roundedRuntime() time.Duration      { return roundDurationMS(r.Duration) }

func (r *BenchResult) String() string {
	return fmt.Sprintf("name=%s, trials=%d, secs=%s, timed=%s", r.Name, r.Trials, r.Duration, r.totalDuration())
}

func (r *BenchResult) HasErrors() bool {
	if r.hasErrors == nil {
		var val bool
		for _, res := range r.Raw {
			if res.Error != nil {
				val = true
				break
			}
		}
		r.hasErrors = &val
	}

	return *r.hasErrors
}

func (r *BenchResult) errReport() []string {
	errs := []string{}
	for _, res := range r.Raw {
		if res.Error != nil {
			errs = append(errs, res.Error.Error())
		}
	}
	return errs
}

type Result struct {
	Duration   time.Duration
	Iterations int
	Error      error
}

func roundDurationMS(d time.Duration) time.Duration {
	rounded := d.Round(time.Millisecond)
	if rounded == 1<<63-1 {
		return 0
	}
	return rounded
}
