// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package metrics exports cursor and benchmark activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patrickfreed/raw-bson-benchmarks/event"
)

const (
	modeOwned = "owned"
	modeView  = "view"
)

// Metrics holds the collectors fed by a cursor monitor and the benchmark runner.
type Metrics struct {
	batchesTotal   *prometheus.CounterVec
	batchBytes     *prometheus.CounterVec
	batchDuration  *prometheus.HistogramVec
	decodedTotal   *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	cursorsClosed  *prometheus.CounterVec
	caseThroughput *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		batchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rawbench_batches_total",
				Help: "Total number of batches fetched from a source",
			},
			[]string{"source"},
		),
		batchBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rawbench_batch_bytes_total",
				Help: "Total number of bytes fetched from a source",
			},
			[]string{"source"},
		),
		batchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rawbench_batch_fetch_duration_seconds",
				Help:    "Time spent fetching one batch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		decodedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rawbench_documents_decoded_total",
				Help: "Total number of documents decoded from a cursor",
			},
			[]string{"source", "mode"},
		),
		failuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rawbench_cursor_failures_total",
				Help: "Total number of cursors stopped by an error",
			},
			[]string{"source"},
		),
		cursorsClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rawbench_cursors_closed_total",
				Help: "Total number of cursors closed, by whether they were exhausted",
			},
			[]string{"source", "exhausted"},
		),
		caseThroughput: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rawbench_case_ops_per_second",
				Help: "Median throughput of the last run of a benchmark case",
			},
			[]string{"case"},
		),
	}
}

// Monitor returns a cursor monitor recording into m.
func (m *Metrics) Monitor() *event.CursorMonitor {
	return &event.CursorMonitor{
		BatchFetched: func(_ context.Context, evt *event.BatchFetchedEvent) {
			m.batchesTotal.WithLabelValues(evt.Source).Inc()
			m.batchBytes.WithLabelValues(evt.Source).Add(float64(evt.BatchBytes))
			m.batchDuration.WithLabelValues(evt.Source).Observe(evt.Duration().Seconds())
		},
		DocumentDecoded: func(evt *event.DocumentDecodedEvent) {
			mode := modeOwned
			if evt.View {
				mode = modeView
			}
			m.decodedTotal.WithLabelValues(evt.Source, mode).Inc()
		},
		Failed: func(evt *event.CursorFailedEvent) {
			m.failuresTotal.WithLabelValues(evt.Source).Inc()
		},
		Closed: func(evt *event.CursorClosedEvent) {
			exhausted := "false"
			if evt.Exhausted {
				exhausted = "true"
			}
			m.cursorsClosed.WithLabelValues(evt.Source, exhausted).Inc()
		},
	}
}

// ObserveCase records the median throughput of a completed case.
func (m *Metrics) ObserveCase(name string, opsPerSecond float64) {
	m.caseThroughput.WithLabelValues(name).Set(opsPerSecond)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
