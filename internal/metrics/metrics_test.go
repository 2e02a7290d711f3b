// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

func TestMonitor(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := New(reg)

	doc := bsoncore.NewDocumentBuilder().AppendInt32("n", 1).Build()
	batch := cursor.Batch(doc, doc)
	cur := cursor.New(cursor.NewSliceSource(batch, batch), cursor.WithMonitor(m.Monitor()))
	for cur.Next(ctx) {
		var v struct {
			N int32 `bson:"n"`
		}
		require.NoError(t, cur.DecodeView(&v))
	}
	require.NoError(t, cur.Err())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.batchesTotal.WithLabelValues("slice")))
	assert.Equal(t, float64(2*len(batch)), testutil.ToFloat64(m.batchBytes.WithLabelValues("slice")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.decodedTotal.WithLabelValues("slice", modeView)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cursorsClosed.WithLabelValues("slice", "true")))

	failing := cursor.New(cursor.NewSliceSource().FailAfter(0, errors.New("boom")), cursor.WithMonitor(m.Monitor()))
	assert.False(t, failing.Next(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failuresTotal.WithLabelValues("slice")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveCase("FindRaw", 12.5)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rawbench_case_ops_per_second{case="FindRaw"} 12.5`)
}
