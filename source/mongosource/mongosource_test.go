// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongosource

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongobson "go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

func doc(n int32) bsoncore.Document {
	return bsoncore.NewDocumentBuilder().AppendInt32("n", n).Build()
}

func collect(t *testing.T, src cursor.BatchSource) []int32 {
	t.Helper()
	ctx := context.Background()
	cur := cursor.New(src)
	defer cur.Close(ctx)
	var got []int32
	for cur.Next(ctx) {
		got = append(got, cur.Current.Lookup("n").Int32())
	}
	require.NoError(t, cur.Err())
	return got
}

func TestSourceFromDocuments(t *testing.T) {
	ctx := context.Background()
	docs := []interface{}{mongobson.Raw(doc(0)), mongobson.Raw(doc(1)), mongobson.Raw(doc(2))}
	mc, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	require.NoError(t, err)

	src := New(mc)
	batch, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, bsoncore.ReadDocumentSequence(batch).Count(), "one driver batch becomes one batch")
	_, err = src.Next(ctx)
	assert.Equal(t, io.EOF, err)

	mc, err = mongo.NewCursorFromDocuments(docs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2}, collect(t, New(mc)))
}

func TestSourceClose(t *testing.T) {
	ctx := context.Background()
	mc, err := mongo.NewCursorFromDocuments(nil, nil, nil)
	require.NoError(t, err)
	src := New(mc)
	require.NoError(t, src.Close(ctx))
	require.NoError(t, src.Close(ctx))
	_, err = src.Next(ctx)
	assert.Equal(t, cursor.ErrSourceClosed, err)
}

func TestSeedAndFind(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	coll := client.Database("rawbench_test").Collection("mongosource")
	require.NoError(t, Seed(ctx, coll, doc(5), 250))
	defer coll.Drop(ctx)

	src, err := Find(ctx, coll, 100)
	require.NoError(t, err)
	got := collect(t, src)
	assert.Len(t, got, 250)
	for _, n := range got {
		assert.Equal(t, int32(5), n)
	}
}
