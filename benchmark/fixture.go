// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

const (
	// FixtureCount is the number of copies of the fixture document a collection is seeded with.
	FixtureCount = tenThousand

	// DefaultBatchSize matches the size of a server's first batch.
	DefaultBatchSize = 101
)

// NewFixtureDocument returns the benchmark document:
//
//	{a: true, b: "hello", c: {world: 1, ok: 2, other_key: 5.5}, oid: <oid>, array: [1, 2, 3]}
func NewFixtureDocument(oid primitive.ObjectID) bsoncore.Document {
	return bsoncore.NewDocumentBuilder().
		AppendBoolean("a", true).
		AppendString("b", "hello").
		StartDocument("c").
		AppendInt32("world", 1).
		AppendInt32("ok", 2).
		AppendDouble("other_key", 5.5).
		FinishDocument().
		AppendObjectID("oid", oid).
		AppendArray("array", bsoncore.NewArrayBuilder().AppendInt32(1).AppendInt32(2).AppendInt32(3).Build()).
		Build()
}

// FixtureC is the embedded document of the fixture.
type FixtureC struct {
	World    int32   `bson:"world"`
	OK       int32   `bson:"ok"`
	OtherKey float64 `bson:"other_key"`
}

// Fixture is the owned shape of the fixture document.
type Fixture struct {
	A     bool               `bson:"a"`
	B     string             `bson:"b"`
	C     FixtureC           `bson:"c"`
	OID   primitive.ObjectID `bson:"oid"`
	Array []int32            `bson:"array"`
}

// FixtureView is the borrowed shape of the fixture document. B and the embedded values reference
// the buffer they were decoded from.
type FixtureView struct {
	A     bool               `bson:"a"`
	B     string             `bson:"b,borrow"`
	C     bsoncore.Document  `bson:"c"`
	OID   primitive.ObjectID `bson:"oid"`
	Array bsoncore.Array     `bson:"array"`
}

// Opener returns a fresh source over the benchmark collection.
type Opener func(ctx context.Context) (cursor.BatchSource, error)

// MemoryOpener returns an Opener over n copies of doc held in memory, split into batches of
// batchSize documents. Every source it opens shares the same batches.
func MemoryOpener(doc bsoncore.Document, n, batchSize int) Opener {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var batches [][]byte
	for n > 0 {
		size := batchSize
		if n < size {
			size = n
		}
		batch := make([]byte, 0, size*len(doc))
		for i := 0; i < size; i++ {
			batch = append(batch, doc...)
		}
		batches = append(batches, batch)
		n -= size
	}
	return func(context.Context) (cursor.BatchSource, error) {
		return cursor.NewSliceSource(batches...), nil
	}
}
