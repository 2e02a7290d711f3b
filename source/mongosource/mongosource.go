// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongosource reads batches from a MongoDB deployment through the Go driver. The driver
// owns connections, the wire protocol and server selection; this package only regroups the
// documents of each server batch into one buffer.
package mongosource

import (
	"context"
	"io"

	"github.com/pkg/errors"
	mongobson "go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// Connect connects a client to the deployment at uri.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongosource: connecting")
	}
	return client, nil
}

// Seed drops coll and inserts n copies of doc.
func Seed(ctx context.Context, coll *mongo.Collection, doc bsoncore.Document, n int) error {
	if err := coll.Drop(ctx); err != nil {
		return errors.Wrapf(err, "mongosource: dropping %s", coll.Name())
	}
	if n == 0 {
		return nil
	}
	docs := make([]interface{}, n)
	for i := range docs {
		docs[i] = mongobson.Raw(doc)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return errors.Wrapf(err, "mongosource: inserting into %s", coll.Name())
	}
	return nil
}

// Find runs an unfiltered find against coll and returns a source over its results. A batchSize of
// zero leaves the batch size to the server.
func Find(ctx context.Context, coll *mongo.Collection, batchSize int32) (*Source, error) {
	opts := options.Find()
	if batchSize > 0 {
		opts.SetBatchSize(batchSize)
	}
	cur, err := coll.Find(ctx, mongobson.D{}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "mongosource: find on %s", coll.Name())
	}
	return New(cur), nil
}

// Source is a cursor.BatchSource over a driver cursor. Each batch holds the documents of one
// server batch.
type Source struct {
	cur *mongo.Cursor
	buf []byte
}

var _ cursor.BatchSource = (*Source)(nil)

// New returns a Source reading from cur. The Source takes ownership of cur.
func New(cur *mongo.Cursor) *Source {
	return &Source{cur: cur}
}

// Next implements cursor.BatchSource. The returned batch is reused by the following call.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if s.cur == nil {
		return nil, cursor.ErrSourceClosed
	}
	if !s.cur.Next(ctx) {
		if err := s.cur.Err(); err != nil {
			return nil, errors.Wrap(err, "mongosource")
		}
		return nil, io.EOF
	}
	s.buf = append(s.buf[:0], s.cur.Current...)
	for s.cur.RemainingBatchLength() > 0 && s.cur.Next(ctx) {
		s.buf = append(s.buf, s.cur.Current...)
	}
	if err := s.cur.Err(); err != nil {
		return nil, errors.Wrap(err, "mongosource")
	}
	return s.buf, nil
}

// Close implements cursor.BatchSource.
func (s *Source) Close(ctx context.Context) error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close(ctx)
	s.cur = nil
	return errors.Wrap(err, "mongosource")
}

func (s *Source) String() string { return "mongo" }
