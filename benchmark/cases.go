// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"

	"github.com/pkg/errors"

	"github.com/patrickfreed/raw-bson-benchmarks/bson"
	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

func (s *Suite) find(ctx context.Context) (*cursor.Cursor, error) {
	src, err := s.Open(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening source")
	}
	return cursor.New(src, s.Options...), nil
}

func (s *Suite) checkCount(n int) error {
	if s.Documents > 0 && n != s.Documents {
		return errors.Errorf("find returned %d documents, expected %d", n, s.Documents)
	}
	return nil
}

// FindEager collects every document of a find into owned bson.D values.
func (s *Suite) FindEager(ctx context.Context, tm TimerManager, iters int) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if _, err := s.findEager(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Suite) findEager(ctx context.Context) ([]bson.D, error) {
	cur, err := s.find(ctx)
	if err != nil {
		return nil, err
	}
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, s.checkCount(len(docs))
}

// FindRaw collects every document of a find as raw bytes, copied out of the batches.
func (s *Suite) FindRaw(ctx context.Context, tm TimerManager, iters int) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if _, err := s.findRaw(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Suite) findRaw(ctx context.Context) ([]bsoncore.Document, error) {
	cur, err := s.find(ctx)
	if err != nil {
		return nil, err
	}
	var docs []bsoncore.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, s.checkCount(len(docs))
}

// FindEagerJSON collects a find into bson.D values and renders them as pretty Extended JSON.
func (s *Suite) FindEagerJSON(ctx context.Context, tm TimerManager, iters int) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		docs, err := s.findEager(ctx)
		if err != nil {
			return err
		}
		if err := prettyJSON(docs); err != nil {
			return err
		}
	}
	return nil
}

// FindRawJSON collects a find as raw documents and renders them as pretty Extended JSON without
// materializing any value.
func (s *Suite) FindRawJSON(ctx context.Context, tm TimerManager, iters int) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		docs, err := s.findRaw(ctx)
		if err != nil {
			return err
		}
		if err := prettyJSON(docs); err != nil {
			return err
		}
	}
	return nil
}

func prettyJSON(docs interface{}) error {
	j, err := bson.MarshalExtJSONArray(docs, false)
	if err != nil {
		return err
	}
	if len(bson.Pretty(j)) == 0 {
		return errors.New("empty JSON output")
	}
	return nil
}

// FindStepOwned steps through a find decoding each document into an owned Fixture.
func (s *Suite) FindStepOwned(ctx context.Context, tm TimerManager, iters int) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		err := s.step(ctx, func(cur *cursor.Cursor) error {
			var f Fixture
			return cur.Decode(&f)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// FindStepView steps through a find decoding each document into a FixtureView that borrows from
// the current batch.
func (s *Suite) FindStepView(ctx context.Context, tm TimerManager, iters int) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		err := s.step(ctx, func(cur *cursor.Cursor) error {
			var f FixtureView
			return cur.DecodeView(&f)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Suite) step(ctx context.Context, fn func(*cursor.Cursor) error) error {
	cur, err := s.find(ctx)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var n int
	for cur.Next(ctx) {
		if err := fn(cur); err != nil {
			return err
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return err
	}
	return s.checkCount(n)
}
