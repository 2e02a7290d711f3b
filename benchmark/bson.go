// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"errors"

	"github.com/patrickfreed/raw-bson-benchmarks/bson"
	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// The BSON cases measure a single fixture document without a cursor.

var errDecoding = errors.New("decoding error")

func BSONFixtureEncoding(ctx context.Context, tm TimerManager, iters int) error {
	var doc bson.D
	if err := bson.Unmarshal(NewFixtureDocument(primitive.NewObjectID()), &doc); err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("marshaling error")
		}
	}
	return nil
}

func BSONFixtureDecoding(ctx context.Context, tm TimerManager, iters int) error {
	raw := NewFixtureDocument(primitive.NewObjectID())

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		var out bson.D
		if err := bson.Unmarshal(raw, &out); err != nil {
			return err
		}
		if len(out) != 5 {
			return errDecoding
		}
	}
	return nil
}

func BSONFixtureDecodingLazy(ctx context.Context, tm TimerManager, iters int) error {
	raw := NewFixtureDocument(primitive.NewObjectID())

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		doc, err := bsoncore.NewDocument(raw)
		if err != nil {
			return err
		}
		val, err := doc.LookupErr("c", "other_key")
		if err != nil {
			return err
		}
		if f, ok := val.DoubleOK(); !ok || f != 5.5 {
			return errDecoding
		}
	}
	return nil
}

func BSONFixtureStructDecoding(ctx context.Context, tm TimerManager, iters int) error {
	raw := NewFixtureDocument(primitive.NewObjectID())

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		var out Fixture
		if err := bson.Unmarshal(raw, &out); err != nil {
			return err
		}
		if out.B != "hello" {
			return errDecoding
		}
	}
	return nil
}

func BSONFixtureStructViewDecoding(ctx context.Context, tm TimerManager, iters int) error {
	raw := NewFixtureDocument(primitive.NewObjectID())

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		var out FixtureView
		if err := bson.UnmarshalView(raw, &out); err != nil {
			return err
		}
		if out.B != "hello" {
			return errDecoding
		}
	}
	return nil
}

func BSONFixtureExtJSON(ctx context.Context, tm TimerManager, iters int) error {
	raw := NewFixtureDocument(primitive.NewObjectID())

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.MarshalExtJSON(raw, false)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("marshaling error")
		}
	}
	return nil
}

// BSONCases returns the single document cases.
func BSONCases() []*CaseDefinition {
	size := len(NewFixtureDocument(primitive.NilObjectID))
	var cases []*CaseDefinition
	for _, bench := range []BenchCase{
		BSONFixtureEncoding,
		BSONFixtureDecoding,
		BSONFixtureDecodingLazy,
		BSONFixtureStructDecoding,
		BSONFixtureStructViewDecoding,
		BSONFixtureExtJSON,
	} {
		cases = append(cases, &CaseDefinition{
			Bench:   bench,
			Count:   tenThousand,
			Size:    tenThousand * size,
			Runtime: MinimumRuntime,
		})
	}
	return cases
}
