// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/patrickfreed/raw-bson-benchmarks/benchmark"
	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/internal/config"
	"github.com/patrickfreed/raw-bson-benchmarks/internal/logger"
	"github.com/patrickfreed/raw-bson-benchmarks/source/dumpsource"
	"github.com/patrickfreed/raw-bson-benchmarks/source/mongosource"
	"github.com/patrickfreed/raw-bson-benchmarks/source/pebblesource"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// opener returns an Opener over the configured source and a function releasing what it holds.
func (a *app) opener(ctx context.Context) (benchmark.Opener, func(), error) {
	cfg := a.cfg
	nop := func() {}
	a.log.Print(logger.InfoLevel, &logger.SourceMessage{
		MessageLiteral: logger.SourceMessageOpenedDefault,
		Source:         a.sourceName(),
		Documents:      cfg.Documents,
	})

	switch cfg.Source {
	case config.SourceMemory:
		doc := benchmark.NewFixtureDocument(primitive.NewObjectID())
		return benchmark.MemoryOpener(doc, cfg.Documents, cfg.BatchSize), nop, nil
	case config.SourceMongo:
		client, err := mongosource.Connect(ctx, cfg.URI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Database).Collection(cfg.Collection)
		open := func(ctx context.Context) (cursor.BatchSource, error) {
			return mongosource.Find(ctx, coll, int32(cfg.BatchSize))
		}
		return open, func() { _ = client.Disconnect(context.Background()) }, nil
	case config.SourcePebble:
		store, err := pebblesource.Open(cfg.PebbleDir)
		if err != nil {
			return nil, nil, err
		}
		open := func(context.Context) (cursor.BatchSource, error) {
			return store.Source(cfg.BatchSize)
		}
		return open, func() { _ = store.Close() }, nil
	case config.SourceDump:
		dir := filepath.Join(cfg.DumpDir, cfg.Database)
		open := func(context.Context) (cursor.BatchSource, error) {
			return dumpsource.Open(dir, cfg.BatchSize)
		}
		return open, nop, nil
	default:
		return nil, nil, errors.Errorf("unknown source %q", cfg.Source)
	}
}

// seed replaces the contents of the configured source with copies of doc.
func (a *app) seed(ctx context.Context, doc bsoncore.Document, snappy bool) error {
	cfg := a.cfg
	switch cfg.Source {
	case config.SourceMongo:
		client, err := mongosource.Connect(ctx, cfg.URI)
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)
		if err := mongosource.Seed(ctx, client.Database(cfg.Database).Collection(cfg.Collection), doc, cfg.Documents); err != nil {
			return err
		}
	case config.SourcePebble:
		store, err := pebblesource.Open(cfg.PebbleDir)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Seed(doc, cfg.Documents); err != nil {
			return err
		}
	case config.SourceDump:
		name := cfg.Collection + ".bson"
		if snappy {
			name += ".snappy"
		}
		docs := make([]bsoncore.Document, cfg.Documents)
		for i := range docs {
			docs[i] = doc
		}
		if err := dumpsource.WriteDump(filepath.Join(cfg.DumpDir, cfg.Database, name), docs...); err != nil {
			return err
		}
	default:
		return errors.Errorf("source %q cannot be seeded", cfg.Source)
	}

	a.log.Print(logger.InfoLevel, &logger.SourceMessage{
		MessageLiteral: logger.SourceMessageSeededDefault,
		Source:         a.sourceName(),
		Documents:      cfg.Documents,
	})
	return nil
}
