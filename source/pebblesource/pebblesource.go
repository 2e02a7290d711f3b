// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package pebblesource keeps documents in a local pebble store and serves them as batches.
package pebblesource

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// DefaultBatchSize is the number of documents per batch when none is given.
const DefaultBatchSize = 101

var docPrefix = []byte("doc/")

// Store is a collection of documents kept under time ordered ksuid keys, so scanning the store
// returns documents in insertion order.
type Store struct {
	db *pebble.DB

	mu   sync.Mutex
	last ksuid.KSUID
}

// Open opens or creates the store in dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "pebblesource: opening %s", dir)
	}
	s := &Store{db: db}
	if err := s.loadLast(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) loadLast() error {
	iter, err := s.db.NewIter(prefixOptions())
	if err != nil {
		return errors.Wrap(err, "pebblesource")
	}
	defer iter.Close()
	if iter.Last() {
		id, err := ksuid.FromBytes(iter.Key()[len(docPrefix):])
		if err != nil {
			return errors.Wrap(err, "pebblesource: reading last key")
		}
		s.last = id
	}
	return nil
}

func prefixOptions() *pebble.IterOptions {
	upper := append([]byte(nil), docPrefix...)
	upper[len(upper)-1]++
	return &pebble.IterOptions{LowerBound: docPrefix, UpperBound: upper}
}

// nextKey returns a key that sorts after every key handed out before it.
func (s *Store) nextKey() []byte {
	id := ksuid.New()
	if ksuid.Compare(id, s.last) <= 0 {
		id = s.last.Next()
	}
	s.last = id
	return append(append(make([]byte, 0, len(docPrefix)+len(id)), docPrefix...), id.Bytes()...)
}

// Insert stores docs in order in a single batch. Every document must be well formed.
func (s *Store) Insert(docs ...bsoncore.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewBatch()
	defer b.Close()
	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return errors.Wrapf(err, "pebblesource: document %d", i)
		}
		if err := b.Set(s.nextKey(), doc, nil); err != nil {
			return errors.Wrap(err, "pebblesource")
		}
	}
	return errors.Wrap(b.Commit(pebble.Sync), "pebblesource")
}

// Seed replaces the contents of the store with n copies of doc.
func (s *Store) Seed(doc bsoncore.Document, n int) error {
	if err := s.Drop(); err != nil {
		return err
	}
	docs := make([]bsoncore.Document, n)
	for i := range docs {
		docs[i] = doc
	}
	return s.Insert(docs...)
}

// Drop removes every document.
func (s *Store) Drop() error {
	opts := prefixOptions()
	return errors.Wrap(s.db.DeleteRange(opts.LowerBound, opts.UpperBound, pebble.Sync), "pebblesource")
}

// Count returns the number of stored documents.
func (s *Store) Count() (int, error) {
	iter, err := s.db.NewIter(prefixOptions())
	if err != nil {
		return 0, errors.Wrap(err, "pebblesource")
	}
	var n int
	for valid := iter.First(); valid; valid = iter.Next() {
		n++
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return 0, errors.Wrap(err, "pebblesource")
	}
	return n, errors.Wrap(iter.Close(), "pebblesource")
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Source returns a cursor.BatchSource scanning the store in key order, batchSize documents at a
// time. The scan reads a consistent snapshot taken when Source is called.
func (s *Store) Source(batchSize int) (*Source, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	iter, err := s.db.NewIter(prefixOptions())
	if err != nil {
		return nil, errors.Wrap(err, "pebblesource")
	}
	return &Source{iter: iter, batchSize: batchSize, valid: iter.First()}, nil
}

// Source is a cursor.BatchSource over a Store.
type Source struct {
	iter      *pebble.Iterator
	batchSize int
	valid     bool
	buf       bytes.Buffer
}

var _ cursor.BatchSource = (*Source)(nil)

// Next implements cursor.BatchSource. The returned batch is reused by the following call.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if s.iter == nil {
		return nil, cursor.ErrSourceClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.buf.Reset()
	for n := 0; n < s.batchSize && s.valid; n++ {
		s.buf.Write(s.iter.Value())
		s.valid = s.iter.Next()
	}
	if err := s.iter.Error(); err != nil {
		return nil, errors.Wrap(err, "pebblesource")
	}
	if s.buf.Len() == 0 {
		return nil, io.EOF
	}
	return s.buf.Bytes(), nil
}

// Close implements cursor.BatchSource.
func (s *Source) Close(context.Context) error {
	if s.iter == nil {
		return nil
	}
	err := s.iter.Close()
	s.iter = nil
	return errors.Wrap(err, "pebblesource")
}

func (s *Source) String() string { return "pebble" }
