// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cursor

import (
	"context"
	"io"
	"sync"
)

// BatchSource is the transport a Cursor reads from. Next returns the next batch of raw documents
// laid end to end, in the order the documents were produced, and io.EOF once the source is
// exhausted. A batch may be empty. The returned slice must stay valid and unmodified until the
// following call to Next or Close.
type BatchSource interface {
	Next(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

// SliceSource is a BatchSource over batches held in memory.
type SliceSource struct {
	mu      sync.Mutex
	batches [][]byte
	pos     int
	closed  bool
	err     error
	errAt   int
}

// NewSliceSource returns a SliceSource that yields batches in order.
func NewSliceSource(batches ...[]byte) *SliceSource {
	return &SliceSource{batches: batches, errAt: -1}
}

// Batch concatenates docs into one batch.
func Batch(docs ...[]byte) []byte {
	var n int
	for _, doc := range docs {
		n += len(doc)
	}
	batch := make([]byte, 0, n)
	for _, doc := range docs {
		batch = append(batch, doc...)
	}
	return batch
}

// FailAfter makes the source return err instead of the batch at index n.
func (s *SliceSource) FailAfter(n int, err error) *SliceSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errAt, s.err = n, err
	return s
}

// Next implements BatchSource. It honors cancellation of ctx.
func (s *SliceSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.pos == s.errAt {
		return nil, s.err
	}
	if s.pos >= len(s.batches) {
		return nil, io.EOF
	}
	batch := s.batches[s.pos]
	s.pos++
	return batch, nil
}

// Reset rewinds the source to its first batch and reopens it.
func (s *SliceSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.closed = false
}

// Close implements BatchSource.
func (s *SliceSource) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *SliceSource) String() string { return "slice" }
