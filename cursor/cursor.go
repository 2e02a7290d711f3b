// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package cursor streams raw BSON documents out of batches produced by a BatchSource.
package cursor

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/patrickfreed/raw-bson-benchmarks/bson"
	"github.com/patrickfreed/raw-bson-benchmarks/event"
	"github.com/patrickfreed/raw-bson-benchmarks/internal/logger"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// State is the lifecycle state of a Cursor.
type State uint8

// These constants are the states of a Cursor.
const (
	// Open means the cursor may yield more documents.
	Open State = iota
	// Exhausted means the source reported that it has no more batches.
	Exhausted
	// Errored means the cursor stopped because of an error, which Err returns.
	Errored
	// Closed means Close was called.
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Exhausted:
		return "exhausted"
	case Errored:
		return "errored"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

var (
	ownedDecoder = bson.NewDecoder(bson.Owned)
	viewDecoder  = bson.NewDecoder(bson.View)

	tCoreDocument = reflect.TypeOf(bsoncore.Document(nil))
	tRaw          = reflect.TypeOf(bson.Raw(nil))
)

// Cursor is used to iterate a stream of documents. Each document is decoded into the result
// according to the rules of the bson package.
//
// A typical usage of the Cursor type would be:
//
//	cur := cursor.New(src)
//	defer cur.Close(ctx)
//
//	for cur.Next(ctx) {
//		var elem bson.D
//		if err := cur.Decode(&elem); err != nil {
//			log.Fatal(err)
//		}
//
//		// do something with elem....
//	}
//
//	if err := cur.Err(); err != nil {
//		log.Fatal(err)
//	}
//
// Documents are yielded in the order the source delivers them. Once an error occurs the cursor
// yields nothing more and Err keeps returning that error. A Cursor is not safe for concurrent use.
type Cursor struct {
	// Current contains the BSON bytes of the current document. It references the batch the
	// document arrived in and is only valid until the next call to Next, TryNext or Close. Copy it
	// to keep it longer.
	Current bsoncore.Document

	src   BatchSource
	batch bsoncore.DocumentSequence
	state State
	err   error

	cfg       config
	documents int
}

// New returns a cursor reading from src.
func New(src BatchSource, opts ...Option) *Cursor {
	c := &Cursor{src: src}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	if c.cfg.name == "" {
		if s, ok := src.(fmt.Stringer); ok {
			c.cfg.name = s.String()
		} else {
			c.cfg.name = fmt.Sprintf("%T", src)
		}
	}
	if src == nil {
		c.fail(ErrNilSource)
	}
	return c
}

// Next gets the next document from this cursor, fetching batches from the source as needed. It
// returns true if the next document is available in Current. It returns false once the cursor is
// exhausted, errored or closed, after which Err tells them apart.
func (c *Cursor) Next(ctx context.Context) bool {
	return c.next(ctx, false)
}

// TryNext is like Next except that it fetches at most one batch. It returns false without an
// error when that batch is empty, in which case the cursor stays open and TryNext can be called
// again.
func (c *Cursor) TryNext(ctx context.Context) bool {
	return c.next(ctx, true)
}

func (c *Cursor) next(ctx context.Context, nonBlocking bool) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	c.Current = nil
	if c.state != Open {
		return false
	}

	for !c.batch.Remaining() {
		if err := ctx.Err(); err != nil {
			c.fail(err)
			return false
		}

		start := time.Now()
		batch, err := c.src.Next(ctx)
		if err == io.EOF {
			c.state = Exhausted
			c.batch = bsoncore.DocumentSequence{}
			c.closed(true)
			return false
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
				err = errors.Wrap(ctxErr, err.Error())
			}
			c.fail(errors.Wrap(err, "cursor: fetching batch"))
			return false
		}

		c.batch = bsoncore.DocumentSequence{Data: batch}
		c.batchFetched(ctx, batch, time.Since(start))
		if nonBlocking && len(batch) == 0 {
			return false
		}
	}

	doc, err := c.batch.Next()
	if err != nil {
		c.fail(errors.Wrapf(err, "cursor: document %d", c.documents))
		return false
	}
	if c.cfg.validate {
		if err := doc.Validate(); err != nil {
			c.fail(errors.Wrapf(err, "cursor: document %d", c.documents))
			return false
		}
	}
	c.Current = doc
	c.documents++
	return true
}

// Decode will decode the current document into val, copying every value out of the batch. A
// decoding error moves the cursor to the errored state.
func (c *Cursor) Decode(val interface{}) error {
	return c.decode(ownedDecoder, val)
}

// DecodeView will decode the current document into val in view mode: fields flagged borrow and
// raw view fields reference the batch and are only valid until the cursor advances. A decoding
// error moves the cursor to the errored state.
func (c *Cursor) DecodeView(val interface{}) error {
	return c.decode(viewDecoder, val)
}

func (c *Cursor) decode(dec *bson.Decoder, val interface{}) error {
	if c.state == Errored {
		return c.err
	}
	if c.Current == nil {
		return ErrNoDocument
	}
	if err := dec.Decode(c.Current, val); err != nil {
		c.fail(errors.Wrapf(err, "cursor: decoding document %d", c.documents-1))
		return c.err
	}
	if m := c.cfg.monitor; m != nil && m.DocumentDecoded != nil {
		m.DocumentDecoded(&event.DocumentDecodedEvent{
			Source: c.cfg.name,
			View:   dec.Mode() == bson.View,
			Bytes:  len(c.Current),
		})
	}
	return nil
}

// RemainingBatchLength returns the number of documents left in the current batch. If this
// returns zero, the subsequent call to Next or TryNext will fetch a new batch.
func (c *Cursor) RemainingBatchLength() int {
	return c.batch.RemainingCount()
}

// State returns the lifecycle state of the cursor.
func (c *Cursor) State() State { return c.state }

// Err returns the error that stopped the cursor, or nil if it is open, exhausted or was closed
// without an error.
func (c *Cursor) Err() error { return c.err }

// Close closes this cursor and its source. Close is idempotent. The error that stopped the cursor,
// if any, is still returned by Err afterwards.
func (c *Cursor) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.state == Closed || c.src == nil {
		return nil
	}
	exhausted := c.state == Exhausted
	if c.state != Errored {
		c.state = Closed
	}
	c.Current = nil
	c.batch = bsoncore.DocumentSequence{}
	err := c.src.Close(ctx)
	c.src = nil
	if !exhausted {
		c.closed(false)
	}
	return err
}

// All iterates the cursor and decodes each document into results. The results parameter must be
// a pointer to a slice. Documents go into elements of type bsoncore.Document or bson.Raw as owned
// copies of their bytes; any other element type is decoded as with Decode. On success the slice
// pointed to by results is replaced. This method closes the cursor after retrieving all
// documents. If the cursor fails, the error is returned and results is left unmodified.
func (c *Cursor) All(ctx context.Context, results interface{}) error {
	resultsVal := reflect.ValueOf(results)
	if resultsVal.Kind() != reflect.Ptr || resultsVal.IsNil() || resultsVal.Elem().Kind() != reflect.Slice {
		return ErrInvalidResults
	}

	sliceType := resultsVal.Elem().Type()
	elemType := sliceType.Elem()
	raw := elemType == tCoreDocument || elemType == tRaw

	defer c.Close(ctx)

	// Decoded into a fresh slice so a failure leaves the caller's backing array alone.
	out := reflect.MakeSlice(sliceType, 0, c.RemainingBatchLength())
	for c.Next(ctx) {
		out = reflect.Append(out, reflect.Zero(elemType))
		elem := out.Index(out.Len() - 1)
		if raw {
			elem.SetBytes(c.Current.Copy())
			continue
		}
		if err := c.Decode(elem.Addr().Interface()); err != nil {
			return err
		}
	}
	if err := c.Err(); err != nil {
		return err
	}

	resultsVal.Elem().Set(out)
	return nil
}

func (c *Cursor) fail(err error) {
	c.err = err
	c.state = Errored
	c.Current = nil
	c.batch = bsoncore.DocumentSequence{}
	if m := c.cfg.monitor; m != nil && m.Failed != nil {
		m.Failed(&event.CursorFailedEvent{Source: c.cfg.name, Documents: c.documents, Failure: err})
	}
	c.cfg.logger.Print(logger.InfoLevel, &logger.CursorFailedMessage{
		CursorMessage: logger.CursorMessage{
			MessageLiteral: logger.CursorMessageFailedDefault,
			Source:         c.cfg.name,
			Documents:      c.documents,
		},
		Failure: err,
	})
}

func (c *Cursor) batchFetched(ctx context.Context, batch []byte, took time.Duration) {
	if m := c.cfg.monitor; m != nil && m.BatchFetched != nil {
		m.BatchFetched(ctx, &event.BatchFetchedEvent{
			Source:        c.cfg.name,
			BatchLength:   c.batch.Count(),
			BatchBytes:    len(batch),
			DurationNanos: took.Nanoseconds(),
		})
	}
	if c.cfg.logger.LevelComponentEnabled(logger.DebugLevel, logger.ComponentCursor) {
		c.cfg.logger.Print(logger.DebugLevel, &logger.BatchFetchedMessage{
			CursorMessage: logger.CursorMessage{
				MessageLiteral: logger.CursorMessageBatchFetchedDefault,
				Source:         c.cfg.name,
				Documents:      c.documents,
			},
			BatchLength: c.batch.Count(),
			BatchBytes:  len(batch),
		})
	}
}

func (c *Cursor) closed(exhausted bool) {
	if m := c.cfg.monitor; m != nil && m.Closed != nil {
		m.Closed(&event.CursorClosedEvent{Source: c.cfg.name, Documents: c.documents, Exhausted: exhausted})
	}
	msg := logger.CursorMessageClosedDefault
	if exhausted {
		msg = logger.CursorMessageExhaustedDefault
	}
	c.cfg.logger.Print(logger.InfoLevel, &logger.CursorMessage{
		MessageLiteral: msg,
		Source:         c.cfg.name,
		Documents:      c.documents,
	})
}
