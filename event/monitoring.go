// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package event defines the observer hooks a cursor reports its progress through.
package event

import (
	"context"
	"time"
)

// BatchFetchedEvent represents an event generated when a cursor receives a batch from its source.
type BatchFetchedEvent struct {
	// Source names the batch source, as returned by its String method if it has one.
	Source        string
	BatchLength   int
	BatchBytes    int
	DurationNanos int64
}

// Duration returns the time the source took to produce the batch.
func (e *BatchFetchedEvent) Duration() time.Duration { return time.Duration(e.DurationNanos) }

// DocumentDecodedEvent represents an event generated when the current document of a cursor is
// decoded.
type DocumentDecodedEvent struct {
	Source string
	// View is true when the document was decoded with borrowed fields.
	View  bool
	Bytes int
}

// CursorFailedEvent represents an event generated when a cursor moves to the errored state.
type CursorFailedEvent struct {
	Source string
	// Documents is the number of documents the cursor yielded before failing.
	Documents int
	Failure   error
}

// CursorClosedEvent represents an event generated when a cursor is closed or exhausted.
type CursorClosedEvent struct {
	Source    string
	Documents int
	Exhausted bool
}

// CursorMonitor represents a monitor that is triggered for different cursor events. Any of the
// functions may be nil.
type CursorMonitor struct {
	BatchFetched    func(context.Context, *BatchFetchedEvent)
	DocumentDecoded func(*DocumentDecodedEvent)
	Failed          func(*CursorFailedEvent)
	Closed          func(*CursorClosedEvent)
}
