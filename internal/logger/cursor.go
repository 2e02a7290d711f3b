// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

const (
	CursorMessageBatchFetchedDefault = "Batch fetched"
	CursorMessageExhaustedDefault    = "Cursor exhausted"
	CursorMessageFailedDefault       = "Cursor failed"
	CursorMessageClosedDefault       = "Cursor closed"
)

// CursorMessage holds the fields shared by every cursor log message.
type CursorMessage struct {
	MessageLiteral string
	Source         string
	Documents      int
}

func (*CursorMessage) Component() Component {
	return ComponentCursor
}

func (msg *CursorMessage) Message() string {
	return msg.MessageLiteral
}

func (msg *CursorMessage) Serialize() []interface{} {
	return []interface{}{
		KeySource, msg.Source,
		KeyDocuments, msg.Documents,
	}
}

// BatchFetchedMessage is logged at debug level for each batch a cursor receives.
type BatchFetchedMessage struct {
	CursorMessage

	BatchLength int
	BatchBytes  int
}

func (msg *BatchFetchedMessage) Serialize() []interface{} {
	return append(msg.CursorMessage.Serialize(),
		KeyBatchLength, msg.BatchLength,
		KeyBatchBytes, msg.BatchBytes,
	)
}

// CursorFailedMessage is logged when a cursor moves to the errored state.
type CursorFailedMessage struct {
	CursorMessage

	Failure error
}

func (msg *CursorFailedMessage) Err() error { return msg.Failure }
