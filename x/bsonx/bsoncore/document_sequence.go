// Copyright (C) MongoDB, Inc. 2022-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"io"
)

// DocumentSequence is a batch of BSON documents laid end to end, the way a server batch or a
// dump file carries them. Documents returned by Next are subslices of Data.
type DocumentSequence struct {
	Data []byte
	pos  int
}

// ReadDocumentSequence returns a DocumentSequence over batch. The batch is not copied.
func ReadDocumentSequence(batch []byte) *DocumentSequence {
	return &DocumentSequence{Data: batch}
}

// Count returns the number of complete documents in the sequence. Counting stops at the first
// document whose framing is invalid.
func (ds *DocumentSequence) Count() int {
	if ds == nil {
		return 0
	}
	var count int
	rem := ds.Data
	for len(rem) > 0 {
		var ok bool
		_, rem, ok = ReadDocument(rem)
		if !ok {
			break
		}
		count++
	}
	return count
}

// Empty reports whether the sequence holds no documents.
func (ds *DocumentSequence) Empty() bool {
	return ds == nil || len(ds.Data) == 0
}

// Remaining reports whether Next has documents left to return.
func (ds *DocumentSequence) Remaining() bool {
	return ds != nil && ds.pos < len(ds.Data)
}

// RemainingCount returns the number of complete documents Next has left to return.
func (ds *DocumentSequence) RemainingCount() int {
	if !ds.Remaining() {
		return 0
	}
	return (&DocumentSequence{Data: ds.Data[ds.pos:]}).Count()
}

// Reset rewinds the sequence to the first document.
func (ds *DocumentSequence) Reset() {
	ds.pos = 0
}

// Documents returns every document in the sequence. The framing of each document is checked with
// NewDocument; ErrCorruptedDocument is returned when any document is cut short.
func (ds *DocumentSequence) Documents() ([]Document, error) {
	if ds == nil || len(ds.Data) == 0 {
		return nil, nil
	}
	docs := make([]Document, 0, 8)
	rem := ds.Data
	for len(rem) > 0 {
		doc, err := NewDocument(rem)
		if err != nil {
			return docs, ErrCorruptedDocument
		}
		docs = append(docs, doc)
		rem = rem[len(doc):]
	}
	return docs, nil
}

// Next returns the next document in the sequence, or io.EOF when none remain. A document whose
// framing is invalid yields ErrCorruptedDocument and the sequence is not advanced.
func (ds *DocumentSequence) Next() (Document, error) {
	if ds == nil || ds.pos >= len(ds.Data) {
		return nil, io.EOF
	}
	doc, err := NewDocument(ds.Data[ds.pos:])
	if err != nil {
		return nil, ErrCorruptedDocument
	}
	ds.pos += len(doc)
	return doc, nil
}
