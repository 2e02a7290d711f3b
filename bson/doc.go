// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson decodes raw BSON documents into Go values.
//
// Decoding runs in one of two modes. Unmarshal (Owned mode) copies every variable length
// payload, so the result stays valid after the source buffer is released or reused.
// UnmarshalView (View mode) lets selected fields reference the source buffer directly:
//
//	type Event struct {
//	    Kind    string        `bson:"kind"`
//	    Payload []byte        `bson:"payload,borrow"`
//	    Meta    bson.Raw      `bson:"meta,omitempty"`
//	    Seen    *time.Time    `bson:"seen"`
//	}
//
// In View mode Payload and Meta alias the buffer passed to UnmarshalView and are only valid while
// that buffer is retained and left unmodified. Kind is always copied because it is not flagged
// borrow. Fixed width scalars are always read by value.
//
// Each struct type is compiled once into a Shape describing the fields it expects. Fields in the
// document that the Shape does not name are skipped by their encoded size without being decoded.
// A field named by the Shape but absent from the document is an error unless it is a pointer or
// flagged omitempty; a field whose encoded type does not match is always an error. Both are
// reported as a *DecodeError naming the field.
//
// The generic containers D, M and A, and interface{} targets, are always decoded as owned values.
package bson
