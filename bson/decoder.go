// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"reflect"

	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// Mode selects the ownership contract of decoded values.
type Mode uint8

// These constants are the decoding modes.
const (
	// Owned copies every variable length payload. Decoded values are independent of the source
	// buffer.
	Owned Mode = iota
	// View lets borrowing fields reference the source buffer. Decoded values are only valid while
	// the source buffer is retained and left unmodified.
	View
)

func (m Mode) String() string {
	switch m {
	case Owned:
		return "owned"
	case View:
		return "view"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// A Decoder decodes BSON documents into Go values using a fixed Mode. A Decoder has no mutable
// state and may be shared between goroutines.
type Decoder struct {
	mode Mode
}

// NewDecoder returns a new decoder that decodes in mode.
func NewDecoder(mode Mode) *Decoder {
	return &Decoder{mode: mode}
}

// Mode returns the mode of d.
func (d *Decoder) Mode() Mode { return d.mode }

// Decode decodes doc into the value pointed to by val. val must be a non-nil pointer or a non-nil
// map.
//
// See [Unmarshal] for details about BSON unmarshaling behavior.
func (d *Decoder) Decode(doc bsoncore.Document, val interface{}) error {
	rval := reflect.ValueOf(val)
	switch rval.Kind() {
	case reflect.Ptr:
		if rval.IsNil() {
			return ErrDecodeToNil
		}
		rval = rval.Elem()
	case reflect.Map:
		if rval.IsNil() {
			return ErrDecodeToNil
		}
	case reflect.Invalid:
		return ErrDecodeToNil
	default:
		return fmt.Errorf("argument to Decode must be a pointer or a map, but got %v", rval.Type())
	}

	doc, err := bsoncore.NewDocument(doc)
	if err != nil {
		return malformed(err)
	}

	ds := decodeState{mode: d.mode}
	return ds.decodeValue(bsoncore.Value{Type: bsoncore.TypeEmbeddedDocument, Data: doc}, rval, false)
}

// DecodeValue decodes the single value val into the value pointed to by v. A string or byte slice
// target borrows from val in View mode.
func (d *Decoder) DecodeValue(val bsoncore.Value, v interface{}) error {
	rval := reflect.ValueOf(v)
	if rval.Kind() != reflect.Ptr || rval.IsNil() {
		return ErrDecodeToNil
	}
	ds := decodeState{mode: d.mode}
	return ds.decodeValue(val, rval.Elem(), true)
}
