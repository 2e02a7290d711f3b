// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"reflect"
	"strings"

	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// ErrDecodeToNil is the error returned when trying to decode to a nil value
var ErrDecodeToNil = errors.New("cannot Decode to nil value")

// DecodeErrorReason classifies a DecodeError.
type DecodeErrorReason uint8

// These constants are the reasons a field can fail to decode.
const (
	// ReasonMissing means a required field was not present in the document.
	ReasonMissing DecodeErrorReason = iota + 1
	// ReasonTypeMismatch means the encoded type of a field cannot be decoded into its target.
	ReasonTypeMismatch
	// ReasonOverflow means a numeric value does not fit into its target.
	ReasonOverflow
	// ReasonMalformed means the bytes of the field or document are not valid BSON.
	ReasonMalformed
	// ReasonUnsupported means the Go type of the target cannot be decoded into.
	ReasonUnsupported
)

func (r DecodeErrorReason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonTypeMismatch:
		return "type mismatch"
	case ReasonOverflow:
		return "overflow"
	case ReasonMalformed:
		return "malformed"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// DecodeError is returned when a document cannot be decoded into its target. Field is the dotted
// path of the failing field from the top level document, with array elements named by index.
type DecodeError struct {
	Field    string
	Reason   DecodeErrorReason
	Expected bsoncore.Type
	Actual   bsoncore.Type
	Target   reflect.Type
	Err      error
}

// Error implements the error interface.
func (de *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("bson: ")
	if de.Field != "" {
		b.WriteString("field \"")
		b.WriteString(de.Field)
		b.WriteString("\": ")
	}
	switch de.Reason {
	case ReasonMissing:
		b.WriteString("missing from document")
	case ReasonTypeMismatch:
		b.WriteString("expected ")
		b.WriteString(typeName(de.Expected))
		b.WriteString(", got ")
		b.WriteString(de.Actual.String())
	case ReasonOverflow:
		b.WriteString(de.Actual.String())
		b.WriteString(" value overflows ")
		b.WriteString(de.Target.String())
	case ReasonUnsupported:
		b.WriteString("cannot decode into ")
		b.WriteString(de.Target.String())
	default:
		b.WriteString(de.Reason.String())
	}
	if de.Err != nil {
		b.WriteString(": ")
		b.WriteString(de.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error, if any.
func (de *DecodeError) Unwrap() error { return de.Err }

func typeName(t bsoncore.Type) string {
	if t == anyType {
		return "any value"
	}
	return t.String()
}

// prefixField records that err occurred beneath the field named key.
func prefixField(err error, key string) error {
	var de *DecodeError
	if !errors.As(err, &de) {
		return &DecodeError{Field: key, Reason: ReasonMalformed, Err: err}
	}
	if de.Field == "" {
		de.Field = key
	} else {
		de.Field = key + "." + de.Field
	}
	return de
}

func mismatch(expected, actual bsoncore.Type, target reflect.Type) error {
	return &DecodeError{Reason: ReasonTypeMismatch, Expected: expected, Actual: actual, Target: target}
}

func malformed(err error) error {
	return &DecodeError{Reason: ReasonMalformed, Err: err}
}
