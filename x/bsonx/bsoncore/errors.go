// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-stack/stack"
)

// ErrMissingNull is returned when a document or array's last byte is not null.
var ErrMissingNull = errors.New("document or array end is missing null byte")

// ErrInvalidLength indicates that a length in a binary representation of a BSON document or
// array is invalid.
var ErrInvalidLength = errors.New("document or array length is invalid")

// ErrInvalidKey indicates that an element key is not null terminated inside its document.
var ErrInvalidKey = errors.New("element key is not null terminated")

// ErrCorruptedDocument is returned when a full document couldn't be read from a sequence.
var ErrCorruptedDocument = errors.New("invalid DocumentSequence: corrupted document")

// ErrNilReader indicates that an operation was attempted on a nil io.Reader.
var ErrNilReader = errors.New("nil reader")

// ErrEmptyKey indicates that no key was provided to a Lookup method.
var ErrEmptyKey = errors.New("empty key provided")

// ErrElementNotFound indicates that an Element matching a certain condition does not exist.
var ErrElementNotFound = errors.New("element not found")

// ErrOutOfBounds indicates that an index provided to access something was invalid.
var ErrOutOfBounds = errors.New("out of bounds")

// ErrInvalidDepthTraversal indicates that a provided path of keys to a nested value in a
// document traverses through a value that is neither a document nor an array.
var ErrInvalidDepthTraversal = errors.New("invalid depth traversal")

// InsufficientBytesError indicates that there were not enough bytes to read the next component.
// The call stack at the point of detection is recorded to make truncated buffers traceable.
type InsufficientBytesError struct {
	Source    []byte
	Remaining []byte
	Stack     stack.CallStack
}

// NewInsufficientBytesError creates a new InsufficientBytesError with the given Document and
// remaining bytes.
func NewInsufficientBytesError(src, rem []byte) InsufficientBytesError {
	return InsufficientBytesError{Source: src, Remaining: rem, Stack: stack.Trace().TrimRuntime()}
}

// Error implements the error interface.
func (ibe InsufficientBytesError) Error() string {
	return "too few bytes to read next component"
}

// ErrorStack returns a string representing the stack at the point where the error occurred.
func (ibe InsufficientBytesError) ErrorStack() string {
	s := bytes.NewBufferString("too few bytes to read next component: [")

	for i, call := range ibe.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we move the format
		// string so it doesn't complain. (We also can't make it a constant, or go vet still
		// complains.)
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// Equal checks that err2 also is an InsufficientBytesError.
func (ibe InsufficientBytesError) Equal(err2 error) bool {
	var other InsufficientBytesError
	return errors.As(err2, &other)
}

// LengthError is returned when the declared length of a document, array or value is larger than
// the bytes available or smaller than the minimum encoding.
type LengthError struct {
	Kind      string
	Length    int
	Remaining int
}

func (le LengthError) Error() string {
	return fmt.Sprintf("length read exceeds number of bytes available. length=%d bytes=%d", le.Length, le.Remaining)
}

// Unwrap lets errors.Is(err, ErrInvalidLength) match every LengthError.
func (le LengthError) Unwrap() error { return ErrInvalidLength }

func lengthError(kind string, length, rem int) error {
	return LengthError{Kind: kind, Length: length, Remaining: rem}
}

// NewDocumentLengthError creates and returns an error for when the length of a document exceeds
// the bytes available.
func NewDocumentLengthError(length, rem int) error {
	return lengthError("document", length, rem)
}

// NewArrayLengthError creates and returns an error for when the length of an array exceeds the
// bytes available.
func NewArrayLengthError(length, rem int) error {
	return lengthError("array", length, rem)
}

// IsStructural reports whether err describes malformed or truncated BSON, as opposed to a lookup
// miss or a type mismatch.
func IsStructural(err error) bool {
	var ibe InsufficientBytesError
	if errors.As(err, &ibe) {
		return true
	}
	var le LengthError
	if errors.As(err, &le) {
		return true
	}
	return errors.Is(err, ErrMissingNull) || errors.Is(err, ErrInvalidLength) ||
		errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrCorruptedDocument)
}

// ElementTypeError specifies that a method to obtain a BSON value an incorrect type was called on a bson.Value.
type ElementTypeError struct {
	Method string
	Type   Type
}

// Error implements the error interface.
func (ete ElementTypeError) Error() string {
	return "Call of " + ete.Method + " on " + ete.Type.String() + " type"
}
