// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import "io"

// Array is a raw bytes representation of a BSON array. It has the layout of a Document whose keys
// are the decimal indexes "0", "1", ... in order.
type Array []byte

// NewArrayFromReader reads an array from r. This function will only validate the length is
// correct and that the array ends with a null byte.
func NewArrayFromReader(r io.Reader) (Array, error) {
	return newBufferFromReader(r)
}

// Index searches for and retrieves the value at the given index. This method will panic if
// the array is invalid or if the index is out of bounds.
func (a Array) Index(index uint) Value {
	value, err := a.IndexErr(index)
	if err != nil {
		panic(err)
	}
	return value
}

// IndexErr searches for and retrieves the value at the given index.
func (a Array) IndexErr(index uint) (Value, error) {
	elem, err := indexErr(a, index)
	if err != nil {
		return Value{}, err
	}
	return elem.ValueErr()
}

// DebugString outputs a human readable version of a. Values are written up to the first
// malformed one.
func (a Array) DebugString() string { return debugString(a, "Array", true) }

// String renders a as canonical Extended JSON. An invalid array renders as the empty string.
func (a Array) String() string { return extJSONString(a.AppendExtJSON(nil, true)) }

// Values returns this array as a slice of values. The returned slice will contain valid values.
// If the array is not valid, the values up to the invalid point will be returned along with an
// error.
func (a Array) Values() ([]Value, error) {
	return values(a)
}

// Iterator returns an Iterator over the elements of a.
func (a Array) Iterator() *Iterator {
	return &Iterator{Data: Document(a)}
}

// Validate checks the framing of a and every value in it. Keys must be the element indexes in
// ascending order.
func (a Array) Validate() error { return validateElements(a, true) }
