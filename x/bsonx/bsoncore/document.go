// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Document is a raw bytes representation of a BSON document. It is a view: lookups and traversal
// read the bytes in place and only the requested values are ever decoded.
type Document []byte

// NewDocument checks the framing of b and returns the document it holds. Only the length prefix,
// the declared length against the bytes available and the trailing null byte are inspected, so the
// cost is constant. The returned Document is b resliced to the declared length, never a copy.
func NewDocument(b []byte) (Document, error) {
	length, _, ok := ReadLength(b)
	if !ok {
		if len(b) >= 4 {
			return nil, NewDocumentLengthError(int(length), len(b))
		}
		return nil, NewInsufficientBytesError(b, b)
	}
	if length < EmptyDocumentLength || int(length) > len(b) {
		return nil, NewDocumentLengthError(int(length), len(b))
	}
	if b[length-1] != 0x00 {
		return nil, ErrMissingNull
	}
	return Document(b[:length]), nil
}

// NewDocumentFromReader reads a document from r. This function will only validate the length is
// correct and that the document ends with a null byte.
func NewDocumentFromReader(r io.Reader) (Document, error) {
	return newBufferFromReader(r)
}

func newBufferFromReader(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	var lengthBytes [4]byte

	// ReadFull guarantees that we will have read at least len(lengthBytes) if err == nil
	_, err := io.ReadFull(r, lengthBytes[:])
	if err != nil {
		return nil, err
	}

	length, _, _ := readi32(lengthBytes[:]) // ignore ok since we always have enough bytes to read a length
	if length < EmptyDocumentLength {
		return nil, ErrInvalidLength
	}
	buffer := make([]byte, length)

	copy(buffer, lengthBytes[:])

	_, err = io.ReadFull(r, buffer[4:])
	if err != nil {
		return nil, err
	}

	if buffer[length-1] != 0x00 {
		return nil, ErrMissingNull
	}

	return buffer, nil
}

// Lookup searches the document, potentially recursively, for the given key. If there are multiple
// keys provided, this method will recurse down, as long as the top and intermediate nodes are
// either documents or arrays. If an error occurs or if the value doesn't exist, an empty Value is
// returned.
func (d Document) Lookup(key ...string) Value {
	val, _ := d.LookupErr(key...)
	return val
}

// LookupErr is the same as Lookup, except it returns an error in addition to an empty Value.
//
// Sibling elements are skipped by their encoded size; none of their payloads are decoded.
func (d Document) LookupErr(key ...string) (Value, error) {
	if len(key) < 1 {
		return Value{}, ErrEmptyKey
	}
	length, rem, ok := ReadLength(d)
	if !ok {
		return Value{}, NewInsufficientBytesError(d, rem)
	}

	length -= 4

	var elem Element
	for length > 1 {
		elem, rem, ok = ReadElement(rem)
		length -= int32(len(elem))
		if !ok {
			return Value{}, NewInsufficientBytesError(d, rem)
		}
		if string(elem.KeyBytes()) != key[0] {
			continue
		}
		if len(key) > 1 {
			tt := Type(elem[0])
			switch tt {
			case TypeEmbeddedDocument, TypeArray:
				val, err := elem.ValueErr()
				if err != nil {
					return Value{}, err
				}
				return Document(val.Data).LookupErr(key[1:]...)
			default:
				return Value{}, ErrInvalidDepthTraversal
			}
		}
		return elem.ValueErr()
	}
	return Value{}, ErrElementNotFound
}

// Index searches for and retrieves the element at the given index. This method will panic if
// the document is invalid or if the index is out of bounds.
func (d Document) Index(index uint) Element {
	elem, err := d.IndexErr(index)
	if err != nil {
		panic(err)
	}
	return elem
}

// IndexErr searches for and retrieves the element at the given index.
func (d Document) IndexErr(index uint) (Element, error) {
	return indexErr(d, index)
}

func indexErr(b []byte, index uint) (Element, error) {
	length, rem, ok := ReadLength(b)
	if !ok {
		return nil, NewInsufficientBytesError(b, rem)
	}

	length -= 4

	var current uint
	var elem Element
	for length > 1 {
		elem, rem, ok = ReadElement(rem)
		length -= int32(len(elem))
		if !ok {
			return nil, NewInsufficientBytesError(b, rem)
		}
		if current != index {
			current++
			continue
		}
		return elem, nil
	}
	return nil, ErrOutOfBounds
}

// DebugString outputs a human readable version of d. Elements are written up to the first
// malformed one.
func (d Document) DebugString() string { return debugString(d, "Document", false) }

// debugString writes label, the declared length and the debug form of each element of b. Array
// elements are written as comma separated values without their keys.
func debugString(b []byte, label string, array bool) string {
	length, _, ok := ReadLength(b)
	if !ok || length < EmptyDocumentLength {
		return "<malformed>"
	}
	open, end := byte('{'), byte('}')
	if array {
		open, end = '[', ']'
	}
	var buf strings.Builder
	buf.WriteString(label)
	buf.WriteByte('(')
	buf.WriteString(strconv.Itoa(int(length)))
	buf.WriteByte(')')
	buf.WriteByte(open)
	iter := Iterator{Data: b}
	for n := 0; ; n++ {
		elem, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(&buf, "<malformed (%v)>", err)
			break
		}
		if !array {
			buf.WriteString(elem.DebugString())
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(elem.Value().DebugString())
	}
	buf.WriteByte(end)
	return buf.String()
}

// String renders d as canonical Extended JSON. An invalid document renders as the empty string.
func (d Document) String() string { return extJSONString(d.AppendExtJSON(nil, true)) }

// Elements returns this document as a slice of elements, in document order. Each element is a
// subslice of d. If the document is not valid, the elements up to the invalid point will be
// returned along with an error.
//
// Element payloads are not validated; use Validate for a full structural check.
func (d Document) Elements() ([]Element, error) {
	length, rem, ok := ReadLength(d)
	if !ok {
		return nil, NewInsufficientBytesError(d, rem)
	}

	length -= 4

	var elem Element
	var elems []Element
	for length > 1 {
		elem, rem, ok = ReadElement(rem)
		length -= int32(len(elem))
		if !ok {
			return elems, NewInsufficientBytesError(d, rem)
		}
		elems = append(elems, elem)
	}
	if length != 1 {
		return elems, ErrInvalidLength
	}
	return elems, nil
}

// Values returns this document as a slice of values. The returned slice will contain valid values.
// If the document is not valid, the values up to the invalid point will be returned along with an
// error.
func (d Document) Values() ([]Value, error) {
	return values(d)
}

func values(b []byte) ([]Value, error) {
	length, rem, ok := ReadLength(b)
	if !ok {
		return nil, NewInsufficientBytesError(b, rem)
	}

	length -= 4

	var elem Element
	var vals []Value
	for length > 1 {
		elem, rem, ok = ReadElement(rem)
		length -= int32(len(elem))
		if !ok {
			return vals, NewInsufficientBytesError(b, rem)
		}
		val, err := elem.ValueErr()
		if err != nil {
			return vals, err
		}
		vals = append(vals, val)
	}
	return vals, nil
}

// Iterator returns an Iterator over the elements of d.
func (d Document) Iterator() *Iterator {
	return &Iterator{Data: d}
}

// Validate checks the framing of d and then every element in it, recursing into embedded
// documents, arrays and code with scope.
func (d Document) Validate() error { return validateElements(d, false) }

// validateElements checks the framing of b, then each element up to the terminating null byte. In
// array mode keys must count up from "0".
func validateElements(b []byte, array bool) error {
	length, rem, ok := ReadLength(b)
	if !ok {
		return NewInsufficientBytesError(b, rem)
	}
	if length < EmptyDocumentLength || int(length) > len(b) {
		if array {
			return NewArrayLengthError(int(length), len(b))
		}
		return NewDocumentLengthError(int(length), len(b))
	}
	if b[length-1] != 0x00 {
		return ErrMissingNull
	}

	body := b[4 : length-1]
	for idx := 0; len(body) > 0; idx++ {
		elem, rest, ok := ReadElement(body)
		if !ok {
			return NewInsufficientBytesError(b, body)
		}
		if err := elem.Validate(); err != nil {
			return err
		}
		if array && string(elem.KeyBytes()) != strconv.Itoa(idx) {
			return fmt.Errorf("%w: array key %q is out of order", ErrInvalidKey, elem.Key())
		}
		body = rest
	}
	return nil
}

// Copy returns an owned copy of d that does not alias the original buffer.
func (d Document) Copy() Document {
	if d == nil {
		return nil
	}
	return append(Document(make([]byte, 0, len(d))), d...)
}

// ErrStopWalk can be returned from a Walk callback to end the walk early.
var ErrStopWalk = errors.New("stop walk")

// Walk calls fn for each top level element of d in order. Returning a non-nil error from fn stops
// the walk and that error is returned, unless it is ErrStopWalk in which case Walk returns nil.
func (d Document) Walk(fn func(Element) error) error {
	iter := d.Iterator()
	for {
		elem, err := iter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err = fn(elem); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}
	}
}
