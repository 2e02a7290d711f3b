// Copyright (C) MongoDB, Inc. 2022-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"io"
)

// Iterator walks the elements of a document or array one at a time. Each element returned by
// Next is a subslice of Data. Once Next returns an error other than io.EOF, every later call
// returns the same error.
type Iterator struct {
	Data Document
	pos  int
	err  error
}

// Count returns the number of elements in Data, or 0 if Data is malformed.
func (iter *Iterator) Count() int {
	if iter == nil {
		return 0
	}

	length, rem, ok := ReadLength(iter.Data)
	if !ok || length < EmptyDocumentLength || int(length) > len(iter.Data) {
		return 0
	}
	rem = rem[:length-4]

	var count int
	for len(rem) > 1 {
		_, rem, ok = ReadElement(rem)
		if !ok {
			return 0
		}
		count++
	}
	return count
}

// Empty reports whether Data holds no elements.
func (iter *Iterator) Empty() bool {
	return len(iter.Data) <= EmptyDocumentLength
}

// Reset rewinds the iterator to the first element and clears any error.
func (iter *Iterator) Reset() {
	iter.pos = 0
	iter.err = nil
}

// Next returns the next element. It returns io.EOF once the terminating null byte is reached and
// a structural error when the next element cannot be read; a partial element is never returned.
func (iter *Iterator) Next() (Element, error) {
	if iter == nil {
		return nil, io.EOF
	}
	if iter.err != nil {
		return nil, iter.err
	}

	if iter.pos < 4 {
		length, _, ok := ReadLength(iter.Data)
		if !ok {
			return nil, iter.fail(NewInsufficientBytesError(iter.Data, iter.Data))
		}
		if length < EmptyDocumentLength || int(length) > len(iter.Data) {
			return nil, iter.fail(NewDocumentLengthError(int(length), len(iter.Data)))
		}
		if iter.Data[length-1] != 0x00 {
			return nil, iter.fail(ErrMissingNull)
		}
		iter.Data = iter.Data[:length]
		iter.pos = 4 // Skip the length of the document
	}

	if iter.pos >= len(iter.Data)-1 {
		return nil, io.EOF // At the end of the document
	}

	// The terminating null byte is excluded so an element can never claim it.
	elem, _, ok := ReadElement(iter.Data[iter.pos : len(iter.Data)-1])
	if !ok {
		return nil, iter.fail(NewInsufficientBytesError(iter.Data, iter.Data[iter.pos:]))
	}

	iter.pos += len(elem)
	return elem, nil
}

func (iter *Iterator) fail(err error) error {
	iter.err = err
	return err
}
