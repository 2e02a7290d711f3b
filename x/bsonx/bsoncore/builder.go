// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"strconv"
	"time"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
)

// DocumentBuilder builds a bson document. Nested documents are opened with StartDocument and
// closed with FinishDocument.
type DocumentBuilder struct {
	doc     []byte
	indexes []int32
}

// NewDocumentBuilder creates a new DocumentBuilder
func NewDocumentBuilder() *DocumentBuilder {
	return (&DocumentBuilder{}).startDocument()
}

// startDocument reserves the document's length and set the index to where the length begins
func (db *DocumentBuilder) startDocument() *DocumentBuilder {
	var index int32
	index, db.doc = AppendDocumentStart(db.doc)
	db.indexes = append(db.indexes, index)
	return db
}

// finish terminates the innermost open document and writes its length.
func (db *DocumentBuilder) finish() {
	last := len(db.indexes) - 1
	db.doc = append(db.doc, 0x00)
	db.doc = UpdateLength(db.doc, db.indexes[last], int32(len(db.doc[db.indexes[last]:])))
	db.indexes = db.indexes[:last]
}

// Build closes every open document and returns the document bytes.
func (db *DocumentBuilder) Build() Document {
	for len(db.indexes) > 0 {
		db.finish()
	}
	return db.doc
}

// StartDocument starts an embedded document element under key. Elements appended until the
// matching FinishDocument belong to it.
func (db *DocumentBuilder) StartDocument(key string) *DocumentBuilder {
	db.doc = AppendHeader(db.doc, TypeEmbeddedDocument, key)
	return db.startDocument()
}

// FinishDocument closes the most recently started embedded document.
func (db *DocumentBuilder) FinishDocument() *DocumentBuilder {
	if len(db.indexes) > 1 {
		db.finish()
	}
	return db
}

// AppendValue appends a raw value under key.
func (db *DocumentBuilder) AppendValue(key string, val Value) *DocumentBuilder {
	db.doc = AppendValueElement(db.doc, key, val)
	return db
}

// AppendInt32 will append an int32 element using key and i32 to DocumentBuilder.doc
func (db *DocumentBuilder) AppendInt32(key string, i32 int32) *DocumentBuilder {
	db.doc = AppendInt32Element(db.doc, key, i32)
	return db
}

// AppendInt64 will append an int64 element using key and i64 to DocumentBuilder.doc
func (db *DocumentBuilder) AppendInt64(key string, i64 int64) *DocumentBuilder {
	db.doc = AppendInt64Element(db.doc, key, i64)
	return db
}

// AppendDouble will append a double element using key and f to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDouble(key string, f float64) *DocumentBuilder {
	db.doc = AppendDoubleElement(db.doc, key, f)
	return db
}

// AppendString will append a string element using key and str to DocumentBuilder.doc
func (db *DocumentBuilder) AppendString(key string, str string) *DocumentBuilder {
	db.doc = AppendStringElement(db.doc, key, str)
	return db
}

// AppendBoolean will append a boolean element using key and b to DocumentBuilder.doc
func (db *DocumentBuilder) AppendBoolean(key string, b bool) *DocumentBuilder {
	db.doc = AppendBooleanElement(db.doc, key, b)
	return db
}

// AppendObjectID will append an objectid element using key and oid to DocumentBuilder.doc
func (db *DocumentBuilder) AppendObjectID(key string, oid primitive.ObjectID) *DocumentBuilder {
	db.doc = AppendObjectIDElement(db.doc, key, oid)
	return db
}

// AppendBinary will append a binary element using key, subtype and b to DocumentBuilder.doc
func (db *DocumentBuilder) AppendBinary(key string, subtype byte, b []byte) *DocumentBuilder {
	db.doc = AppendBinaryElement(db.doc, key, subtype, b)
	return db
}

// AppendDateTime will append a datetime element using key and dt to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDateTime(key string, dt int64) *DocumentBuilder {
	db.doc = AppendDateTimeElement(db.doc, key, dt)
	return db
}

// AppendTime will append t as a datetime element under key.
func (db *DocumentBuilder) AppendTime(key string, t time.Time) *DocumentBuilder {
	db.doc = AppendTimeElement(db.doc, key, t)
	return db
}

// AppendNull will append a null element using key to DocumentBuilder.doc
func (db *DocumentBuilder) AppendNull(key string) *DocumentBuilder {
	db.doc = AppendNullElement(db.doc, key)
	return db
}

// AppendDocument will append a bson embeded document element using key
// and doc to DocumentBuilder.doc
func (db *DocumentBuilder) AppendDocument(key string, doc []byte) *DocumentBuilder {
	db.doc = AppendDocumentElement(db.doc, key, doc)
	return db
}

// AppendArray will append a bson array using key and arr to DocumentBuilder.doc
func (db *DocumentBuilder) AppendArray(key string, arr []byte) *DocumentBuilder {
	db.doc = AppendArrayElement(db.doc, key, arr)
	return db
}

// ArrayBuilder builds a bson array. Keys are generated from the position of each value.
type ArrayBuilder struct {
	arr     []byte
	indexes []int32
	keys    []int
}

// NewArrayBuilder creates a new ArrayBuilder
func NewArrayBuilder() *ArrayBuilder {
	return (&ArrayBuilder{}).startArray()
}

// startArray reserves the array's length and sets the index to where the length begins
func (a *ArrayBuilder) startArray() *ArrayBuilder {
	var index int32
	index, a.arr = AppendArrayStart(a.arr)
	a.indexes = append(a.indexes, index)
	a.keys = append(a.keys, 0)
	return a
}

// nextKey returns the key of the next value in the innermost open array.
func (a *ArrayBuilder) nextKey() string {
	last := len(a.keys) - 1
	key := strconv.Itoa(a.keys[last])
	a.keys[last]++
	return key
}

func (a *ArrayBuilder) finish() {
	last := len(a.indexes) - 1
	a.arr = append(a.arr, 0x00)
	a.arr = UpdateLength(a.arr, a.indexes[last], int32(len(a.arr[a.indexes[last]:])))
	a.indexes = a.indexes[:last]
	a.keys = a.keys[:len(a.keys)-1]
}

// Build closes every open array and returns the array bytes.
func (a *ArrayBuilder) Build() Array {
	for len(a.indexes) > 0 {
		a.finish()
	}
	return a.arr
}

// StartArray starts a nested array as the next value. Values appended until the matching
// FinishArray belong to it.
func (a *ArrayBuilder) StartArray() *ArrayBuilder {
	a.arr = AppendHeader(a.arr, TypeArray, a.nextKey())
	return a.startArray()
}

// FinishArray closes the most recently started nested array.
func (a *ArrayBuilder) FinishArray() *ArrayBuilder {
	if len(a.indexes) > 1 {
		a.finish()
	}
	return a
}

// AppendValue appends a raw value.
func (a *ArrayBuilder) AppendValue(val Value) *ArrayBuilder {
	a.arr = AppendValueElement(a.arr, a.nextKey(), val)
	return a
}

// AppendInt32 will append i32 to ArrayBuilder.arr
func (a *ArrayBuilder) AppendInt32(i32 int32) *ArrayBuilder {
	a.arr = AppendInt32Element(a.arr, a.nextKey(), i32)
	return a
}

// AppendInt64 will append i64 to ArrayBuilder.arr
func (a *ArrayBuilder) AppendInt64(i64 int64) *ArrayBuilder {
	a.arr = AppendInt64Element(a.arr, a.nextKey(), i64)
	return a
}

// AppendDouble will append f to ArrayBuilder.arr
func (a *ArrayBuilder) AppendDouble(f float64) *ArrayBuilder {
	a.arr = AppendDoubleElement(a.arr, a.nextKey(), f)
	return a
}

// AppendString will append str to ArrayBuilder.arr
func (a *ArrayBuilder) AppendString(str string) *ArrayBuilder {
	a.arr = AppendStringElement(a.arr, a.nextKey(), str)
	return a
}

// AppendBoolean will append b to ArrayBuilder.arr
func (a *ArrayBuilder) AppendBoolean(b bool) *ArrayBuilder {
	a.arr = AppendBooleanElement(a.arr, a.nextKey(), b)
	return a
}

// AppendNull will append a null value to ArrayBuilder.arr
func (a *ArrayBuilder) AppendNull() *ArrayBuilder {
	a.arr = AppendNullElement(a.arr, a.nextKey())
	return a
}

// AppendDocument will append doc to ArrayBuilder.arr
func (a *ArrayBuilder) AppendDocument(doc []byte) *ArrayBuilder {
	a.arr = AppendDocumentElement(a.arr, a.nextKey(), doc)
	return a
}

// AppendArray will append arr to ArrayBuilder.arr
func (a *ArrayBuilder) AppendArray(arr []byte) *ArrayBuilder {
	a.arr = AppendArrayElement(a.arr, a.nextKey(), arr)
	return a
}
