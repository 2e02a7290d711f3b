// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"reflect"
	"time"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// D is an ordered representation of a BSON document.
//
// Example usage:
//
//	bson.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
type D = primitive.D

// E represents a BSON element for a D. It is usually used inside a D.
type E = primitive.E

// M is an unordered representation of a BSON document.
//
// Example usage:
//
//	bson.M{"foo": "bar", "hello": "world", "pi": 3.14159}
type M = primitive.M

// An A is an ordered representation of a BSON array.
//
// Example usage:
//
//	bson.A{"bar", "world", 3.14159, bson.D{{"qux", 12345}}}
type A = primitive.A

// Type is a BSON type tag.
type Type = bsoncore.Type

var (
	tTime      = reflect.TypeOf(time.Time{})
	tEmpty     = reflect.TypeOf((*interface{})(nil)).Elem()
	tByteSlice = reflect.TypeOf([]byte(nil))

	tD = reflect.TypeOf(D{})
	tA = reflect.TypeOf(A{})
	tM = reflect.TypeOf(M{})

	tRaw          = reflect.TypeOf(Raw(nil))
	tRawValue     = reflect.TypeOf(RawValue{})
	tCoreDocument = reflect.TypeOf(bsoncore.Document(nil))
	tCoreArray    = reflect.TypeOf(bsoncore.Array(nil))
	tCoreValue    = reflect.TypeOf(bsoncore.Value{})

	tBinary        = reflect.TypeOf(primitive.Binary{})
	tUndefined     = reflect.TypeOf(primitive.Undefined{})
	tOID           = reflect.TypeOf(primitive.ObjectID{})
	tDateTime      = reflect.TypeOf(primitive.DateTime(0))
	tNull          = reflect.TypeOf(primitive.Null{})
	tRegex         = reflect.TypeOf(primitive.Regex{})
	tCodeWithScope = reflect.TypeOf(primitive.CodeWithScope{})
	tDBPointer     = reflect.TypeOf(primitive.DBPointer{})
	tJavaScript    = reflect.TypeOf(primitive.JavaScript(""))
	tSymbol        = reflect.TypeOf(primitive.Symbol(""))
	tTimestamp     = reflect.TypeOf(primitive.Timestamp{})
	tDecimal       = reflect.TypeOf(primitive.Decimal128{})
	tMinKey        = reflect.TypeOf(primitive.MinKey{})
	tMaxKey        = reflect.TypeOf(primitive.MaxKey{})
)

// anyType marks a target that accepts every BSON type.
const anyType Type = 0

// borrowable reports whether values of t can reference the source buffer in View mode.
func borrowable(t reflect.Type) bool {
	switch t {
	case tRaw, tRawValue, tCoreDocument, tCoreArray, tCoreValue, tBinary, tByteSlice:
		return true
	}
	return t.Kind() == reflect.String || (t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8)
}

// rawViewType reports whether t is one of the view types that always alias in View mode.
func rawViewType(t reflect.Type) bool {
	switch t {
	case tRaw, tRawValue, tCoreDocument, tCoreArray, tCoreValue:
		return true
	}
	return false
}

// expectedType returns the BSON type a target of type t decodes from and whether the target may
// be absent. Pointer targets are optional and expect the type of their element.
func expectedType(t reflect.Type) (Type, bool) {
	optional := false
	for t.Kind() == reflect.Ptr {
		optional = true
		t = t.Elem()
	}

	switch t {
	case tRaw, tCoreDocument, tD, tM:
		return bsoncore.TypeEmbeddedDocument, optional
	case tCoreArray, tA:
		return bsoncore.TypeArray, optional
	case tRawValue, tCoreValue, tEmpty:
		return anyType, optional
	case tBinary, tByteSlice:
		return bsoncore.TypeBinary, optional
	case tOID:
		return bsoncore.TypeObjectID, optional
	case tDateTime, tTime:
		return bsoncore.TypeDateTime, optional
	case tUndefined:
		return bsoncore.TypeUndefined, optional
	case tNull:
		return bsoncore.TypeNull, optional
	case tRegex:
		return bsoncore.TypeRegex, optional
	case tCodeWithScope:
		return bsoncore.TypeCodeWithScope, optional
	case tDBPointer:
		return bsoncore.TypeDBPointer, optional
	case tJavaScript:
		return bsoncore.TypeJavaScript, optional
	case tSymbol:
		return bsoncore.TypeSymbol, optional
	case tTimestamp:
		return bsoncore.TypeTimestamp, optional
	case tDecimal:
		return bsoncore.TypeDecimal128, optional
	case tMinKey:
		return bsoncore.TypeMinKey, optional
	case tMaxKey:
		return bsoncore.TypeMaxKey, optional
	}

	switch t.Kind() {
	case reflect.Bool:
		return bsoncore.TypeBoolean, optional
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return bsoncore.TypeInt32, optional
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return bsoncore.TypeInt64, optional
	case reflect.Float32, reflect.Float64:
		return bsoncore.TypeDouble, optional
	case reflect.String:
		return bsoncore.TypeString, optional
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return bsoncore.TypeBinary, optional
		}
		return bsoncore.TypeArray, optional
	case reflect.Array:
		return bsoncore.TypeArray, optional
	case reflect.Struct, reflect.Map:
		return bsoncore.TypeEmbeddedDocument, optional
	}
	return anyType, optional
}

// accepts reports whether a value encoded as actual can be decoded into a target expecting
// expected. Besides an exact match, 32-bit integers widen into 64-bit integer and double targets
// and 64-bit integers widen into double targets.
func accepts(expected, actual Type) bool {
	if expected == anyType || expected == actual {
		return true
	}
	switch expected {
	case bsoncore.TypeInt64:
		return actual == bsoncore.TypeInt32
	case bsoncore.TypeDouble:
		return actual == bsoncore.TypeInt32 || actual == bsoncore.TypeInt64
	}
	return false
}
