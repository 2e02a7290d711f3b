// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// Marshal returns the BSON encoding of val.
//
// val must encode as a document: a struct, a map with string keys, a D, a Raw or a
// bsoncore.Document. Struct fields are named and flagged by their bson tags the same way
// Unmarshal reads them. Fields flagged omitempty are left out when they hold the zero value for
// their type or an empty slice, map or string.
//
// M and other maps are encoded with their keys in ascending order so the output is deterministic.
func Marshal(val interface{}) ([]byte, error) {
	return MarshalAppend(nil, val)
}

// MarshalAppend appends the BSON encoding of val to dst and returns the extended buffer.
func MarshalAppend(dst []byte, val interface{}) ([]byte, error) {
	if val == nil {
		return dst, ErrNilDocument
	}
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return dst, ErrNilDocument
		}
		rv = rv.Elem()
	}
	t, err := valueType(rv)
	if err != nil {
		return dst, err
	}
	if t != bsoncore.TypeEmbeddedDocument {
		return dst, fmt.Errorf("bson: cannot marshal %s as a document, it encodes as %s", rv.Type(), t)
	}
	return appendValue(dst, rv)
}

// ErrNilDocument is returned when a nil value is marshaled as a document.
var ErrNilDocument = errors.New("bson: cannot marshal a nil document")

// MarshalValue returns the BSON type and payload of val.
func MarshalValue(val interface{}) (Type, []byte, error) {
	if val == nil {
		return bsoncore.TypeNull, nil, nil
	}
	rv := reflect.ValueOf(val)
	t, err := valueType(rv)
	if err != nil {
		return 0, nil, err
	}
	data, err := appendValue(nil, rv)
	if err != nil {
		return 0, nil, err
	}
	return t, data, nil
}

// valueType returns the BSON type rv encodes as.
func valueType(rv reflect.Value) (Type, error) {
	if !rv.IsValid() {
		return bsoncore.TypeNull, nil
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return bsoncore.TypeNull, nil
		}
		return valueType(rv.Elem())
	}

	switch rv.Type() {
	case tRawValue:
		return rv.Interface().(RawValue).Type, nil
	case tCoreValue:
		return rv.Interface().(bsoncore.Value).Type, nil
	}
	expected, _ := expectedType(rv.Type())
	if expected == anyType {
		return 0, fmt.Errorf("bson: cannot marshal value of type %s", rv.Type())
	}
	return expected, nil
}

func appendValue(dst []byte, rv reflect.Value) ([]byte, error) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return dst, nil
		}
		rv = rv.Elem()
	}

	switch rv.Type() {
	case tRaw, tCoreDocument, tCoreArray:
		if rv.Len() == 0 {
			return bsoncore.AppendDocument(dst, emptyDocument), nil
		}
		return append(dst, rv.Bytes()...), nil
	case tRawValue:
		return append(dst, rv.Interface().(RawValue).Value...), nil
	case tCoreValue:
		return append(dst, rv.Interface().(bsoncore.Value).Data...), nil
	case tD:
		return appendD(dst, rv.Interface().(D))
	case tTime:
		return bsoncore.AppendTime(dst, rv.Interface().(time.Time)), nil
	case tBinary:
		b := rv.Interface().(primitive.Binary)
		return bsoncore.AppendBinary(dst, b.Subtype, b.Data), nil
	case tOID:
		return bsoncore.AppendObjectID(dst, rv.Interface().(primitive.ObjectID)), nil
	case tDateTime:
		return bsoncore.AppendDateTime(dst, rv.Int()), nil
	case tNull, tUndefined, tMinKey, tMaxKey:
		return dst, nil
	case tRegex:
		re := rv.Interface().(primitive.Regex)
		return bsoncore.AppendRegex(dst, re.Pattern, re.Options), nil
	case tDBPointer:
		dbp := rv.Interface().(primitive.DBPointer)
		return bsoncore.AppendDBPointer(dst, dbp.DB, dbp.Pointer), nil
	case tJavaScript:
		return bsoncore.AppendJavaScript(dst, rv.String()), nil
	case tSymbol:
		return bsoncore.AppendSymbol(dst, rv.String()), nil
	case tCodeWithScope:
		cws := rv.Interface().(primitive.CodeWithScope)
		scope, err := appendD(nil, cws.Scope)
		if err != nil {
			return dst, err
		}
		return bsoncore.AppendCodeWithScope(dst, string(cws.Code), scope), nil
	case tTimestamp:
		ts := rv.Interface().(primitive.Timestamp)
		return bsoncore.AppendTimestamp(dst, ts.T, ts.I), nil
	case tDecimal:
		h, l := rv.Interface().(primitive.Decimal128).GetBytes()
		return bsoncore.AppendDecimal128(dst, h, l), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return bsoncore.AppendBoolean(dst, rv.Bool()), nil
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return bsoncore.AppendInt32(dst, int32(rv.Int())), nil
	case reflect.Uint8, reflect.Uint16:
		return bsoncore.AppendInt32(dst, int32(rv.Uint())), nil
	case reflect.Int, reflect.Int64:
		return bsoncore.AppendInt64(dst, rv.Int()), nil
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return dst, fmt.Errorf("bson: %d overflows int64", u)
		}
		return bsoncore.AppendInt64(dst, int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return bsoncore.AppendDouble(dst, rv.Float()), nil
	case reflect.String:
		return bsoncore.AppendString(dst, rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return bsoncore.AppendBinary(dst, 0x00, rv.Bytes()), nil
		}
		return appendArray(dst, rv)
	case reflect.Array:
		return appendArray(dst, rv)
	case reflect.Map:
		return appendMap(dst, rv)
	case reflect.Struct:
		return appendStruct(dst, rv)
	}
	return dst, fmt.Errorf("bson: cannot marshal value of type %s", rv.Type())
}

var emptyDocument = []byte{0x05, 0x00, 0x00, 0x00, 0x00}

func appendElement(dst []byte, key string, rv reflect.Value) ([]byte, error) {
	t, err := valueType(rv)
	if err != nil {
		return dst, prefixField(err, key)
	}
	dst = bsoncore.AppendHeader(dst, t, key)
	dst, err = appendValue(dst, rv)
	if err != nil {
		return dst, prefixField(err, key)
	}
	return dst, nil
}

func appendD(dst []byte, d D) ([]byte, error) {
	idx, dst := bsoncore.AppendDocumentStart(dst)
	var err error
	for _, e := range d {
		dst, err = appendElement(dst, e.Key, reflect.ValueOf(&e.Value).Elem())
		if err != nil {
			return dst, err
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

func appendArray(dst []byte, rv reflect.Value) ([]byte, error) {
	idx, dst := bsoncore.AppendArrayStart(dst)
	var err error
	for i := 0; i < rv.Len(); i++ {
		dst, err = appendElement(dst, arrayKey(i), rv.Index(i))
		if err != nil {
			return dst, err
		}
	}
	return bsoncore.AppendArrayEnd(dst, idx)
}

func appendMap(dst []byte, rv reflect.Value) ([]byte, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return dst, fmt.Errorf("bson: cannot marshal map with %s keys", rv.Type().Key())
	}
	idx, dst := bsoncore.AppendDocumentStart(dst)
	dst, err := appendMapElements(dst, rv, nil)
	if err != nil {
		return dst, err
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

func appendMapElements(dst []byte, rv reflect.Value, exclude map[string]int) ([]byte, error) {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	var err error
	for _, k := range keys {
		if _, ok := exclude[k.String()]; ok {
			return dst, fmt.Errorf("bson: inline map key %q collides with a struct field", k.String())
		}
		dst, err = appendElement(dst, k.String(), rv.MapIndex(k))
		if err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func appendStruct(dst []byte, rv reflect.Value) ([]byte, error) {
	shape, err := shapeFor(rv.Type())
	if err != nil {
		return dst, err
	}
	idx, dst := bsoncore.AppendDocumentStart(dst)
	for _, fs := range shape.Fields {
		fv, ok := fieldByIndex(rv, fs.Index)
		if !ok {
			continue
		}
		if fs.OmitEmpty && isZero(fv) {
			continue
		}
		dst, err = appendElement(dst, fs.Name, fv)
		if err != nil {
			return dst, err
		}
	}
	if shape.inlineMap != nil {
		if mv, ok := fieldByIndex(rv, shape.inlineMap); ok && !mv.IsNil() {
			dst, err = appendMapElements(dst, mv, shape.byName)
			if err != nil {
				return dst, err
			}
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

// fieldByIndex is like reflect.Value.FieldByIndex except that it reports false instead of
// panicking when it reaches a nil embedded pointer.
func fieldByIndex(rv reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			rv = rv.Elem()
		}
		rv = rv.Field(x)
	}
	return rv, true
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		if v.Type() == tTime {
			return v.Interface().(time.Time).IsZero()
		}
		return v.IsZero()
	}
	return false
}

func arrayKey(i int) string {
	if i < len(smallIndexes) {
		return smallIndexes[i]
	}
	return fmt.Sprint(i)
}

var smallIndexes = func() []string {
	keys := make([]string, 32)
	for i := range keys {
		keys[i] = fmt.Sprint(i)
	}
	return keys
}()
