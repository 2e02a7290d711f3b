// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"
	"unsafe"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

type decodeState struct {
	mode Mode
}

// bytes returns b as the target should hold it: b itself, capped so appends cannot write into the
// source buffer, when borrowing in View mode, and a copy otherwise.
func (ds *decodeState) bytes(b []byte, borrow bool) []byte {
	if ds.mode == View && borrow {
		return b[:len(b):len(b)]
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// string returns b as a string, referencing the source buffer when borrowing in View mode.
func (ds *decodeState) string(b []byte, borrow bool) string {
	if ds.mode == View && borrow && len(b) > 0 {
		return unsafe.String(&b[0], len(b))
	}
	return string(b)
}

func truncated(val bsoncore.Value) error {
	return malformed(bsoncore.NewInsufficientBytesError(val.Data, val.Data))
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

// decodeValue decodes val into rv, which must be settable. borrow reports whether the target
// asked to reference the source buffer.
func (ds *decodeState) decodeValue(val bsoncore.Value, rv reflect.Value, borrow bool) error {
	t := rv.Type()

	if t.Kind() == reflect.Ptr {
		if val.Type == bsoncore.TypeNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(t.Elem()))
		}
		return ds.decodeValue(val, rv.Elem(), borrow)
	}

	if val.Type == bsoncore.TypeNull && nullable(t) {
		rv.Set(reflect.Zero(t))
		return nil
	}
	expected, _ := expectedType(t)
	if !accepts(expected, val.Type) {
		return mismatch(expected, val.Type, t)
	}

	switch t {
	case tRaw, tCoreDocument:
		doc, ok := val.DocumentOK()
		if !ok {
			return truncated(val)
		}
		rv.SetBytes(ds.bytes(doc, borrow))
		return nil
	case tCoreArray:
		arr, ok := val.ArrayOK()
		if !ok {
			return truncated(val)
		}
		rv.SetBytes(ds.bytes(arr, borrow))
		return nil
	case tRawValue:
		rv.Set(reflect.ValueOf(RawValue{Type: val.Type, Value: ds.bytes(val.Data, borrow)}))
		return nil
	case tCoreValue:
		rv.Set(reflect.ValueOf(bsoncore.Value{Type: val.Type, Data: ds.bytes(val.Data, borrow)}))
		return nil
	case tD:
		doc, ok := val.DocumentOK()
		if !ok {
			return truncated(val)
		}
		d, err := ds.decodeD(doc, tD)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(d))
		return nil
	case tA:
		arr, ok := val.ArrayOK()
		if !ok {
			return truncated(val)
		}
		a, err := ds.decodeA(arr, tD)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(a))
		return nil
	case tTime:
		dt, ok := val.DateTimeOK()
		if !ok {
			return truncated(val)
		}
		rv.Set(reflect.ValueOf(time.UnixMilli(dt).UTC()))
		return nil
	case tBinary:
		subtype, data, ok := val.BinaryOK()
		if !ok {
			return truncated(val)
		}
		rv.Set(reflect.ValueOf(primitive.Binary{Subtype: subtype, Data: ds.bytes(data, borrow)}))
		return nil
	case tEmpty:
		v, err := ds.decodeAny(val, tD)
		if err != nil {
			return err
		}
		if v != nil {
			rv.Set(reflect.ValueOf(v))
		}
		return nil
	case tNull, tUndefined, tMinKey, tMaxKey:
		rv.Set(reflect.Zero(t))
		return nil
	case tOID, tDateTime, tDecimal, tTimestamp, tRegex, tDBPointer, tJavaScript, tSymbol, tCodeWithScope:
		v, err := ds.decodeAny(val, tD)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(v))
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		b, ok := val.BooleanOK()
		if !ok {
			return truncated(val)
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i64, ok := val.AsInt64OK()
		if !ok {
			return truncated(val)
		}
		if rv.OverflowInt(i64) {
			return &DecodeError{Reason: ReasonOverflow, Expected: expected, Actual: val.Type, Target: t}
		}
		rv.SetInt(i64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i64, ok := val.AsInt64OK()
		if !ok {
			return truncated(val)
		}
		if i64 < 0 || rv.OverflowUint(uint64(i64)) {
			return &DecodeError{Reason: ReasonOverflow, Expected: expected, Actual: val.Type, Target: t}
		}
		rv.SetUint(uint64(i64))
	case reflect.Float32, reflect.Float64:
		f64, ok := val.AsFloat64OK()
		if !ok {
			return truncated(val)
		}
		if rv.OverflowFloat(f64) {
			return &DecodeError{Reason: ReasonOverflow, Expected: expected, Actual: val.Type, Target: t}
		}
		rv.SetFloat(f64)
	case reflect.String:
		b, ok := val.StringBytesOK()
		if !ok {
			return truncated(val)
		}
		rv.SetString(ds.string(b, borrow))
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			_, data, ok := val.BinaryOK()
			if !ok {
				return truncated(val)
			}
			rv.SetBytes(ds.bytes(data, borrow))
			return nil
		}
		arr, ok := val.ArrayOK()
		if !ok {
			return truncated(val)
		}
		return ds.decodeSlice(arr, rv, borrow)
	case reflect.Array:
		arr, ok := val.ArrayOK()
		if !ok {
			return truncated(val)
		}
		return ds.decodeArray(arr, rv, borrow)
	case reflect.Map:
		doc, ok := val.DocumentOK()
		if !ok {
			return truncated(val)
		}
		return ds.decodeMap(doc, rv, borrow)
	case reflect.Struct:
		doc, ok := val.DocumentOK()
		if !ok {
			return truncated(val)
		}
		return ds.decodeStruct(doc, rv)
	default:
		return &DecodeError{Reason: ReasonUnsupported, Actual: val.Type, Target: t}
	}
	return nil
}

func (ds *decodeState) decodeStruct(doc bsoncore.Document, rv reflect.Value) error {
	shape, err := shapeFor(rv.Type())
	if err != nil {
		return &DecodeError{Reason: ReasonUnsupported, Target: rv.Type(), Err: err}
	}

	var seenBuf [32]bool
	var seen []bool
	if len(shape.Fields) <= len(seenBuf) {
		seen = seenBuf[:len(shape.Fields)]
	} else {
		seen = make([]bool, len(shape.Fields))
	}

	iter := bsoncore.Iterator{Data: doc}
	for {
		elem, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return malformed(err)
		}

		idx, ok := shape.byName[string(elem.KeyBytes())]
		if !ok {
			if shape.inlineMap == nil {
				continue
			}
			if err := ds.decodeInlineElement(elem, rv.FieldByIndex(shape.inlineMap)); err != nil {
				return prefixField(err, elem.Key())
			}
			continue
		}

		fs := &shape.Fields[idx]
		val, err := elem.ValueErr()
		if err != nil {
			return prefixField(malformed(err), fs.Name)
		}
		if err := ds.decodeValue(val, rv.FieldByIndex(fs.Index), fs.Borrow); err != nil {
			return prefixField(err, fs.Name)
		}
		seen[idx] = true
	}

	for idx, fs := range shape.Fields {
		if !seen[idx] && !fs.Optional {
			return &DecodeError{Field: fs.Name, Reason: ReasonMissing, Expected: fs.Expected, Target: fs.Type}
		}
	}
	return nil
}

func (ds *decodeState) decodeInlineElement(elem bsoncore.Element, mv reflect.Value) error {
	val, err := elem.ValueErr()
	if err != nil {
		return malformed(err)
	}
	t := mv.Type()
	if mv.IsNil() {
		mv.Set(reflect.MakeMap(t))
	}
	ev := reflect.New(t.Elem()).Elem()
	if t.Elem() == tEmpty {
		v, err := ds.decodeAny(val, tM)
		if err != nil {
			return err
		}
		if v != nil {
			ev.Set(reflect.ValueOf(v))
		}
	} else if err := ds.decodeValue(val, ev, false); err != nil {
		return err
	}
	mv.SetMapIndex(reflect.ValueOf(elem.Key()).Convert(t.Key()), ev)
	return nil
}

func (ds *decodeState) decodeMap(doc bsoncore.Document, rv reflect.Value, borrow bool) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return &DecodeError{Reason: ReasonUnsupported, Actual: bsoncore.TypeEmbeddedDocument, Target: t}
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}

	iter := bsoncore.Iterator{Data: doc}
	for {
		elem, err := iter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return malformed(err)
		}
		key := elem.Key()
		val, err := elem.ValueErr()
		if err != nil {
			return prefixField(malformed(err), key)
		}

		ev := reflect.New(t.Elem()).Elem()
		if t.Elem() == tEmpty {
			v, err := ds.decodeAny(val, tM)
			if err != nil {
				return prefixField(err, key)
			}
			if v != nil {
				ev.Set(reflect.ValueOf(v))
			}
		} else if err := ds.decodeValue(val, ev, borrow); err != nil {
			return prefixField(err, key)
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), ev)
	}
}

func (ds *decodeState) decodeSlice(arr bsoncore.Array, rv reflect.Value, borrow bool) error {
	elems, err := bsoncore.Document(arr).Elements()
	if err != nil {
		return malformed(err)
	}
	slice := reflect.MakeSlice(rv.Type(), len(elems), len(elems))
	for i, elem := range elems {
		val, err := elem.ValueErr()
		if err != nil {
			return prefixField(malformed(err), strconv.Itoa(i))
		}
		if err := ds.decodeValue(val, slice.Index(i), borrow); err != nil {
			return prefixField(err, strconv.Itoa(i))
		}
	}
	rv.Set(slice)
	return nil
}

func (ds *decodeState) decodeArray(arr bsoncore.Array, rv reflect.Value, borrow bool) error {
	elems, err := bsoncore.Document(arr).Elements()
	if err != nil {
		return malformed(err)
	}
	if len(elems) > rv.Len() {
		return &DecodeError{
			Reason: ReasonOverflow,
			Actual: bsoncore.TypeArray,
			Target: rv.Type(),
			Err:    fmt.Errorf("%d elements do not fit", len(elems)),
		}
	}
	for i, elem := range elems {
		val, err := elem.ValueErr()
		if err != nil {
			return prefixField(malformed(err), strconv.Itoa(i))
		}
		if err := ds.decodeValue(val, rv.Index(i), borrow); err != nil {
			return prefixField(err, strconv.Itoa(i))
		}
	}
	return nil
}

// decodeAny decodes val into its default owned Go representation. Embedded documents become a
// value of type docType, which is either D or M.
func (ds *decodeState) decodeAny(val bsoncore.Value, docType reflect.Type) (interface{}, error) {
	switch val.Type {
	case bsoncore.TypeDouble:
		if f64, ok := val.DoubleOK(); ok {
			return f64, nil
		}
	case bsoncore.TypeString:
		if s, ok := val.StringValueOK(); ok {
			return s, nil
		}
	case bsoncore.TypeEmbeddedDocument:
		doc, ok := val.DocumentOK()
		if !ok {
			break
		}
		if docType == tM {
			return ds.decodeM(doc)
		}
		return ds.decodeD(doc, docType)
	case bsoncore.TypeArray:
		if arr, ok := val.ArrayOK(); ok {
			return ds.decodeA(arr, docType)
		}
	case bsoncore.TypeBinary:
		if subtype, data, ok := val.BinaryOK(); ok {
			return primitive.Binary{Subtype: subtype, Data: ds.bytes(data, false)}, nil
		}
	case bsoncore.TypeUndefined:
		return primitive.Undefined{}, nil
	case bsoncore.TypeObjectID:
		if oid, ok := val.ObjectIDOK(); ok {
			return oid, nil
		}
	case bsoncore.TypeBoolean:
		if b, ok := val.BooleanOK(); ok {
			return b, nil
		}
	case bsoncore.TypeDateTime:
		if dt, ok := val.DateTimeOK(); ok {
			return primitive.DateTime(dt), nil
		}
	case bsoncore.TypeNull:
		return nil, nil
	case bsoncore.TypeRegex:
		if pattern, options, ok := val.RegexOK(); ok {
			return primitive.Regex{Pattern: pattern, Options: options}, nil
		}
	case bsoncore.TypeDBPointer:
		if ns, oid, ok := val.DBPointerOK(); ok {
			return primitive.DBPointer{DB: ns, Pointer: oid}, nil
		}
	case bsoncore.TypeJavaScript:
		if js, ok := val.JavaScriptOK(); ok {
			return primitive.JavaScript(js), nil
		}
	case bsoncore.TypeSymbol:
		if symbol, ok := val.SymbolOK(); ok {
			return primitive.Symbol(symbol), nil
		}
	case bsoncore.TypeCodeWithScope:
		code, scope, ok := val.CodeWithScopeOK()
		if !ok {
			break
		}
		d, err := ds.decodeD(scope, tD)
		if err != nil {
			return nil, err
		}
		return primitive.CodeWithScope{Code: primitive.JavaScript(code), Scope: d}, nil
	case bsoncore.TypeInt32:
		if i32, ok := val.Int32OK(); ok {
			return i32, nil
		}
	case bsoncore.TypeTimestamp:
		if t, i, ok := val.TimestampOK(); ok {
			return primitive.Timestamp{T: t, I: i}, nil
		}
	case bsoncore.TypeInt64:
		if i64, ok := val.Int64OK(); ok {
			return i64, nil
		}
	case bsoncore.TypeDecimal128:
		if h, l, ok := val.Decimal128OK(); ok {
			return primitive.NewDecimal128(h, l), nil
		}
	case bsoncore.TypeMinKey:
		return primitive.MinKey{}, nil
	case bsoncore.TypeMaxKey:
		return primitive.MaxKey{}, nil
	default:
		return nil, &DecodeError{Reason: ReasonUnsupported, Actual: val.Type, Target: tEmpty}
	}
	return nil, truncated(val)
}

func (ds *decodeState) decodeD(doc bsoncore.Document, docType reflect.Type) (D, error) {
	iter := bsoncore.Iterator{Data: doc}
	d := make(D, 0, 8)
	for {
		elem, err := iter.Next()
		if err == io.EOF {
			return d, nil
		}
		if err != nil {
			return nil, malformed(err)
		}
		key := elem.Key()
		val, err := elem.ValueErr()
		if err != nil {
			return nil, prefixField(malformed(err), key)
		}
		v, err := ds.decodeAny(val, docType)
		if err != nil {
			return nil, prefixField(err, key)
		}
		d = append(d, E{Key: key, Value: v})
	}
}

func (ds *decodeState) decodeM(doc bsoncore.Document) (M, error) {
	iter := bsoncore.Iterator{Data: doc}
	m := make(M)
	for {
		elem, err := iter.Next()
		if err == io.EOF {
			return m, nil
		}
		if err != nil {
			return nil, malformed(err)
		}
		key := elem.Key()
		val, err := elem.ValueErr()
		if err != nil {
			return nil, prefixField(malformed(err), key)
		}
		v, err := ds.decodeAny(val, tM)
		if err != nil {
			return nil, prefixField(err, key)
		}
		m[key] = v
	}
}

func (ds *decodeState) decodeA(arr bsoncore.Array, docType reflect.Type) (A, error) {
	iter := bsoncore.Iterator{Data: bsoncore.Document(arr)}
	a := make(A, 0, 4)
	for i := 0; ; i++ {
		elem, err := iter.Next()
		if err == io.EOF {
			return a, nil
		}
		if err != nil {
			return nil, malformed(err)
		}
		val, err := elem.ValueErr()
		if err != nil {
			return nil, prefixField(malformed(err), strconv.Itoa(i))
		}
		v, err := ds.decodeAny(val, docType)
		if err != nil {
			return nil, prefixField(err, strconv.Itoa(i))
		}
		a = append(a, v)
	}
}
