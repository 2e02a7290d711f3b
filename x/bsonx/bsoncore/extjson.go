// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"encoding/base64"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
)

const relaxedDateFormat = "2006-01-02T15:04:05.999Z07:00"

// AppendExtJSON appends the Extended JSON representation of d to dst. Elements are written
// straight from the document bytes. In relaxed mode numbers are written as plain JSON numbers
// when that is lossless enough, and dates between the years 1970 and 9999 as ISO-8601 strings.
//
// If d is not valid, the output up to the invalid point is returned along with an error.
func (d Document) AppendExtJSON(dst []byte, canonical bool) ([]byte, error) {
	return appendExtJSONDocument(dst, d, canonical, false)
}

// AppendExtJSON appends the Extended JSON representation of a to dst. See
// Document.AppendExtJSON.
func (a Array) AppendExtJSON(dst []byte, canonical bool) ([]byte, error) {
	return appendExtJSONDocument(dst, Document(a), canonical, true)
}

// AppendExtJSON appends the Extended JSON representation of v to dst. See
// Document.AppendExtJSON.
func (v Value) AppendExtJSON(dst []byte, canonical bool) ([]byte, error) {
	switch v.Type {
	case TypeString:
		s, ok := v.StringValueOK()
		if !ok {
			return dst, v.insufficient()
		}
		return append(dst, escapeString(s)...), nil
	case TypeEmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return dst, v.insufficient()
		}
		return appendExtJSONDocument(dst, doc, canonical, false)
	case TypeArray:
		arr, ok := v.ArrayOK()
		if !ok {
			return dst, v.insufficient()
		}
		return appendExtJSONDocument(dst, Document(arr), canonical, true)
	case TypeDouble:
		f64, ok := v.DoubleOK()
		if !ok {
			return dst, v.insufficient()
		}
		if !canonical && !math.IsInf(f64, 0) && !math.IsNaN(f64) {
			return append(dst, formatDouble(f64)...), nil
		}
		dst = append(dst, `{"$numberDouble":"`...)
		dst = append(dst, formatDouble(f64)...)
		return append(dst, `"}`...), nil
	case TypeBinary:
		subtype, data, ok := v.BinaryOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$binary":{"base64":"`...)
		n := base64.StdEncoding.EncodedLen(len(data))
		dst = append(dst, make([]byte, n)...)
		base64.StdEncoding.Encode(dst[len(dst)-n:], data)
		dst = append(dst, `","subType":"`...)
		dst = append(dst, hexChars[subtype>>4], hexChars[subtype&0xF])
		return append(dst, `"}}`...), nil
	case TypeInt32:
		i32, ok := v.Int32OK()
		if !ok {
			return dst, v.insufficient()
		}
		if !canonical {
			return strconv.AppendInt(dst, int64(i32), 10), nil
		}
		dst = append(dst, `{"$numberInt":"`...)
		dst = strconv.AppendInt(dst, int64(i32), 10)
		return append(dst, `"}`...), nil
	case TypeInt64:
		i64, ok := v.Int64OK()
		if !ok {
			return dst, v.insufficient()
		}
		if !canonical {
			return strconv.AppendInt(dst, i64, 10), nil
		}
		dst = append(dst, `{"$numberLong":"`...)
		dst = strconv.AppendInt(dst, i64, 10)
		return append(dst, `"}`...), nil
	case TypeDateTime:
		dt, ok := v.DateTimeOK()
		if !ok {
			return dst, v.insufficient()
		}
		if !canonical {
			t := time.UnixMilli(dt).UTC()
			if t.Year() >= 1970 && t.Year() <= 9999 {
				dst = append(dst, `{"$date":"`...)
				dst = t.AppendFormat(dst, relaxedDateFormat)
				return append(dst, `"}`...), nil
			}
		}
		dst = append(dst, `{"$date":{"$numberLong":"`...)
		dst = strconv.AppendInt(dst, dt, 10)
		return append(dst, `"}}`...), nil
	case TypeCodeWithScope:
		code, scope, ok := v.CodeWithScopeOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$code":`...)
		dst = append(dst, escapeString(code)...)
		dst = append(dst, `,"$scope":`...)
		dst, err := appendExtJSONDocument(dst, scope, canonical, false)
		if err != nil {
			return dst, err
		}
		return append(dst, '}'), nil
	case TypeDecimal128:
		h, l, ok := v.Decimal128OK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$numberDecimal":"`...)
		dst = append(dst, primitive.FormatDecimal128(h, l)...)
		return append(dst, `"}`...), nil
	case TypeObjectID:
		oid, ok := v.ObjectIDOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$oid":"`...)
		dst = append(dst, oid.Hex()...)
		return append(dst, `"}`...), nil
	case TypeBoolean:
		b, ok := v.BooleanOK()
		if !ok {
			return dst, v.insufficient()
		}
		return strconv.AppendBool(dst, b), nil
	case TypeRegex:
		pattern, options, ok := v.RegexOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$regularExpression":{"pattern":`...)
		dst = append(dst, escapeString(pattern)...)
		dst = append(dst, `,"options":"`...)
		dst = append(dst, sortStringAlphebeticAscending(options)...)
		return append(dst, `"}}`...), nil
	case TypeDBPointer:
		ns, oid, ok := v.DBPointerOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$dbPointer":{"$ref":`...)
		dst = append(dst, escapeString(ns)...)
		dst = append(dst, `,"$id":{"$oid":"`...)
		dst = append(dst, oid.Hex()...)
		return append(dst, `"}}}`...), nil
	case TypeJavaScript:
		js, ok := v.JavaScriptOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$code":`...)
		dst = append(dst, escapeString(js)...)
		return append(dst, '}'), nil
	case TypeSymbol:
		symbol, ok := v.SymbolOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$symbol":`...)
		dst = append(dst, escapeString(symbol)...)
		return append(dst, '}'), nil
	case TypeTimestamp:
		ts, inc, ok := v.TimestampOK()
		if !ok {
			return dst, v.insufficient()
		}
		dst = append(dst, `{"$timestamp":{"t":`...)
		dst = strconv.AppendUint(dst, uint64(ts), 10)
		dst = append(dst, `,"i":`...)
		dst = strconv.AppendUint(dst, uint64(inc), 10)
		return append(dst, `}}`...), nil
	case TypeUndefined:
		return append(dst, `{"$undefined":true}`...), nil
	case TypeNull:
		return append(dst, "null"...), nil
	case TypeMinKey:
		return append(dst, `{"$minKey":1}`...), nil
	case TypeMaxKey:
		return append(dst, `{"$maxKey":1}`...), nil
	}
	return dst, ElementTypeError{Method: "bsoncore.Value.AppendExtJSON", Type: v.Type}
}

// extJSONString renders with AppendExtJSON in canonical mode, returning "" on any error.
func extJSONString(b []byte, err error) string {
	if err != nil {
		return ""
	}
	return string(b)
}

func (v Value) insufficient() error { return NewInsufficientBytesError(v.Data, v.Data) }

func appendExtJSONDocument(dst []byte, d Document, canonical, array bool) ([]byte, error) {
	start, end := byte('{'), byte('}')
	if array {
		start, end = '[', ']'
	}
	dst = append(dst, start)

	iter := Iterator{Data: d}
	first := true
	for {
		elem, err := iter.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return dst, err
		}
		if !first {
			dst = append(dst, ',')
		}
		first = false
		if !array {
			dst = append(dst, escapeString(elem.Key())...)
			dst = append(dst, ':')
		}
		val, err := elem.ValueErr()
		if err != nil {
			return dst, err
		}
		dst, err = val.AppendExtJSON(dst, canonical)
		if err != nil {
			return dst, err
		}
	}
	return append(dst, end), nil
}
