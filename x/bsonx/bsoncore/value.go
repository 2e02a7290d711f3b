// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
)

// Value represents a BSON value with a type and raw bytes. Data is a subslice of the buffer the
// value was read from.
type Value struct {
	Type Type
	Data []byte
}

// Validate ensures the value is a valid BSON value. Documents, arrays and code with scope values
// are validated recursively.
func (v Value) Validate() error {
	data, _, valid := readValue(v.Data, v.Type)
	if !valid {
		return NewInsufficientBytesError(v.Data, v.Data)
	}
	ok := true
	switch v.Type {
	case TypeEmbeddedDocument:
		return Document(data).Validate()
	case TypeArray:
		return Array(data).Validate()
	case TypeString, TypeJavaScript, TypeSymbol:
		_, _, ok = readstringbytes(data)
	case TypeBinary:
		_, _, _, ok = ReadBinary(data)
	case TypeDBPointer:
		_, _, _, ok = ReadDBPointer(data)
	case TypeCodeWithScope:
		var scope []byte
		_, scope, _, ok = ReadCodeWithScope(data)
		if ok {
			return Document(scope).Validate()
		}
	}
	if !ok {
		return NewInsufficientBytesError(v.Data, v.Data)
	}
	return nil
}

// IsNumber reports whether v holds a double, int32, int64 or decimal.
func (v Value) IsNumber() bool {
	switch v.Type {
	case TypeDouble, TypeInt32, TypeInt64, TypeDecimal128:
		return true
	default:
		return false
	}
}

// AsInt32 converts a double, int32 or int64 value to an int32, truncating as Go conversions do. It
// panics for any other type.
func (v Value) AsInt32() int32 { return mustNumber[int32](v, "AsInt32") }

// AsInt32OK is AsInt32 with a boolean in place of the panic.
func (v Value) AsInt32OK() (int32, bool) { return asNumber[int32](v) }

// AsInt64 converts a double, int32 or int64 value to an int64. It panics for any other type.
func (v Value) AsInt64() int64 { return mustNumber[int64](v, "AsInt64") }

// AsInt64OK is AsInt64 with a boolean in place of the panic.
func (v Value) AsInt64OK() (int64, bool) { return asNumber[int64](v) }

// AsFloat64 converts a double, int32 or int64 value to a float64. It panics for any other type.
func (v Value) AsFloat64() float64 { return mustNumber[float64](v, "AsFloat64") }

// AsFloat64OK is AsFloat64 with a boolean in place of the panic.
func (v Value) AsFloat64OK() (float64, bool) { return asNumber[float64](v) }

type number interface {
	~int32 | ~int64 | ~float64
}

// asNumber widens or narrows the numeric payload of v to T. Decimal128 is not converted.
func asNumber[T number](v Value) (T, bool) {
	switch v.Type {
	case TypeDouble:
		f64, _, ok := ReadDouble(v.Data)
		return T(f64), ok
	case TypeInt32:
		i32, _, ok := ReadInt32(v.Data)
		return T(i32), ok
	case TypeInt64:
		i64, _, ok := ReadInt64(v.Data)
		return T(i64), ok
	}
	return 0, false
}

func mustNumber[T number](v Value, method string) T {
	n, ok := asNumber[T](v)
	if ok {
		return n
	}
	if v.IsNumber() && v.Type != TypeDecimal128 {
		panic(NewInsufficientBytesError(v.Data, v.Data))
	}
	panic(ElementTypeError{"bsoncore.Value." + method, v.Type})
}

// Equal compares v to v2 and returns true if they are equal.
func (v Value) Equal(v2 Value) bool {
	if v.Type != v2.Type {
		return false
	}

	return bytes.Equal(v.Data, v2.Data)
}

// Copy returns a Value whose Data no longer aliases the buffer v was read from.
func (v Value) Copy() Value {
	return Value{Type: v.Type, Data: append([]byte(nil), v.Data...)}
}

// String renders v as canonical Extended JSON. An invalid value renders as the empty string.
func (v Value) String() string { return extJSONString(v.AppendExtJSON(nil, true)) }

// DebugString outputs a human readable version of v. Invalid values render as "<malformed>".
func (v Value) DebugString() string {
	switch v.Type {
	case TypeString:
		str, ok := v.StringValueOK()
		if !ok {
			return "<malformed>"
		}
		return escapeString(str)
	case TypeEmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return "<malformed>"
		}
		return doc.DebugString()
	case TypeArray:
		arr, ok := v.ArrayOK()
		if !ok {
			return "<malformed>"
		}
		return arr.DebugString()
	case TypeCodeWithScope:
		code, scope, ok := v.CodeWithScopeOK()
		if !ok {
			return ""
		}
		return fmt.Sprintf(`{"$code":%s,"$scope":%s}`, code, scope.DebugString())
	default:
		str := v.String()
		if str == "" {
			return "<malformed>"
		}
		return str
	}
}

// payload reads the fixed-shape payload of v with read, reporting false when v does not hold t or
// its bytes are short. The zero T is returned on failure.
func payload[T any](v Value, t Type, read func([]byte) (T, []byte, bool)) (T, bool) {
	var zero T
	if v.Type != t {
		return zero, false
	}
	out, _, ok := read(v.Data)
	if !ok {
		return zero, false
	}
	return out, true
}

// accessFailed panics for a failed accessor call: a type mismatch is reported as an
// ElementTypeError and anything else as short data.
func (v Value) accessFailed(t Type, method string) {
	if v.Type != t {
		panic(ElementTypeError{"bsoncore.Value." + method, v.Type})
	}
	panic(NewInsufficientBytesError(v.Data, v.Data))
}

// Double returns the float64 v holds. It panics if v is not a double.
func (v Value) Double() float64 {
	f64, ok := v.DoubleOK()
	if !ok {
		v.accessFailed(TypeDouble, "Double")
	}
	return f64
}

// DoubleOK is Double with a boolean in place of the panic.
func (v Value) DoubleOK() (float64, bool) { return payload(v, TypeDouble, ReadDouble) }

// StringValue returns the string v holds. It panics if v is not a string. The name avoids a
// clash with String, which renders Extended JSON.
func (v Value) StringValue() string {
	str, ok := v.StringValueOK()
	if !ok {
		v.accessFailed(TypeString, "StringValue")
	}
	return str
}

// StringValueOK is StringValue with a boolean in place of the panic.
func (v Value) StringValueOK() (string, bool) { return payload(v, TypeString, ReadString) }

// StringBytes returns the payload of a string value without its terminating null byte. The
// returned slice aliases v.Data and is not copied. It panics if v is not a string.
func (v Value) StringBytes() []byte {
	b, ok := v.StringBytesOK()
	if !ok {
		v.accessFailed(TypeString, "StringBytes")
	}
	return b
}

// StringBytesOK is StringBytes with a boolean in place of the panic.
func (v Value) StringBytesOK() ([]byte, bool) { return payload(v, TypeString, ReadStringBytes) }

// Document returns the embedded document v holds, aliasing v.Data. It panics if v is not a
// document.
func (v Value) Document() Document {
	doc, ok := v.DocumentOK()
	if !ok {
		v.accessFailed(TypeEmbeddedDocument, "Document")
	}
	return doc
}

// DocumentOK is Document with a boolean in place of the panic.
func (v Value) DocumentOK() (Document, bool) {
	return payload(v, TypeEmbeddedDocument, ReadDocument)
}

// Array returns the array v holds, aliasing v.Data. It panics if v is not an array.
func (v Value) Array() Array {
	arr, ok := v.ArrayOK()
	if !ok {
		v.accessFailed(TypeArray, "Array")
	}
	return arr
}

// ArrayOK is Array with a boolean in place of the panic.
func (v Value) ArrayOK() (Array, bool) { return payload(v, TypeArray, ReadArray) }

// Binary returns the subtype and bytes of a binary value. data aliases v.Data. It panics if v is
// not binary.
func (v Value) Binary() (subtype byte, data []byte) {
	subtype, data, ok := v.BinaryOK()
	if !ok {
		v.accessFailed(TypeBinary, "Binary")
	}
	return subtype, data
}

// BinaryOK is Binary with a boolean in place of the panic.
func (v Value) BinaryOK() (subtype byte, data []byte, ok bool) {
	if v.Type == TypeBinary {
		if subtype, data, _, ok = ReadBinary(v.Data); ok {
			return subtype, data, true
		}
	}
	return 0x00, nil, false
}

// ObjectID returns the objectid v holds. It panics if v is not an objectid.
func (v Value) ObjectID() primitive.ObjectID {
	oid, ok := v.ObjectIDOK()
	if !ok {
		v.accessFailed(TypeObjectID, "ObjectID")
	}
	return oid
}

// ObjectIDOK is ObjectID with a boolean in place of the panic.
func (v Value) ObjectIDOK() (primitive.ObjectID, bool) {
	return payload(v, TypeObjectID, ReadObjectID)
}

// Boolean returns the bool v holds. It panics if v is not a boolean.
func (v Value) Boolean() bool {
	b, ok := v.BooleanOK()
	if !ok {
		v.accessFailed(TypeBoolean, "Boolean")
	}
	return b
}

// BooleanOK is Boolean with a boolean in place of the panic.
func (v Value) BooleanOK() (bool, bool) { return payload(v, TypeBoolean, ReadBoolean) }

// DateTime returns a datetime as milliseconds since the Unix epoch. It panics if v is not a
// datetime.
func (v Value) DateTime() int64 {
	dt, ok := v.DateTimeOK()
	if !ok {
		v.accessFailed(TypeDateTime, "DateTime")
	}
	return dt
}

// DateTimeOK is DateTime with a boolean in place of the panic.
func (v Value) DateTimeOK() (int64, bool) { return payload(v, TypeDateTime, ReadDateTime) }

// Time returns a datetime as a time.Time. It panics if v is not a datetime.
func (v Value) Time() time.Time {
	t, ok := v.TimeOK()
	if !ok {
		v.accessFailed(TypeDateTime, "Time")
	}
	return t
}

// TimeOK is Time with a boolean in place of the panic.
func (v Value) TimeOK() (time.Time, bool) { return payload(v, TypeDateTime, ReadTime) }

// Regex returns the pattern and options of a regular expression. It panics if v is not a regex.
func (v Value) Regex() (pattern, options string) {
	pattern, options, ok := v.RegexOK()
	if !ok {
		v.accessFailed(TypeRegex, "Regex")
	}
	return pattern, options
}

// RegexOK is Regex with a boolean in place of the panic.
func (v Value) RegexOK() (pattern, options string, ok bool) {
	if v.Type == TypeRegex {
		if pattern, options, _, ok = ReadRegex(v.Data); ok {
			return pattern, options, true
		}
	}
	return "", "", false
}

// DBPointer returns the namespace and id of a deprecated DBPointer. It panics if v is not a
// DBPointer.
func (v Value) DBPointer() (string, primitive.ObjectID) {
	ns, oid, ok := v.DBPointerOK()
	if !ok {
		v.accessFailed(TypeDBPointer, "DBPointer")
	}
	return ns, oid
}

// DBPointerOK is DBPointer with a boolean in place of the panic.
func (v Value) DBPointerOK() (string, primitive.ObjectID, bool) {
	if v.Type == TypeDBPointer {
		if ns, oid, _, ok := ReadDBPointer(v.Data); ok {
			return ns, oid, true
		}
	}
	return "", primitive.ObjectID{}, false
}

// JavaScript returns the code of a JavaScript value. It panics if v is not JavaScript.
func (v Value) JavaScript() string {
	js, ok := v.JavaScriptOK()
	if !ok {
		v.accessFailed(TypeJavaScript, "JavaScript")
	}
	return js
}

// JavaScriptOK is JavaScript with a boolean in place of the panic.
func (v Value) JavaScriptOK() (string, bool) { return payload(v, TypeJavaScript, ReadJavaScript) }

// Symbol returns the string of a deprecated symbol. It panics if v is not a symbol.
func (v Value) Symbol() string {
	symbol, ok := v.SymbolOK()
	if !ok {
		v.accessFailed(TypeSymbol, "Symbol")
	}
	return symbol
}

// SymbolOK is Symbol with a boolean in place of the panic.
func (v Value) SymbolOK() (string, bool) { return payload(v, TypeSymbol, ReadSymbol) }

// CodeWithScope returns the code and scope document of a code with scope value. The scope aliases
// v.Data. It panics if v is not code with scope.
func (v Value) CodeWithScope() (string, Document) {
	code, scope, ok := v.CodeWithScopeOK()
	if !ok {
		v.accessFailed(TypeCodeWithScope, "CodeWithScope")
	}
	return code, scope
}

// CodeWithScopeOK is CodeWithScope with a boolean in place of the panic.
func (v Value) CodeWithScopeOK() (string, Document, bool) {
	if v.Type == TypeCodeWithScope {
		if code, scope, _, ok := ReadCodeWithScope(v.Data); ok {
			return code, scope, true
		}
	}
	return "", nil, false
}

// Int32 returns the int32 v holds. It panics if v is not an int32.
func (v Value) Int32() int32 {
	i32, ok := v.Int32OK()
	if !ok {
		v.accessFailed(TypeInt32, "Int32")
	}
	return i32
}

// Int32OK is Int32 with a boolean in place of the panic.
func (v Value) Int32OK() (int32, bool) { return payload(v, TypeInt32, ReadInt32) }

// Timestamp returns the seconds and increment of a timestamp. It panics if v is not a timestamp.
func (v Value) Timestamp() (t, i uint32) {
	t, i, ok := v.TimestampOK()
	if !ok {
		v.accessFailed(TypeTimestamp, "Timestamp")
	}
	return t, i
}

// TimestampOK is Timestamp with a boolean in place of the panic.
func (v Value) TimestampOK() (t, i uint32, ok bool) {
	if v.Type == TypeTimestamp {
		if t, i, _, ok = ReadTimestamp(v.Data); ok {
			return t, i, true
		}
	}
	return 0, 0, false
}

// Int64 returns the int64 v holds. It panics if v is not an int64.
func (v Value) Int64() int64 {
	i64, ok := v.Int64OK()
	if !ok {
		v.accessFailed(TypeInt64, "Int64")
	}
	return i64
}

// Int64OK is Int64 with a boolean in place of the panic.
func (v Value) Int64OK() (int64, bool) { return payload(v, TypeInt64, ReadInt64) }

// Decimal128 returns the high and low words of a decimal. It panics if v is not a decimal.
func (v Value) Decimal128() (uint64, uint64) {
	h, l, ok := v.Decimal128OK()
	if !ok {
		v.accessFailed(TypeDecimal128, "Decimal128")
	}
	return h, l
}

// Decimal128OK is Decimal128 with a boolean in place of the panic.
func (v Value) Decimal128OK() (uint64, uint64, bool) {
	if v.Type == TypeDecimal128 {
		if h, l, _, ok := ReadDecimal128(v.Data); ok {
			return h, l, true
		}
	}
	return 0, 0, false
}

var hexChars = "0123456789abcdef"

// escapeString quotes s as a JSON string. Control characters, quotes and backslashes are escaped
// and invalid UTF-8 is replaced with U+FFFD.
func escapeString(s string) string {
	var buf strings.Builder
	buf.Grow(len(s) + 2)
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		if b := s[i]; b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			if start < i {
				buf.WriteString(s[start:i])
			}
			switch b {
			case '\\', '"':
				buf.WriteByte('\\')
				buf.WriteByte(b)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexChars[b>>4])
				buf.WriteByte(hexChars[b&0xF])
			}
			i++
			start = i
			continue
		}
		c, size := utf8.DecodeRuneInString(s[i:])
		if c == utf8.RuneError && size == 1 {
			if start < i {
				buf.WriteString(s[start:i])
			}
			buf.WriteString(`\ufffd`)
			i += size
			start = i
			continue
		}
		i += size
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
	buf.WriteByte('"')
	return buf.String()
}

func formatDouble(f float64) string {
	var s string
	switch {
	case math.IsInf(f, 1):
		s = "Infinity"
	case math.IsInf(f, -1):
		s = "-Infinity"
	case math.IsNaN(f):
		s = "NaN"
	default:
		// Print exactly one decimal place for integers; otherwise, print as many are necessary to
		// perfectly represent it.
		s = strconv.FormatFloat(f, 'G', -1, 64)
		if !strings.ContainsAny(s, ".E") {
			s += ".0"
		}
	}

	return s
}

func sortStringAlphebeticAscending(s string) string {
	rs := []rune(s)
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return string(rs)
}
