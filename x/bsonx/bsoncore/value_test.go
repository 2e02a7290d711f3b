// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	scope := BuildDocument(nil, AppendInt32Element(nil, "x", 1))

	testCases := []struct {
		name string
		val  Value
		want string
	}{
		{"double", Value{Type: TypeDouble, Data: AppendDouble(nil, 3.5)}, `{"$numberDouble":"3.5"}`},
		{"double integral", Value{Type: TypeDouble, Data: AppendDouble(nil, 10)}, `{"$numberDouble":"10.0"}`},
		{"double nan", Value{Type: TypeDouble, Data: AppendDouble(nil, math.NaN())}, `{"$numberDouble":"NaN"}`},
		{"double -inf", Value{Type: TypeDouble, Data: AppendDouble(nil, math.Inf(-1))}, `{"$numberDouble":"-Infinity"}`},
		{"string", Value{Type: TypeString, Data: AppendString(nil, "a\"b\n")}, `"a\"b\n"`},
		{"binary", Value{Type: TypeBinary, Data: AppendBinary(nil, 0x00, []byte{0x01, 0x02})}, `{"$binary":{"base64":"AQI=","subType":"00"}}`},
		{"undefined", Value{Type: TypeUndefined}, `{"$undefined":true}`},
		{"objectid", Value{Type: TypeObjectID, Data: AppendObjectID(nil, testOID)}, `{"$oid":"5f1d2c3b4a5968778695a4b3"}`},
		{"boolean", Value{Type: TypeBoolean, Data: AppendBoolean(nil, false)}, `false`},
		{"datetime", Value{Type: TypeDateTime, Data: AppendDateTime(nil, 1234)}, `{"$date":{"$numberLong":"1234"}}`},
		{"null", Value{Type: TypeNull}, `null`},
		{"regex", Value{Type: TypeRegex, Data: AppendRegex(nil, "^a", "xi")}, `{"$regularExpression":{"pattern":"^a","options":"ix"}}`},
		{"dbpointer", Value{Type: TypeDBPointer, Data: AppendDBPointer(nil, "db.coll", testOID)}, `{"$dbPointer":{"$ref":"db.coll","$id":{"$oid":"5f1d2c3b4a5968778695a4b3"}}}`},
		{"javascript", Value{Type: TypeJavaScript, Data: AppendJavaScript(nil, "f()")}, `{"$code":"f()"}`},
		{"symbol", Value{Type: TypeSymbol, Data: AppendSymbol(nil, "sym")}, `{"$symbol":"sym"}`},
		{"code with scope", Value{Type: TypeCodeWithScope, Data: AppendCodeWithScope(nil, "x", scope)}, `{"$code":"x","$scope":{"x":{"$numberInt":"1"}}}`},
		{"int32", Value{Type: TypeInt32, Data: AppendInt32(nil, -7)}, `{"$numberInt":"-7"}`},
		{"timestamp", Value{Type: TypeTimestamp, Data: AppendTimestamp(nil, 12, 3)}, `{"$timestamp":{"t":12,"i":3}}`},
		{"int64", Value{Type: TypeInt64, Data: AppendInt64(nil, 1<<40)}, `{"$numberLong":"1099511627776"}`},
		{"decimal128", Value{Type: TypeDecimal128, Data: AppendDecimal128(nil, 0x3040000000000000, 12345)}, `{"$numberDecimal":"12345"}`},
		{"minkey", Value{Type: TypeMinKey}, `{"$minKey":1}`},
		{"maxkey", Value{Type: TypeMaxKey}, `{"$maxKey":1}`},
		{"truncated", Value{Type: TypeInt64, Data: []byte{0x01}}, ``},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.val.String())
		})
	}
}

func TestValueAccessors(t *testing.T) {
	t.Run("wrong type", func(t *testing.T) {
		val := Value{Type: TypeInt32, Data: AppendInt32(nil, 1)}

		_, ok := val.StringValueOK()
		assert.False(t, ok)
		_, ok = val.DoubleOK()
		assert.False(t, ok)
		_, ok = val.DocumentOK()
		assert.False(t, ok)
		_, _, ok = val.BinaryOK()
		assert.False(t, ok)
		_, ok = val.Int64OK()
		assert.False(t, ok)

		assert.PanicsWithValue(t, ElementTypeError{"bsoncore.Value.StringValue", TypeInt32}, func() { val.StringValue() })
		assert.PanicsWithValue(t, ElementTypeError{"bsoncore.Value.Int64", TypeInt32}, func() { val.Int64() })
	})
	t.Run("insufficient bytes", func(t *testing.T) {
		val := Value{Type: TypeInt64, Data: []byte{0x01, 0x02}}
		_, ok := val.Int64OK()
		assert.False(t, ok)
		assert.Panics(t, func() { val.Int64() })
	})
	t.Run("string bytes alias the value", func(t *testing.T) {
		val := Value{Type: TypeString, Data: AppendString(nil, "hello")}
		b := val.StringBytes()
		assert.Equal(t, "hello", string(b))
		assert.Same(t, &val.Data[4], &b[0])

		_, ok := Value{Type: TypeInt32}.StringBytesOK()
		assert.False(t, ok)
	})
	t.Run("time", func(t *testing.T) {
		now := time.Unix(1600000000, 123000000)
		val := Value{Type: TypeDateTime, Data: AppendTime(nil, now)}
		assert.True(t, now.Equal(val.Time()), "expected %v, got %v", now, val.Time())
		assert.Equal(t, int64(1600000000123), val.DateTime())
	})
	t.Run("regex", func(t *testing.T) {
		pattern, options := Value{Type: TypeRegex, Data: AppendRegex(nil, "a+", "i")}.Regex()
		assert.Equal(t, "a+", pattern)
		assert.Equal(t, "i", options)
	})
	t.Run("document and array", func(t *testing.T) {
		doc := testDocument()
		c := doc.Lookup("c").Document()
		assert.Equal(t, 5.5, c.Lookup("other_key").Double())

		arr := doc.Lookup("array").Array()
		vals, err := arr.Values()
		require.NoError(t, err)
		assert.Len(t, vals, 3)
	})
}

func TestValueNumeric(t *testing.T) {
	testCases := []struct {
		name string
		val  Value
		i32  int32
		i64  int64
		f64  float64
		ok   bool
	}{
		{"int32", Value{Type: TypeInt32, Data: AppendInt32(nil, 12)}, 12, 12, 12, true},
		{"int64", Value{Type: TypeInt64, Data: AppendInt64(nil, 34)}, 34, 34, 34, true},
		{"double", Value{Type: TypeDouble, Data: AppendDouble(nil, 5.75)}, 5, 5, 5.75, true},
		{"decimal", Value{Type: TypeDecimal128, Data: AppendDecimal128(nil, 0, 1)}, 0, 0, 0, false},
		{"string", Value{Type: TypeString, Data: AppendString(nil, "1")}, 0, 0, 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			i32, ok := tc.val.AsInt32OK()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.i32, i32)
			i64, ok := tc.val.AsInt64OK()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.i64, i64)
			f64, ok := tc.val.AsFloat64OK()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.f64, f64)
			if !tc.ok {
				assert.Panics(t, func() { tc.val.AsInt64() })
			}
		})
	}
	assert.PanicsWithValue(t, ElementTypeError{"bsoncore.Value.AsFloat64", TypeString}, func() {
		Value{Type: TypeString, Data: AppendString(nil, "x")}.AsFloat64()
	})
}

func TestValueValidate(t *testing.T) {
	assert.NoError(t, Value{Type: TypeEmbeddedDocument, Data: testDocument()}.Validate())
	assert.NoError(t, Value{Type: TypeNull}.Validate())

	bad := []Value{
		{Type: TypeString, Data: []byte{0x02, 0x00, 0x00, 0x00, 'a', 'b'}},
		{Type: TypeInt32, Data: []byte{0x01}},
		{Type: TypeEmbeddedDocument, Data: []byte{0x06, 0x00, 0x00, 0x00, 0xEE, 0x00}},
		{Type: Type(0x42), Data: []byte{0x00}},
	}
	for _, val := range bad {
		err := val.Validate()
		assert.True(t, IsStructural(err), "%s: expected structural error, got %v", val.Type, err)
	}
}

func TestValueCopy(t *testing.T) {
	val := Value{Type: TypeInt32, Data: AppendInt32(nil, 9)}
	cp := val.Copy()
	val.Data[0] = 0x00
	assert.Equal(t, int32(9), cp.Int32())
	assert.True(t, cp.Equal(Value{Type: TypeInt32, Data: AppendInt32(nil, 9)}))
}
