// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

var fixtureOID = primitive.ObjectID{0x5f, 0x1d, 0x2c, 0x3b, 0x4a, 0x59, 0x68, 0x77, 0x86, 0x95, 0xa4, 0xb3}

// fixtureDocument returns
// {a: true, b: "hello", c: {world: 1, ok: 2, other_key: 5.5}, oid: ObjectId, array: [1, 2, 3]}.
func fixtureDocument() []byte {
	c := bsoncore.BuildDocument(nil,
		bsoncore.AppendInt32Element(nil, "world", 1),
		bsoncore.AppendInt32Element(nil, "ok", 2),
		bsoncore.AppendDoubleElement(nil, "other_key", 5.5),
	)
	arr := bsoncore.NewArrayBuilder().AppendInt32(1).AppendInt32(2).AppendInt32(3).Build()
	return bsoncore.BuildDocument(nil,
		bsoncore.AppendBooleanElement(nil, "a", true),
		bsoncore.AppendStringElement(nil, "b", "hello"),
		bsoncore.AppendDocumentElement(nil, "c", c),
		bsoncore.AppendObjectIDElement(nil, "oid", fixtureOID),
		bsoncore.AppendArrayElement(nil, "array", arr),
	)
}

type fixtureC struct {
	World    int32   `bson:"world"`
	OK       int32   `bson:"ok"`
	OtherKey float64 `bson:"other_key"`
}

type fixture struct {
	A     bool               `bson:"a"`
	B     string             `bson:"b"`
	C     fixtureC           `bson:"c"`
	OID   primitive.ObjectID `bson:"oid"`
	Array []int32            `bson:"array"`
}

type borrowedFixture struct {
	A     bool              `bson:"a"`
	B     string            `bson:"b,borrow"`
	C     bsoncore.Document `bson:"c"`
	OID   primitive.ObjectID
	Array bsoncore.Array `bson:"array"`
}

// aliases reports whether p points into buf.
func aliases(buf []byte, p unsafe.Pointer) bool {
	start := uintptr(unsafe.Pointer(&buf[0]))
	addr := uintptr(p)
	return addr >= start && addr < start+uintptr(len(buf))
}

func wantFixture() fixture {
	return fixture{
		A:     true,
		B:     "hello",
		C:     fixtureC{World: 1, OK: 2, OtherKey: 5.5},
		OID:   fixtureOID,
		Array: []int32{1, 2, 3},
	}
}

func TestUnmarshal(t *testing.T) {
	t.Run("struct", func(t *testing.T) {
		var got fixture
		require.NoError(t, Unmarshal(fixtureDocument(), &got))
		if diff := cmp.Diff(wantFixture(), got); diff != "" {
			t.Errorf("decoded struct differs (-want +got):\n%s", diff)
		}
	})
	t.Run("D", func(t *testing.T) {
		var got D
		require.NoError(t, Unmarshal(fixtureDocument(), &got))
		want := D{
			{Key: "a", Value: true},
			{Key: "b", Value: "hello"},
			{Key: "c", Value: D{{Key: "world", Value: int32(1)}, {Key: "ok", Value: int32(2)}, {Key: "other_key", Value: 5.5}}},
			{Key: "oid", Value: fixtureOID},
			{Key: "array", Value: A{int32(1), int32(2), int32(3)}},
		}
		assert.Equal(t, want, got)
	})
	t.Run("M", func(t *testing.T) {
		var got M
		require.NoError(t, Unmarshal(fixtureDocument(), &got))
		want := M{
			"a":     true,
			"b":     "hello",
			"c":     M{"world": int32(1), "ok": int32(2), "other_key": 5.5},
			"oid":   fixtureOID,
			"array": A{int32(1), int32(2), int32(3)},
		}
		assert.Equal(t, want, got)
	})
	t.Run("non-nil map argument", func(t *testing.T) {
		got := map[string]interface{}{"stale": 1}
		require.NoError(t, Unmarshal(fixtureDocument(), got))
		assert.Equal(t, "hello", got["b"])
		assert.Equal(t, 1, got["stale"])
	})
	t.Run("interface field", func(t *testing.T) {
		var got struct {
			C interface{} `bson:"c"`
		}
		require.NoError(t, Unmarshal(fixtureDocument(), &got))
		assert.Equal(t, D{{Key: "world", Value: int32(1)}, {Key: "ok", Value: int32(2)}, {Key: "other_key", Value: 5.5}}, got.C)
	})
	t.Run("owned values survive the buffer", func(t *testing.T) {
		buf := fixtureDocument()
		var got fixture
		require.NoError(t, Unmarshal(buf, &got))
		for i := range buf {
			buf[i] = 0
		}
		assert.Equal(t, wantFixture(), got)
	})
	t.Run("borrow flag ignored", func(t *testing.T) {
		buf := fixtureDocument()
		var got borrowedFixture
		require.NoError(t, Unmarshal(buf, &got))
		assert.False(t, aliases(buf, unsafe.Pointer(unsafe.StringData(got.B))), "owned string aliases the buffer")
		assert.False(t, aliases(buf, unsafe.Pointer(&got.C[0])), "owned document aliases the buffer")
	})
}

func TestUnmarshalView(t *testing.T) {
	buf := fixtureDocument()

	var view borrowedFixture
	require.NoError(t, UnmarshalView(buf, &view))
	var owned borrowedFixture
	require.NoError(t, Unmarshal(buf, &owned))

	assert.Equal(t, owned.B, view.B)
	assert.Equal(t, owned.C, view.C)
	assert.Equal(t, owned.Array, view.Array)
	assert.True(t, aliases(buf, unsafe.Pointer(unsafe.StringData(view.B))), "borrowed string is a copy")
	assert.True(t, aliases(buf, unsafe.Pointer(&view.C[0])), "document view is a copy")
	assert.True(t, aliases(buf, unsafe.Pointer(&view.Array[0])), "array view is a copy")
	assert.Equal(t, fixtureOID, view.OID)

	t.Run("unflagged string is copied", func(t *testing.T) {
		var got fixture
		require.NoError(t, UnmarshalView(buf, &got))
		assert.False(t, aliases(buf, unsafe.Pointer(unsafe.StringData(got.B))))
		assert.Equal(t, wantFixture(), got)
	})
	t.Run("views cannot grow into the buffer", func(t *testing.T) {
		assert.Equal(t, len(view.C), cap(view.C))
	})
	t.Run("borrowed binary", func(t *testing.T) {
		src := bsoncore.BuildDocument(nil, bsoncore.AppendBinaryElement(nil, "bin", 0x00, []byte{1, 2, 3}))
		var got struct {
			Bin  []byte           `bson:"bin,borrow"`
			Copy primitive.Binary `bson:"bin2,omitempty"`
		}
		require.NoError(t, UnmarshalView(src, &got))
		assert.Equal(t, []byte{1, 2, 3}, got.Bin)
		assert.True(t, aliases(src, unsafe.Pointer(&got.Bin[0])))
	})
}

func TestUnmarshalUnknownFieldsSkipped(t *testing.T) {
	var got struct {
		B string `bson:"b"`
	}
	require.NoError(t, Unmarshal(fixtureDocument(), &got))
	assert.Equal(t, "hello", got.B)
}

func TestUnmarshalErrors(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		var got struct {
			B       string `bson:"b"`
			Missing int32  `bson:"missing"`
		}
		err := Unmarshal(fixtureDocument(), &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "missing", de.Field)
		assert.Equal(t, ReasonMissing, de.Reason)
		assert.Equal(t, bsoncore.TypeInt32, de.Expected)
		assert.Contains(t, err.Error(), `"missing"`)
	})
	t.Run("optional fields may be absent", func(t *testing.T) {
		var got struct {
			B       string      `bson:"b"`
			Ptr     *int32      `bson:"ptr"`
			Omitted int32       `bson:"omitted,omitempty"`
			Any     interface{} `bson:"any,omitempty"`
		}
		require.NoError(t, Unmarshal(fixtureDocument(), &got))
		assert.Nil(t, got.Ptr)
		assert.Nil(t, got.Any)
	})
	t.Run("untagged interface field is required", func(t *testing.T) {
		var got struct {
			Any interface{}
		}
		err := Unmarshal(fixtureDocument(), &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "any", de.Field)
		assert.Equal(t, ReasonMissing, de.Reason)
	})
	t.Run("type mismatch", func(t *testing.T) {
		var got struct {
			B int32 `bson:"b"`
		}
		err := Unmarshal(fixtureDocument(), &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "b", de.Field)
		assert.Equal(t, ReasonTypeMismatch, de.Reason)
		assert.Equal(t, bsoncore.TypeInt32, de.Expected)
		assert.Equal(t, bsoncore.TypeString, de.Actual)
	})
	t.Run("nested path", func(t *testing.T) {
		var got struct {
			C struct {
				World string `bson:"world"`
			} `bson:"c"`
		}
		err := Unmarshal(fixtureDocument(), &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "c.world", de.Field)
		assert.Equal(t, bsoncore.TypeInt32, de.Actual)
	})
	t.Run("array index path", func(t *testing.T) {
		var got struct {
			Array []string `bson:"array"`
		}
		err := Unmarshal(fixtureDocument(), &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "array.0", de.Field)
	})
	t.Run("nested missing", func(t *testing.T) {
		var got struct {
			C struct {
				Nope bool `bson:"nope"`
			} `bson:"c"`
		}
		err := Unmarshal(fixtureDocument(), &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "c.nope", de.Field)
		assert.Equal(t, ReasonMissing, de.Reason)
	})
	t.Run("overflow", func(t *testing.T) {
		src := bsoncore.BuildDocument(nil, bsoncore.AppendInt32Element(nil, "n", 300))
		var got struct {
			N int8 `bson:"n"`
		}
		err := Unmarshal(src, &got)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, ReasonOverflow, de.Reason)
		assert.Equal(t, "n", de.Field)
	})
	t.Run("negative into unsigned", func(t *testing.T) {
		src := bsoncore.BuildDocument(nil, bsoncore.AppendInt64Element(nil, "n", -1))
		var got struct {
			N uint64 `bson:"n"`
		}
		var de *DecodeError
		require.ErrorAs(t, Unmarshal(src, &got), &de)
		assert.Equal(t, ReasonOverflow, de.Reason)
	})
	t.Run("truncated", func(t *testing.T) {
		src := fixtureDocument()
		for i := 0; i < len(src); i++ {
			var got fixture
			err := Unmarshal(src[:i], &got)
			require.Error(t, err, "expected an error for %d of %d bytes", i, len(src))
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, ReasonMalformed, de.Reason)
			assert.True(t, bsoncore.IsStructural(err), "expected a structural error, got %v", err)
		}
	})
	t.Run("nil targets", func(t *testing.T) {
		assert.Equal(t, ErrDecodeToNil, Unmarshal(fixtureDocument(), nil))
		assert.Equal(t, ErrDecodeToNil, Unmarshal(fixtureDocument(), (*fixture)(nil)))
		assert.Error(t, Unmarshal(fixtureDocument(), fixture{}))
	})
	t.Run("unsupported target", func(t *testing.T) {
		var got struct {
			B chan int `bson:"b"`
		}
		var de *DecodeError
		require.ErrorAs(t, Unmarshal(fixtureDocument(), &got), &de)
		assert.Equal(t, ReasonUnsupported, de.Reason)
	})
}

func TestUnmarshalConversions(t *testing.T) {
	now := time.Date(2020, 1, 1, 12, 30, 0, int(250*time.Millisecond), time.UTC)
	src := bsoncore.NewDocumentBuilder().
		AppendInt32("i32", 7).
		AppendInt64("i64", 1<<40).
		AppendDouble("f", 2.5).
		AppendTime("when", now).
		AppendNull("null").
		AppendString("s", "x").
		Build()

	var got struct {
		Widened   int64              `bson:"i32"`
		AsDouble  float64            `bson:"i64"`
		Float32   float32            `bson:"f"`
		When      time.Time          `bson:"when"`
		DateTime  primitive.DateTime `bson:"when2,omitempty"`
		Null      *string            `bson:"null"`
		NullSlice []int              `bson:"null2,omitempty"`
		Named     myString           `bson:"s"`
	}
	require.NoError(t, Unmarshal(src, &got))
	assert.Equal(t, int64(7), got.Widened)
	assert.Equal(t, float64(1<<40), got.AsDouble)
	assert.Equal(t, float32(2.5), got.Float32)
	assert.True(t, now.Equal(got.When), "expected %v, got %v", now, got.When)
	assert.Nil(t, got.Null)
	assert.Equal(t, myString("x"), got.Named)

	t.Run("double does not narrow", func(t *testing.T) {
		var narrow struct {
			F int64 `bson:"f"`
		}
		var de *DecodeError
		require.ErrorAs(t, Unmarshal(src, &narrow), &de)
		assert.Equal(t, ReasonTypeMismatch, de.Reason)
	})
	t.Run("null into slice", func(t *testing.T) {
		var s struct {
			Null []string `bson:"null"`
		}
		s.Null = []string{"stale"}
		require.NoError(t, Unmarshal(src, &s))
		assert.Nil(t, s.Null)
	})
}

type myString string

type inlineBase struct {
	A bool   `bson:"a"`
	B string `bson:"b"`
}

func TestUnmarshalInline(t *testing.T) {
	var got struct {
		inlineBase `bson:",inline"`
		Rest       M `bson:",inline"`
	}
	require.NoError(t, Unmarshal(fixtureDocument(), &got))
	assert.True(t, got.A)
	assert.Equal(t, "hello", got.B)
	assert.Len(t, got.Rest, 3)
	assert.Equal(t, fixtureOID, got.Rest["oid"])
}

func TestRawValueUnmarshal(t *testing.T) {
	doc := Raw(fixtureDocument())

	var c fixtureC
	require.NoError(t, doc.Lookup("c").Unmarshal(&c))
	assert.Equal(t, fixtureC{World: 1, OK: 2, OtherKey: 5.5}, c)

	var s string
	require.NoError(t, doc.Lookup("b").UnmarshalView(&s))
	assert.Equal(t, "hello", s)
	assert.True(t, aliases(doc, unsafe.Pointer(unsafe.StringData(s))))

	var n int32
	var de *DecodeError
	require.ErrorAs(t, doc.Lookup("b").Unmarshal(&n), &de)
	assert.True(t, errors.Is(RawValue{}.Unmarshal(nil), ErrDecodeToNil))
}
