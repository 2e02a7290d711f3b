// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickfreed/raw-bson-benchmarks/bson/primitive"
)

var testOID = primitive.ObjectID{0x5f, 0x1d, 0x2c, 0x3b, 0x4a, 0x59, 0x68, 0x77, 0x86, 0x95, 0xa4, 0xb3}

// testDocument is the shape the benchmarks fetch: scalars, a subdocument and an array.
func testDocument() Document {
	c := BuildDocument(nil,
		AppendInt32Element(nil, "world", 1),
		AppendInt32Element(nil, "ok", 2),
		AppendDoubleElement(nil, "other_key", 5.5),
	)
	arr := BuildArray(nil,
		Value{Type: TypeInt32, Data: AppendInt32(nil, 1)},
		Value{Type: TypeInt32, Data: AppendInt32(nil, 2)},
		Value{Type: TypeInt32, Data: AppendInt32(nil, 3)},
	)
	return BuildDocument(nil,
		AppendBooleanElement(nil, "a", true),
		AppendStringElement(nil, "b", "hello"),
		AppendDocumentElement(nil, "c", c),
		AppendObjectIDElement(nil, "oid", testOID),
		AppendArrayElement(nil, "array", arr),
	)
}

func TestNewDocument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		src := testDocument()
		doc, err := NewDocument(src)
		require.NoError(t, err)
		assert.Len(t, doc, len(src))
		assert.Same(t, &src[0], &doc[0], "expected the document to alias its source")
	})
	t.Run("trailing bytes are excluded", func(t *testing.T) {
		src := append(testDocument(), 0xDE, 0xAD)
		doc, err := NewDocument(src)
		require.NoError(t, err)
		assert.Equal(t, len(src)-2, len(doc))
	})
	t.Run("empty", func(t *testing.T) {
		doc, err := NewDocument([]byte{0x05, 0x00, 0x00, 0x00, 0x00})
		require.NoError(t, err)
		elems, err := doc.Elements()
		require.NoError(t, err)
		assert.Empty(t, elems)
	})

	testCases := []struct {
		name string
		src  []byte
		want error
	}{
		{"too short", []byte{0x05, 0x00}, NewInsufficientBytesError(nil, nil)},
		{"length too small", []byte{0x04, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"length too large", []byte{0x06, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"negative length", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00}, ErrInvalidLength},
		{"missing null", []byte{0x05, 0x00, 0x00, 0x00, 0x01}, ErrMissingNull},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDocument(tc.src)
			require.Error(t, err)
			assert.True(t, IsStructural(err), "expected structural error, got %v", err)
			var ibe InsufficientBytesError
			if errors.As(tc.want, &ibe) {
				assert.True(t, ibe.Equal(err), "expected InsufficientBytesError, got %T", err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDocumentTruncation(t *testing.T) {
	doc := testDocument()
	for i := 0; i < len(doc); i++ {
		_, err := NewDocument(doc[:i])
		require.Error(t, err, "expected an error when truncated to %d bytes", i)
		assert.True(t, IsStructural(err), "truncated to %d bytes: expected structural error, got %v", i, err)

		err = Document(doc[:i]).Validate()
		require.Error(t, err, "expected Validate to fail when truncated to %d bytes", i)
		assert.True(t, IsStructural(err), "truncated to %d bytes: expected structural error, got %v", i, err)
	}
}

func TestDocumentLookup(t *testing.T) {
	doc := testDocument()

	testCases := []struct {
		name string
		key  []string
		want Value
		err  error
	}{
		{"top level", []string{"a"}, Value{Type: TypeBoolean, Data: []byte{0x01}}, nil},
		{"string", []string{"b"}, Value{Type: TypeString, Data: AppendString(nil, "hello")}, nil},
		{"nested document", []string{"c", "world"}, Value{Type: TypeInt32, Data: AppendInt32(nil, 1)}, nil},
		{"nested array", []string{"array", "2"}, Value{Type: TypeInt32, Data: AppendInt32(nil, 3)}, nil},
		{"missing", []string{"z"}, Value{}, ErrElementNotFound},
		{"missing nested", []string{"c", "z"}, Value{}, ErrElementNotFound},
		{"traverse scalar", []string{"a", "x"}, Value{}, ErrInvalidDepthTraversal},
		{"no key", nil, Value{}, ErrEmptyKey},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := doc.LookupErr(tc.key...)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "expected %v, got %v", tc.want, got)
			assert.True(t, tc.want.Equal(doc.Lookup(tc.key...)))
		})
	}
}

func TestDocumentLookupSkipsSiblingPayloads(t *testing.T) {
	// The sibling is framed correctly but its contents are not BSON.
	junk := []byte{0x0A, 0x00, 0x00, 0x00, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0x00}
	doc := BuildDocument(nil,
		AppendDocumentElement(nil, "junk", junk),
		AppendInt32Element(nil, "target", 42),
	)

	val, err := Document(doc).LookupErr("target")
	require.NoError(t, err)
	assert.Equal(t, int32(42), val.Int32())

	err = Document(doc).Validate()
	assert.True(t, IsStructural(err), "expected Validate to reject the sibling, got %v", err)
}

func TestDocumentElements(t *testing.T) {
	doc := testDocument()
	elems, err := doc.Elements()
	require.NoError(t, err)

	keys := make([]string, 0, len(elems))
	for _, elem := range elems {
		keys = append(keys, elem.Key())
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "oid", "array"}, keys); diff != "" {
		t.Errorf("keys differ (-want +got):\n%s", diff)
	}

	vals, err := doc.Values()
	require.NoError(t, err)
	require.Len(t, vals, 5)
	assert.Equal(t, TypeObjectID, vals[3].Type)
	assert.Equal(t, testOID, vals[3].ObjectID())

	t.Run("malformed element", func(t *testing.T) {
		bad := BuildDocument(nil, AppendInt32Element(nil, "ok", 1), []byte{0xEE, 'x', 0x00})
		elems, err := Document(bad).Elements()
		assert.Len(t, elems, 1)
		assert.True(t, IsStructural(err), "expected structural error, got %v", err)
	})
}

func TestDocumentIterator(t *testing.T) {
	doc := testDocument()
	iter := doc.Iterator()
	assert.Equal(t, 5, iter.Count())
	assert.False(t, iter.Empty())

	var keys []string
	for {
		elem, err := iter.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		keys = append(keys, elem.Key())
	}
	assert.Equal(t, []string{"a", "b", "c", "oid", "array"}, keys)

	_, err := iter.Next()
	assert.Equal(t, io.EOF, err)

	iter.Reset()
	elem, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", elem.Key())

	t.Run("element may not claim the terminator", func(t *testing.T) {
		iter := Document{0x07, 0x00, 0x00, 0x00, byte(TypeNull), 'n', 0x00}.Iterator()
		_, err := iter.Next()
		require.Error(t, err)
		assert.True(t, IsStructural(err))

		_, again := iter.Next()
		assert.Equal(t, err, again, "expected the error to be sticky")
	})
	t.Run("empty", func(t *testing.T) {
		iter := Document{0x05, 0x00, 0x00, 0x00, 0x00}.Iterator()
		assert.True(t, iter.Empty())
		assert.Equal(t, 0, iter.Count())
		_, err := iter.Next()
		assert.Equal(t, io.EOF, err)
	})
}

func TestDocumentIndex(t *testing.T) {
	doc := testDocument()
	assert.Equal(t, "c", doc.Index(2).Key())

	_, err := doc.IndexErr(5)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Panics(t, func() { doc.Index(5) })
}

func TestDocumentString(t *testing.T) {
	want := `{"a":true,"b":"hello","c":{"world":{"$numberInt":"1"},"ok":{"$numberInt":"2"},` +
		`"other_key":{"$numberDouble":"5.5"}},"oid":{"$oid":"5f1d2c3b4a5968778695a4b3"},` +
		`"array":[{"$numberInt":"1"},{"$numberInt":"2"},{"$numberInt":"3"}]}`
	assert.Equal(t, want, testDocument().String(), spew.Sdump(testDocument()))
	assert.Equal(t, "", Document{0x01}.String())
	assert.Contains(t, testDocument().DebugString(), `"oid"`)
}

func TestDocumentWalk(t *testing.T) {
	doc := testDocument()

	var seen []string
	err := doc.Walk(func(elem Element) error {
		seen = append(seen, elem.Key())
		if elem.Key() == "c" {
			return ErrStopWalk
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	boom := errors.New("boom")
	err = doc.Walk(func(Element) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestDocumentCopy(t *testing.T) {
	src := testDocument()
	cp := src.Copy()
	require.True(t, bytes.Equal(src, cp))

	src[len(src)-2] = 0xFF
	assert.False(t, bytes.Equal(src, cp), "expected the copy to be independent of its source")
	assert.Nil(t, Document(nil).Copy())
}

func TestNewDocumentFromReader(t *testing.T) {
	doc := testDocument()
	got, err := NewDocumentFromReader(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = NewDocumentFromReader(nil)
	assert.ErrorIs(t, err, ErrNilReader)

	_, err = NewDocumentFromReader(bytes.NewReader(doc[:len(doc)-1]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
