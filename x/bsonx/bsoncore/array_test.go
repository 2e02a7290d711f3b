// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray(t *testing.T) {
	arr := Array(BuildArray(nil,
		Value{Type: TypeString, Data: AppendString(nil, "x")},
		Value{Type: TypeInt32, Data: AppendInt32(nil, 2)},
	))

	t.Run("Validate", func(t *testing.T) {
		require.NoError(t, arr.Validate())

		outOfOrder := Array(BuildDocument(nil,
			AppendInt32Element(nil, "1", 1),
			AppendInt32Element(nil, "0", 2),
		))
		assert.ErrorIs(t, outOfOrder.Validate(), ErrInvalidKey)

		assert.ErrorIs(t, Array{0x05, 0x00, 0x00, 0x00, 0x01}.Validate(), ErrMissingNull)
		assert.True(t, IsStructural(Array{0x05, 0x00}.Validate()))
		assert.ErrorIs(t, Array{0x10, 0x00, 0x00, 0x00, 0x00}.Validate(), ErrInvalidLength)
	})
	t.Run("Index", func(t *testing.T) {
		assert.Equal(t, int32(2), arr.Index(1).Int32())
		_, err := arr.IndexErr(2)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, `["x",{"$numberInt":"2"}]`, arr.String())
		assert.Equal(t, `[]`, Array{0x05, 0x00, 0x00, 0x00, 0x00}.String())
		assert.Equal(t, `Array(21)["x",{"$numberInt":"2"}]`, arr.DebugString())
	})
	t.Run("Iterator", func(t *testing.T) {
		iter := arr.Iterator()
		elem, err := iter.Next()
		require.NoError(t, err)
		assert.Equal(t, "0", elem.Key())
		_, err = iter.Next()
		require.NoError(t, err)
		_, err = iter.Next()
		assert.Equal(t, io.EOF, err)
	})
	t.Run("NewArrayFromReader", func(t *testing.T) {
		got, err := NewArrayFromReader(bytes.NewReader(arr))
		require.NoError(t, err)
		assert.Equal(t, arr, got)
	})
}
