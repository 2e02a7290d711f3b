// Copyright (C) MongoDB, Inc. 2022-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSequence(t *testing.T) {
	first := BuildDocument(nil, AppendInt32Element(nil, "n", 1))
	second := BuildDocument(nil, AppendInt32Element(nil, "n", 2))
	batch := append(append([]byte{}, first...), second...)

	t.Run("Next", func(t *testing.T) {
		ds := ReadDocumentSequence(batch)
		assert.Equal(t, 2, ds.Count())
		assert.False(t, ds.Empty())

		for i, want := range []int32{1, 2} {
			require.True(t, ds.Remaining())
			assert.Equal(t, 2-i, ds.RemainingCount())
			doc, err := ds.Next()
			require.NoError(t, err)
			assert.Equal(t, want, doc.Lookup("n").Int32())
		}
		assert.False(t, ds.Remaining())
		assert.Equal(t, 0, ds.RemainingCount())
		_, err := ds.Next()
		assert.Equal(t, io.EOF, err)

		ds.Reset()
		doc, err := ds.Next()
		require.NoError(t, err)
		assert.Same(t, &batch[0], &doc[0], "expected documents to alias the batch")
	})
	t.Run("Documents", func(t *testing.T) {
		docs, err := ReadDocumentSequence(batch).Documents()
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		docs, err = ReadDocumentSequence(nil).Documents()
		assert.NoError(t, err)
		assert.Nil(t, docs)
	})
	t.Run("corrupted", func(t *testing.T) {
		ds := ReadDocumentSequence(batch[:len(batch)-3])
		assert.Equal(t, 1, ds.Count())

		_, err := ds.Next()
		require.NoError(t, err)
		_, err = ds.Next()
		assert.ErrorIs(t, err, ErrCorruptedDocument)
		assert.True(t, IsStructural(err))

		docs, err := ReadDocumentSequence(batch[:len(batch)-3]).Documents()
		assert.ErrorIs(t, err, ErrCorruptedDocument)
		assert.Len(t, docs, 1)
	})
	t.Run("empty", func(t *testing.T) {
		assert.True(t, ReadDocumentSequence(nil).Empty())
		assert.Equal(t, 0, ReadDocumentSequence(nil).Count())
	})
}
