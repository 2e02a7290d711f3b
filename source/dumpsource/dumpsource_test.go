// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package dumpsource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

func docs(from, to int32) []bsoncore.Document {
	var out []bsoncore.Document
	for i := from; i < to; i++ {
		out = append(out, bsoncore.NewDocumentBuilder().AppendInt32("n", i).Build())
	}
	return out
}

func drain(t *testing.T, src cursor.BatchSource) ([]int32, error) {
	t.Helper()
	ctx := context.Background()
	cur := cursor.New(src)
	defer cur.Close(ctx)

	var got []int32
	for cur.Next(ctx) {
		var v struct {
			N int32 `bson:"n"`
		}
		require.NoError(t, cur.Decode(&v))
		got = append(got, v.N)
	}
	return got, cur.Err()
}

func TestSourceBatches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, docs(0, 5)...))

	src := New(bytes.NewReader(buf.Bytes()), 2)
	ctx := context.Background()
	var lengths []int
	for {
		batch, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		lengths = append(lengths, bsoncore.ReadDocumentSequence(batch).Count())
	}
	assert.Equal(t, []int{2, 2, 1}, lengths)

	require.NoError(t, src.Close(ctx))
	_, err := src.Next(ctx)
	assert.Equal(t, cursor.ErrSourceClosed, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDump(filepath.Join(dir, "db", "a.bson"), docs(0, 3)...))
	require.NoError(t, WriteDump(filepath.Join(dir, "db", "b.bson.snappy"), docs(3, 7)...))
	require.NoError(t, WriteDump(filepath.Join(dir, "db", "c.bson"))) // empty
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db", "a.metadata.json"), []byte("{}"), 0o644))

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "db", "a.bson"),
		filepath.Join(dir, "db", "b.bson.snappy"),
		filepath.Join(dir, "db", "c.bson"),
	}, files)

	src, err := Open(dir, 4)
	require.NoError(t, err)
	got, err := drain(t, src)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6}, got)
}

func TestSourceErrors(t *testing.T) {
	t.Run("truncated stream", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, docs(0, 3)...))
		data := buf.Bytes()[:buf.Len()-3]

		got, err := drain(t, New(bytes.NewReader(data), 1))
		assert.Equal(t, []int32{0, 1}, got)
		require.Error(t, err)
		assert.True(t, bsoncore.IsStructural(err), "unexpected error %v", err)
	})
	t.Run("invalid size", func(t *testing.T) {
		_, err := drain(t, New(bytes.NewReader([]byte{0x02, 0x00, 0x00, 0x00, 0x00}), 1))
		assert.True(t, errors.Is(err, ErrInvalidSize), "unexpected error %v", err)
	})
	t.Run("write rejects malformed documents", func(t *testing.T) {
		err := Write(io.Discard, bsoncore.Document{0x05, 0x00})
		assert.Error(t, err)
	})
	t.Run("missing directory", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope"), 1)
		assert.Error(t, err)
	})
}
