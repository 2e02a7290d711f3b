// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentBuilder(t *testing.T) {
	got := NewDocumentBuilder().
		AppendBoolean("a", true).
		AppendString("b", "hello").
		StartDocument("c").
		AppendInt32("world", 1).
		AppendInt32("ok", 2).
		AppendDouble("other_key", 5.5).
		FinishDocument().
		AppendObjectID("oid", testOID).
		AppendArray("array", NewArrayBuilder().AppendInt32(1).AppendInt32(2).AppendInt32(3).Build()).
		Build()

	if diff := cmp.Diff([]byte(testDocument()), []byte(got)); diff != "" {
		t.Errorf("documents differ (-want +got):\n%s", diff)
	}
	require.NoError(t, got.Validate())
}

func TestDocumentBuilderClosesOpenDocuments(t *testing.T) {
	got := NewDocumentBuilder().StartDocument("outer").AppendNull("n").Build()
	require.NoError(t, got.Validate())
	assert.Equal(t, TypeNull, got.Lookup("outer", "n").Type)
}

func TestArrayBuilder(t *testing.T) {
	got := NewArrayBuilder().
		AppendString("x").
		StartArray().
		AppendInt64(7).
		AppendNull().
		FinishArray().
		AppendBoolean(false).
		Build()

	require.NoError(t, got.Validate())
	vals, err := got.Values()
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, "x", vals[0].StringValue())
	assert.Equal(t, int64(7), vals[1].Array().Index(0).Int64())
	assert.Equal(t, TypeNull, vals[1].Array().Index(1).Type)
	assert.False(t, vals[2].Boolean())
}
