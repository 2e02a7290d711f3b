// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

const fixtureRelaxed = `{"a":true,"b":"hello","c":{"world":1,"ok":2,"other_key":5.5},` +
	`"oid":{"$oid":"5f1d2c3b4a5968778695a4b3"},"array":[1,2,3]}`

func TestMarshalExtJSON(t *testing.T) {
	t.Run("raw and owned agree", func(t *testing.T) {
		var d D
		require.NoError(t, Unmarshal(fixtureDocument(), &d))

		for _, canonical := range []bool{true, false} {
			fromRaw, err := MarshalExtJSON(Raw(fixtureDocument()), canonical)
			require.NoError(t, err)
			fromD, err := MarshalExtJSON(d, canonical)
			require.NoError(t, err)
			assert.Equal(t, string(fromRaw), string(fromD), "canonical=%v", canonical)
		}
	})
	t.Run("relaxed", func(t *testing.T) {
		got, err := MarshalExtJSON(bsoncore.Document(fixtureDocument()), false)
		require.NoError(t, err)
		assert.Equal(t, fixtureRelaxed, string(got))
	})
	t.Run("canonical", func(t *testing.T) {
		got, err := MarshalExtJSON(Raw(fixtureDocument()), true)
		require.NoError(t, err)
		assert.Equal(t, Raw(fixtureDocument()).String(), string(got))
	})
	t.Run("struct", func(t *testing.T) {
		got, err := MarshalExtJSON(wantFixture(), false)
		require.NoError(t, err)
		assert.Equal(t, fixtureRelaxed, string(got))
	})
	t.Run("values", func(t *testing.T) {
		got, err := MarshalExtJSON(A{int32(1), "x", nil}, true)
		require.NoError(t, err)
		assert.Equal(t, `[{"$numberInt":"1"},"x",null]`, string(got))

		got, err = MarshalExtJSON(Raw(fixtureDocument()).Lookup("c", "other_key"), false)
		require.NoError(t, err)
		assert.Equal(t, `5.5`, string(got))
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := MarshalExtJSON(Raw(fixtureDocument()[:10]), true)
		assert.Error(t, err)
	})
}

func TestMarshalExtJSONIndent(t *testing.T) {
	got, err := MarshalExtJSONIndent(Raw(fixtureDocument()), false, "", "  ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "{\n  \"a\": true,"), "unexpected output:\n%s", got)
	assert.Equal(t, fixtureRelaxed, compact(string(got)))
}

func TestMarshalExtJSONArray(t *testing.T) {
	docs := []Raw{Raw(fixtureDocument()), Raw(fixtureDocument())}
	got, err := MarshalExtJSONArray(docs, false)
	require.NoError(t, err)
	assert.Equal(t, "["+fixtureRelaxed+","+fixtureRelaxed+"]", string(got))

	empty, err := MarshalExtJSONArray([]D{}, true)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))

	_, err = MarshalExtJSONArray("nope", true)
	assert.Error(t, err)
}

// compact strips the whitespace pretty printing adds outside of strings.
func compact(s string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' && (i == 0 || s[i-1] != '\\'):
			inString = !inString
		case !inString && (c == ' ' || c == '\n'):
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
