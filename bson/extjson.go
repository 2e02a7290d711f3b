// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"reflect"

	"github.com/tidwall/pretty"

	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// MarshalExtJSON returns the Extended JSON encoding of val. canonical selects canonical Extended
// JSON, which preserves every BSON type; otherwise relaxed Extended JSON is produced.
//
// Raw, bsoncore.Document and bsoncore.Array values are written straight from their bytes. Any
// other value is first encoded with Marshal.
func MarshalExtJSON(val interface{}, canonical bool) ([]byte, error) {
	return MarshalExtJSONAppend(nil, val, canonical)
}

// MarshalExtJSONAppend will append the extended JSON bytes of val to dst.
func MarshalExtJSONAppend(dst []byte, val interface{}, canonical bool) ([]byte, error) {
	switch v := val.(type) {
	case Raw:
		return bsoncore.Document(v).AppendExtJSON(dst, canonical)
	case bsoncore.Document:
		return v.AppendExtJSON(dst, canonical)
	case bsoncore.Array:
		return v.AppendExtJSON(dst, canonical)
	case RawValue:
		return v.core().AppendExtJSON(dst, canonical)
	case bsoncore.Value:
		return v.AppendExtJSON(dst, canonical)
	}

	t, data, err := MarshalValue(val)
	if err != nil {
		return dst, err
	}
	return bsoncore.Value{Type: t, Data: data}.AppendExtJSON(dst, canonical)
}

// MarshalExtJSONIndent returns the extended JSON encoding of val with each JSON element beginning
// on a new line prefixed by prefix and indented by indent.
func MarshalExtJSONIndent(val interface{}, canonical bool, prefix, indent string) ([]byte, error) {
	j, err := MarshalExtJSON(val, canonical)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(j, &pretty.Options{
		Width:  80,
		Prefix: prefix,
		Indent: indent,
	}), nil
}

// MarshalExtJSONArray writes the elements of the slice docs as one Extended JSON array. docs must
// be a slice or an array whose elements MarshalExtJSON accepts.
func MarshalExtJSONArray(docs interface{}, canonical bool) ([]byte, error) {
	rv := reflect.ValueOf(docs)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("bson: MarshalExtJSONArray requires a slice, got %T", docs)
	}

	dst := make([]byte, 0, 64*rv.Len()+2)
	dst = append(dst, '[')
	var err error
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, err = MarshalExtJSONAppend(dst, rv.Index(i).Interface(), canonical)
		if err != nil {
			return nil, fmt.Errorf("bson: element %d: %w", i, err)
		}
	}
	return append(dst, ']'), nil
}

// Pretty formats Extended JSON with two space indentation.
func Pretty(j []byte) []byte {
	return pretty.Pretty(j)
}
