// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

var (
	ownedDecoder = NewDecoder(Owned)
	viewDecoder  = NewDecoder(View)
)

// Unmarshal parses the BSON-encoded data and stores the result in the value pointed to by val.
// If val is nil or not a pointer, Unmarshal returns an error.
//
// Every variable length payload is copied, so val remains valid after data is released or
// reused. Fields flagged borrow are copied like any other field.
//
// Only the framing of data is checked up front. Fields are decoded as they are reached and
// fields unknown to the target are skipped without being decoded, so an error can be returned
// after part of val has been populated.
func Unmarshal(data []byte, val interface{}) error {
	return ownedDecoder.Decode(bsoncore.Document(data), val)
}

// UnmarshalView is like Unmarshal except that borrowing fields reference data instead of holding
// a copy of it: fields flagged borrow that are strings, byte slices or primitive.Binary, and every
// field typed Raw, RawValue, bsoncore.Document, bsoncore.Array or bsoncore.Value.
//
// Values decoded this way are only valid while data is retained and left unmodified. Fixed width
// scalars, generic containers and fields without the borrow flag are decoded by value.
func UnmarshalView(data []byte, val interface{}) error {
	return viewDecoder.Decode(bsoncore.Document(data), val)
}
