// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"io"

	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// Raw is a BSON document in byte form. It is a view: it references the bytes it was created from
// and reads them in place.
type Raw []byte

// NewRawFromBytes checks the framing of b and returns the document it holds. b is not copied.
func NewRawFromBytes(b []byte) (Raw, error) {
	doc, err := bsoncore.NewDocument(b)
	if err != nil {
		return nil, err
	}
	return Raw(doc), nil
}

// NewFromIOReader reads in a document from the given io.Reader and constructs a Raw from it.
func NewFromIOReader(r io.Reader) (Raw, error) {
	doc, err := bsoncore.NewDocumentFromReader(r)
	return Raw(doc), err
}

// Validate validates the document. This method only validates the first document in
// the slice, to validate other documents, the slice must be resliced.
func (r Raw) Validate() error { return bsoncore.Document(r).Validate() }

// Lookup search the document, potentially recursively, for the given key. If
// there are multiple keys provided, this method will recurse down, as long as
// the top and intermediate nodes are either documents or arrays.If an error
// occurs or if the value doesn't exist, an empty RawValue is returned.
func (r Raw) Lookup(key ...string) RawValue {
	return convertFromCoreValue(bsoncore.Document(r).Lookup(key...))
}

// LookupErr searches the document and potentially subdocuments or arrays for the
// provided key. Each key provided to this method represents a layer of depth.
func (r Raw) LookupErr(key ...string) (RawValue, error) {
	val, err := bsoncore.Document(r).LookupErr(key...)
	return convertFromCoreValue(val), err
}

// Elements returns this document as a slice of elements. The returned slice will contain valid
// elements. If the document is not valid, the elements up to the invalid point will be returned
// along with an error.
func (r Raw) Elements() ([]RawElement, error) {
	elems, err := bsoncore.Document(r).Elements()
	relems := make([]RawElement, 0, len(elems))
	for _, elem := range elems {
		relems = append(relems, RawElement(elem))
	}
	return relems, err
}

// Values returns this document as a slice of values. The returned slice will contain valid values.
// If the document is not valid, the values up to the invalid point will be returned along with an
// error.
func (r Raw) Values() ([]RawValue, error) {
	vals, err := bsoncore.Document(r).Values()
	rvals := make([]RawValue, 0, len(vals))
	for _, val := range vals {
		rvals = append(rvals, convertFromCoreValue(val))
	}
	return rvals, err
}

// Index searches for and retrieves the element at the given index. This method will panic if
// the document is invalid or if the index is out of bounds.
func (r Raw) Index(index uint) RawElement { return RawElement(bsoncore.Document(r).Index(index)) }

// IndexErr searches for and retrieves the element at the given index.
func (r Raw) IndexErr(index uint) (RawElement, error) {
	elem, err := bsoncore.Document(r).IndexErr(index)
	return RawElement(elem), err
}

// Copy returns a copy of r that does not reference the original bytes.
func (r Raw) Copy() Raw { return Raw(bsoncore.Document(r).Copy()) }

// String implements the fmt.Stringer interface.
func (r Raw) String() string { return bsoncore.Document(r).String() }

// RawElement represents a BSON element in byte form. This type provides a simple way to
// transform a slice of bytes into a BSON element and extract information from it.
type RawElement []byte

// Key returns the key for this element. If the element is not valid, this method returns an empty
// string.
func (re RawElement) Key() string { return bsoncore.Element(re).Key() }

// KeyErr returns the key for this element, returning an error if the element is not valid.
func (re RawElement) KeyErr() (string, error) { return bsoncore.Element(re).KeyErr() }

// Value returns the value of this element. If the element is not valid, this method returns an
// empty Value.
func (re RawElement) Value() RawValue { return convertFromCoreValue(bsoncore.Element(re).Value()) }

// ValueErr returns the value for this element, returning an error if the element is not valid.
func (re RawElement) ValueErr() (RawValue, error) {
	val, err := bsoncore.Element(re).ValueErr()
	return convertFromCoreValue(val), err
}

// Validate ensures re is a valid BSON element.
func (re RawElement) Validate() error { return bsoncore.Element(re).Validate() }

// String implements the fmt.Stringer interface. The output will be in extended JSON format.
func (re RawElement) String() string {
	return bsoncore.Document(bsoncore.BuildDocument(nil, re)).String()
}

// RawValue represents a BSON value in byte form. It can be used to hold unprocessed BSON or to
// defer processing of BSON. Type is the BSON type of the value and Value are the raw bytes that
// represent the element.
type RawValue struct {
	Type  Type
	Value []byte
}

func convertFromCoreValue(v bsoncore.Value) RawValue { return RawValue{Type: v.Type, Value: v.Data} }

func (rv RawValue) core() bsoncore.Value { return bsoncore.Value{Type: rv.Type, Data: rv.Value} }

// IsZero reports whether the RawValue is zero, i.e. no data is present on the RawValue. It
// returns true if Type is 0 and Value is empty or nil.
func (rv RawValue) IsZero() bool { return rv.Type == 0x00 && len(rv.Value) == 0 }

// Unmarshal deserializes BSON into the provided val, copying every variable length payload. If
// RawValue cannot be unmarshaled into val, an error is returned.
func (rv RawValue) Unmarshal(val interface{}) error {
	return ownedDecoder.DecodeValue(rv.core(), val)
}

// UnmarshalView is like Unmarshal except that borrowing targets reference rv.Value.
func (rv RawValue) UnmarshalView(val interface{}) error {
	return viewDecoder.DecodeValue(rv.core(), val)
}

// Equal compares rv and rv2 and returns true if they are equal.
func (rv RawValue) Equal(rv2 RawValue) bool {
	if rv.Type != rv2.Type {
		return false
	}

	if !bytes.Equal(rv.Value, rv2.Value) {
		return false
	}

	return true
}

// Validate ensures the value is a valid BSON value.
func (rv RawValue) Validate() error { return rv.core().Validate() }

// Document returns the BSON document the Value represents as a Raw. It panics if the value is a
// BSON type other than document.
func (rv RawValue) Document() Raw { return Raw(rv.core().Document()) }

// DocumentOK is the same as Document, except it returns a boolean instead of panicking.
func (rv RawValue) DocumentOK() (Raw, bool) {
	doc, ok := rv.core().DocumentOK()
	return Raw(doc), ok
}

// StringValue returns the string value for this element. It panics if e's BSON type is not
// bsontype.String.
func (rv RawValue) StringValue() string { return rv.core().StringValue() }

// Int32 returns the int32 the Value represents. It panics if the value is a BSON type other than
// int32.
func (rv RawValue) Int32() int32 { return rv.core().Int32() }

// String implements the fmt.Stringer interface. This method will return values in extended JSON
// format. If the value is not valid, this returns an empty string.
func (rv RawValue) String() string { return rv.core().String() }

// DebugString outputs a human readable version of RawValue. It will attempt to stringify the
// valid components of the value even if the entire value is not valid.
func (rv RawValue) DebugString() string { return rv.core().DebugString() }
