// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// FieldSpec describes one field of a Shape.
type FieldSpec struct {
	// Name is the document key the field is decoded from.
	Name string
	// Index is the reflect index path of the field. It has more than one entry for fields of an
	// inlined struct.
	Index []int
	// Expected is the BSON type the field decodes from, or 0 if any type is accepted.
	Expected bsoncore.Type
	// Borrow is true when the field references the source buffer in View mode.
	Borrow bool
	// Optional is true when the field may be absent from the document.
	Optional bool
	// OmitEmpty is true when the field is left out of marshaled documents if it is empty.
	OmitEmpty bool
	// Type is the Go type of the field.
	Type reflect.Type
}

// Shape is the compiled decoding description of a struct type: the ordered fields it expects and
// how each one is decoded. Shapes are computed once per type and cached.
type Shape struct {
	Type   reflect.Type
	Fields []FieldSpec

	byName    map[string]int
	inlineMap []int
}

// Field returns the FieldSpec decoded from the document key name.
func (s *Shape) Field(name string) (FieldSpec, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[idx], true
}

var shapeCache sync.Map // map[reflect.Type]*Shape

// ShapeOf returns the Shape of the struct type of v. v may be a struct value or a pointer to one.
func ShapeOf(v interface{}) (*Shape, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, ErrDecodeToNil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("bson: ShapeOf requires a struct, got %s", t)
	}
	return shapeFor(t)
}

func shapeFor(t reflect.Type) (*Shape, error) {
	if s, ok := shapeCache.Load(t); ok {
		return s.(*Shape), nil
	}
	s, err := describeStruct(t)
	if err != nil {
		return nil, err
	}
	actual, _ := shapeCache.LoadOrStore(t, s)
	return actual.(*Shape), nil
}

func describeStruct(t reflect.Type) (*Shape, error) {
	numFields := t.NumField()
	s := &Shape{
		Type:   t,
		Fields: make([]FieldSpec, 0, numFields),
		byName: make(map[string]int, numFields),
	}

	for i := 0; i < numFields; i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			// unexported, ignore
			continue
		}

		stags := parseStructTags(sf)
		if stags.Skip {
			continue
		}

		if stags.Inline {
			switch sf.Type.Kind() {
			case reflect.Map:
				if s.inlineMap != nil {
					return nil, errors.New("(struct " + t.String() + ") multiple inline maps")
				}
				if sf.Type.Key().Kind() != reflect.String {
					return nil, errors.New("(struct " + t.String() + ") inline map must have a string keys")
				}
				s.inlineMap = []int{i}
			case reflect.Struct:
				inlined, err := shapeFor(sf.Type)
				if err != nil {
					return nil, err
				}
				for _, fs := range inlined.Fields {
					if _, exists := s.byName[fs.Name]; exists {
						return nil, fmt.Errorf("(struct %s) duplicated key %s", t.String(), fs.Name)
					}
					fs.Index = append([]int{i}, fs.Index...)
					s.byName[fs.Name] = len(s.Fields)
					s.Fields = append(s.Fields, fs)
				}
				if inlined.inlineMap != nil {
					if s.inlineMap != nil {
						return nil, errors.New("(struct " + t.String() + ") multiple inline maps")
					}
					s.inlineMap = append([]int{i}, inlined.inlineMap...)
				}
			default:
				return nil, fmt.Errorf("(struct %s) inline fields must be either a struct or a map", t.String())
			}
			continue
		}
		if sf.PkgPath != "" {
			// unexported embedded field that is not inlined
			continue
		}

		if _, exists := s.byName[stags.Name]; exists {
			return nil, fmt.Errorf("(struct %s) duplicated key %s", t.String(), stags.Name)
		}

		expected, optional := expectedType(sf.Type)
		elem := sf.Type
		for elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		s.byName[stags.Name] = len(s.Fields)
		s.Fields = append(s.Fields, FieldSpec{
			Name:      stags.Name,
			Index:     []int{i},
			Expected:  expected,
			Borrow:    rawViewType(elem) || (stags.Borrow && borrowable(elem)),
			Optional:  optional || stags.OmitEmpty,
			OmitEmpty: stags.OmitEmpty,
			Type:      sf.Type,
		})
	}

	return s, nil
}
