// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"reflect"
	"strings"
)

// structTags holds what a field's bson tag says about its key and decoding. Exported fields are
// keyed by their lowercased name unless the tag names them.
//
// Flags:
//
//	inline     the fields of an embedded struct, or the keys of a map, belong to the outer struct
//	omitempty  the field may be missing from the document
//	borrow     in View mode a string or []byte field aliases the source buffer
//
// A tag of "-" sets Skip and nothing else.
type structTags struct {
	Name      string
	Inline    bool
	OmitEmpty bool
	Borrow    bool
	Skip      bool
}

// parseStructTags reads the tag of sf in the form `bson:"[key][,flag...]"`. A bare tag with no
// colon, such as "myb,omitempty", is accepted as the bson tag.
//
//	type T struct {
//	    A bool
//	    B int    "myb"
//	    D string `bson:",borrow" json:"jsonkey"`
//	    E []byte `bson:"e,omitempty,borrow"`
//	}
func parseStructTags(sf reflect.StructField) structTags {
	key := strings.ToLower(sf.Name)
	tag, ok := sf.Tag.Lookup("bson")
	if !ok && !strings.Contains(string(sf.Tag), ":") && len(sf.Tag) > 0 {
		tag = string(sf.Tag)
	}
	return parseTags(key, tag)
}

func parseTags(key string, tag string) structTags {
	var st structTags
	if tag == "-" {
		st.Skip = true
		return st
	}

	name, flags, _ := strings.Cut(tag, ",")
	if name != "" {
		key = name
	}
	for _, flag := range strings.Split(flags, ",") {
		switch flag {
		case "inline":
			st.Inline = true
		case "omitempty":
			st.OmitEmpty = true
		case "borrow":
			st.Borrow = true
		}
	}

	st.Name = key

	return st
}
