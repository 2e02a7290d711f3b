// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cursor

import "errors"

// ErrNoDocument is returned by Decode and DecodeView when the cursor has no current document.
var ErrNoDocument = errors.New("cursor: no current document")

// ErrSourceClosed is returned by a closed SliceSource.
var ErrSourceClosed = errors.New("cursor: source is closed")

// ErrNilSource is the error recorded by a cursor created without a source.
var ErrNilSource = errors.New("cursor: batch source must not be nil")

// ErrInvalidResults is returned by All when results is not a pointer to a slice.
var ErrInvalidResults = errors.New("cursor: results argument must be a pointer to a slice")
