// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package dumpsource reads batches of documents from files in the layout bsondump and mongodump
// produce: BSON documents laid end to end, optionally compressed with snappy framing.
package dumpsource

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/patrickfreed/raw-bson-benchmarks/cursor"
	"github.com/patrickfreed/raw-bson-benchmarks/x/bsonx/bsoncore"
)

// MaxDocumentSize is the largest document a dump may contain.
const MaxDocumentSize = 16 * 1024 * 1024

// DefaultBatchSize is the number of documents per batch when none is given.
const DefaultBatchSize = 101

const (
	bsonExt   = ".bson"
	snappyExt = ".bson.snappy"
)

// ErrInvalidSize is returned when a document declares a size that cannot be valid.
var ErrInvalidSize = errors.New("dumpsource: invalid document size")

// Source is a cursor.BatchSource over one or more dump streams read in order.
type Source struct {
	BatchSize int

	files  []string
	opened int

	r      *bufio.Reader
	closer io.Closer
	buf    []byte
	closed bool
}

var _ cursor.BatchSource = (*Source)(nil)

// New returns a Source reading from r. If r is an io.Closer it is closed with the Source.
func New(r io.Reader, batchSize int) *Source {
	s := &Source{BatchSize: batchSize}
	s.setReader(r)
	return s
}

// Open returns a Source over every .bson and .bson.snappy file under dir, read in lexical path
// order.
func Open(dir string, batchSize int) (*Source, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	return &Source{BatchSize: batchSize, files: files}, nil
}

// Files lists the dump files under dir in lexical path order.
func Files(dir string) ([]string, error) {
	var files []string
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, bsonExt) || strings.HasSuffix(path, snappyExt) {
				files = append(files, path)
			}
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dumpsource: walking %s", dir)
	}
	return files, nil
}

func (s *Source) setReader(r io.Reader) {
	s.closer, _ = r.(io.Closer)
	s.r = bufio.NewReader(r)
}

func (s *Source) openNext() error {
	path := s.files[s.opened]
	s.opened++
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "dumpsource")
	}
	if strings.HasSuffix(path, snappyExt) {
		s.closer = f
		s.r = bufio.NewReader(snappy.NewReader(f))
		return nil
	}
	s.setReader(f)
	return nil
}

func (s *Source) closeCurrent() error {
	var err error
	if s.closer != nil {
		err = s.closer.Close()
	}
	s.r, s.closer = nil, nil
	return err
}

// Next implements cursor.BatchSource. It returns up to BatchSize documents. The returned batch is
// reused by the following call.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if s.closed {
		return nil, cursor.ErrSourceClosed
	}
	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	s.buf = s.buf[:0]
	for n := 0; n < size; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.r == nil {
			if s.opened == len(s.files) {
				break
			}
			if err := s.openNext(); err != nil {
				return nil, err
			}
		}

		var err error
		s.buf, err = readDocument(s.r, s.buf)
		if err == io.EOF {
			if err := s.closeCurrent(); err != nil {
				return nil, errors.Wrap(err, "dumpsource")
			}
			if len(s.files) == 0 {
				break
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		n++
	}
	if len(s.buf) == 0 {
		return nil, io.EOF
	}
	return s.buf, nil
}

// readDocument appends the next document of r to dst. It returns io.EOF only when r ends cleanly
// between documents.
func readDocument(r io.Reader, dst []byte) ([]byte, error) {
	var lengthBytes [4]byte
	n, err := io.ReadFull(r, lengthBytes[:])
	if err == io.EOF {
		return dst, io.EOF
	}
	if err != nil {
		return dst, errors.Wrapf(bsoncore.NewInsufficientBytesError(lengthBytes[:n], nil), "dumpsource: reading document length")
	}

	length, _, _ := bsoncore.ReadLength(lengthBytes[:])
	if length < bsoncore.EmptyDocumentLength || length > MaxDocumentSize {
		return dst, errors.Wrapf(ErrInvalidSize, "%d bytes", length)
	}

	start := len(dst)
	dst = append(dst, lengthBytes[:]...)
	dst = append(dst, make([]byte, int(length)-4)...)
	if _, err := io.ReadFull(r, dst[start+4:]); err != nil {
		return dst[:start], errors.Wrap(bsoncore.NewDocumentLengthError(int(length), len(dst)-start), "dumpsource: document cut short")
	}
	if _, err := bsoncore.NewDocument(dst[start:]); err != nil {
		return dst[:start], errors.Wrap(err, "dumpsource")
	}
	return dst, nil
}

// Close implements cursor.BatchSource.
func (s *Source) Close(context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeCurrent()
}

func (s *Source) String() string { return "dump" }

// WriteDump writes docs to path. Paths ending in .bson.snappy are compressed with snappy framing.
func WriteDump(path string, docs ...bsoncore.Document) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "dumpsource")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "dumpsource")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "dumpsource")
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(path, snappyExt) {
		sw := snappy.NewBufferedWriter(f)
		defer func() {
			if cerr := sw.Close(); err == nil && cerr != nil {
				err = errors.Wrap(cerr, "dumpsource")
			}
		}()
		w = sw
	}
	return Write(w, docs...)
}

// Write writes docs to w end to end.
func Write(w io.Writer, docs ...bsoncore.Document) error {
	for i, doc := range docs {
		if _, err := bsoncore.NewDocument(doc); err != nil {
			return errors.Wrapf(err, "dumpsource: document %d", i)
		}
		if _, err := w.Write(doc); err != nil {
			return errors.Wrap(err, "dumpsource")
		}
	}
	return nil
}
