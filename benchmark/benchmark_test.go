// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import "testing"

func BenchmarkCanaryInc(b *testing.B)       { WrapCase(CanaryIncCase)(b) }
func BenchmarkGlobalCanaryInc(b *testing.B) { WrapCase(GlobalCanaryIncCase)(b) }

func BenchmarkBSONFixtureEncoding(b *testing.B)       { WrapCase(BSONFixtureEncoding)(b) }
func BenchmarkBSONFixtureDecoding(b *testing.B)       { WrapCase(BSONFixtureDecoding)(b) }
func BenchmarkBSONFixtureDecodingLazy(b *testing.B)   { WrapCase(BSONFixtureDecodingLazy)(b) }
func BenchmarkBSONFixtureStructDecoding(b *testing.B) { WrapCase(BSONFixtureStructDecoding)(b) }
func BenchmarkBSONFixtureStructViewDecoding(b *testing.B) {
	WrapCase(BSONFixtureStructViewDecoding)(b)
}
func BenchmarkBSONFixtureExtJSON(b *testing.B) { WrapCase(BSONFixtureExtJSON)(b) }

func BenchmarkFind(b *testing.B) {
	s := memorySuite(FixtureCount)
	for _, c := range s.Cases() {
		b.Run(c.Name(), WrapCase(c.Bench))
	}
}
