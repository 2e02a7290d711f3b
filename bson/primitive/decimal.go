// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

package primitive

import (
	"strconv"
)

// These constants are the maximum and minimum values for the exponent field in a decimal128 value.
const (
	MaxDecimal128Exp = 6111
	MinDecimal128Exp = -6176
)

// Decimal128 holds decimal128 BSON values. Only formatting is supported; arithmetic is left to
// callers that convert through String.
type Decimal128 struct {
	h, l uint64
}

// NewDecimal128 creates a Decimal128 using the provide high and low uint64s.
func NewDecimal128(h, l uint64) Decimal128 {
	return Decimal128{h: h, l: l}
}

// GetBytes returns the underlying bytes of the BSON decimal value as two uint64 values. The first
// contains the high half and the second the low half.
func (d Decimal128) GetBytes() (uint64, uint64) {
	return d.h, d.l
}

// IsNaN returns whether d is NaN.
func (d Decimal128) IsNaN() bool {
	return d.h>>58&(1<<5-1) == 0x1F
}

// IsInf returns +1 if d is Infinity, -1 if d is -Infinity and 0 otherwise.
func (d Decimal128) IsInf() int {
	if d.h>>58&(1<<5-1) != 0x1E {
		return 0
	}
	if d.h>>63&1 == 0 {
		return 1
	}
	return -1
}

// String returns a string representation of the decimal value.
func (d Decimal128) String() string {
	return FormatDecimal128(d.h, d.l)
}

// FormatDecimal128 formats the decimal128 value held in the high and low halves h and l.
func FormatDecimal128(h, l uint64) string {
	var posSign int // 1 when positive, used to slice off the sign
	if h>>63&1 == 0 {
		posSign = 1
	}

	switch h >> 58 & (1<<5 - 1) {
	case 0x1F:
		return "NaN"
	case 0x1E:
		return "-Infinity"[posSign:]
	}

	var exp int
	high, low := uint64(0), l
	if h>>61&3 == 3 {
		// Bits: 1*sign 2*ignored 14*exponent 111*significand. Every such significand is out of
		// range, so the value is zero with the given exponent.
		exp = int(h >> 47 & (1<<14 - 1))
		low = 0
	} else {
		// Bits: 1*sign 14*exponent 113*significand
		exp = int(h >> 49 & (1<<14 - 1))
		high = h & (1<<49 - 1)
	}
	exp += MinDecimal128Exp

	if high == 0 && low == 0 && exp == 0 {
		return "-0"[posSign:]
	}

	// 5 rounds of 9 digits plus the dot, the sign and a leading zero.
	var repr [48]byte
	last := len(repr)
	i := len(repr)
	dot := len(repr) + exp
	var rem uint32
digits:
	for d9 := 0; d9 < 5; d9++ {
		high, low, rem = divmod(high, low, 1e9)
		for d1 := 0; d1 < 9; d1++ {
			// "-0.0", "0.00123400", "-1.00E-6", "1.050E+3"
			if i < len(repr) && (dot == i || low == 0 && high == 0 && rem > 0 && rem < 10 && (dot < i-6 || exp > 0)) {
				exp += len(repr) - i
				i--
				repr[i] = '.'
				last = i - 1
				dot = len(repr)
			}
			c := '0' + byte(rem%10)
			rem /= 10
			i--
			repr[i] = c
			// "0E+3", "1E+3"
			if low == 0 && high == 0 && rem == 0 && i == len(repr)-1 && (dot < i-5 || exp > 0) {
				last = i
				break digits
			}
			if c != '0' {
				last = i
			}
			if dot > i && low == 0 && high == 0 && rem == 0 {
				break digits
			}
		}
	}
	repr[last-1] = '-'
	last--

	switch {
	case exp > 0:
		return string(repr[last+posSign:]) + "E+" + strconv.Itoa(exp)
	case exp < 0:
		return string(repr[last+posSign:]) + "E" + strconv.Itoa(exp)
	default:
		return string(repr[last+posSign:])
	}
}

// divmod divides the 128 bit value h:l by div, 32 bits at a time.
func divmod(h, l uint64, div uint32) (qh, ql uint64, rem uint32) {
	div64 := uint64(div)
	a := h >> 32
	aq := a / div64
	ar := a % div64
	b := ar<<32 + h&(1<<32-1)
	bq := b / div64
	br := b % div64
	c := br<<32 + l>>32
	cq := c / div64
	cr := c % div64
	dd := cr<<32 + l&(1<<32-1)
	dq := dd / div64
	dr := dd % div64
	return (aq<<32 | bq), (cq<<32 | dq), uint32(dr)
}
