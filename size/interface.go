/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package size provides a byte-size type with binary (1024-based) units,
// used across the library to express buffer capacities, frame caps and
// config limits in a human-readable, marshalable form.
package size

import "math"

// Size is a byte count with binary-unit formatting and parsing helpers.
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1 << (10 * iota)
	SizeKilo
	SizeMega
	SizeGiga
	SizeTera
	SizePeta
	SizeExa
)

var defaultUnit rune = 'B'

// SetDefaultUnit changes the suffix rune used by Code when called with a
// zero rune. Passing 0 resets it to 'B'.
func SetDefaultUnit(r rune) {
	if r == 0 {
		defaultUnit = 'B'
		return
	}

	defaultUnit = r
}

// ParseSize is a deprecated alias of Parse kept for earlier call sites.
func ParseSize(s string) (Size, error) {
	return Parse(s)
}

// GetSize is a deprecated alias of Parse that reports success as a bool
// instead of an error.
func GetSize(s string) (Size, bool) {
	v, err := Parse(s)
	if err != nil {
		return SizeNul, false
	}

	return v, true
}

// SizeFromInt64 converts an int64 byte count into a Size, using its
// absolute value.
func SizeFromInt64(i int64) Size {
	if i < 0 {
		i = -i
	}

	return Size(i)
}

// SizeFromFloat64 converts a float64 byte count into a Size. The value is
// floored then taken as an absolute value, and saturates at math.MaxUint64.
func SizeFromFloat64(f float64) Size {
	f = math.Floor(f)

	if f < 0 {
		f = -f
	}

	if f > float64(math.MaxUint64) {
		return Size(math.MaxUint64)
	}

	return Size(f)
}

func ParseInt64(i int64) Size {
	return SizeFromInt64(i)
}

func ParseUint64(i uint64) Size {
	return Size(i)
}

func ParseFloat64(f float64) Size {
	return SizeFromFloat64(f)
}

func ParseByte(p []byte) (Size, error) {
	return Parse(string(p))
}

// ParseByteAsSize is a deprecated alias of ParseByte.
func ParseByteAsSize(p []byte) (Size, error) {
	return ParseByte(p)
}
