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

package size

import (
	"fmt"
	"math"
)

const (
	FormatRound0 = "%.0f"
	FormatRound1 = "%.1f"
	FormatRound2 = "%.2f"
	FormatRound3 = "%.3f"
)

// magnitude returns the largest binary unit not greater than s.
func (s Size) magnitude() Size {
	switch {
	case s >= SizeExa:
		return SizeExa
	case s >= SizePeta:
		return SizePeta
	case s >= SizeTera:
		return SizeTera
	case s >= SizeGiga:
		return SizeGiga
	case s >= SizeMega:
		return SizeMega
	case s >= SizeKilo:
		return SizeKilo
	default:
		return SizeUnit
	}
}

// prefix returns the letter prefix ("", "K", "M", ...) matching s's magnitude.
func (s Size) prefix() string {
	switch s.magnitude() {
	case SizeExa:
		return "E"
	case SizePeta:
		return "P"
	case SizeTera:
		return "T"
	case SizeGiga:
		return "G"
	case SizeMega:
		return "M"
	case SizeKilo:
		return "K"
	default:
		return ""
	}
}

// Unit returns the unit suffix for s ("B", "KB", "MB", ...). If custom is
// non-zero, it replaces the trailing 'B'.
func (s Size) Unit(custom rune) string {
	if custom == 0 {
		return s.prefix() + "B"
	}

	return s.prefix() + string(custom)
}

// Code is like Unit but falls back to the package default unit (see
// SetDefaultUnit) instead of 'B' when custom is zero.
func (s Size) Code(custom rune) string {
	if custom == 0 {
		custom = defaultUnit
	}

	return s.prefix() + string(custom)
}

// Format renders the size, scaled to its magnitude, using a fmt-style
// floating point verb (see FormatRound0..3).
func (s Size) Format(layout string) string {
	d := float64(s.magnitude())
	return fmt.Sprintf(layout, float64(s)/d)
}

// String renders the size scaled to its magnitude with two decimals,
// followed by its unit suffix (e.g. "5.00MB").
func (s Size) String() string {
	return s.Format(FormatRound2) + s.Unit(0)
}

func (s Size) KiloBytes() uint64 {
	return uint64(s) / uint64(SizeKilo)
}

func (s Size) MegaBytes() uint64 {
	return uint64(s) / uint64(SizeMega)
}

func (s Size) GigaBytes() uint64 {
	return uint64(s) / uint64(SizeGiga)
}

func (s Size) TeraBytes() uint64 {
	return uint64(s) / uint64(SizeTera)
}

func (s Size) PetaBytes() uint64 {
	return uint64(s) / uint64(SizePeta)
}

func (s Size) ExaBytes() uint64 {
	return uint64(s) / uint64(SizeExa)
}

func (s Size) Uint64() uint64 {
	return uint64(s)
}

func (s Size) Uint32() uint32 {
	if uint64(s) > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(s)
}

func (s Size) Uint() uint {
	if uint64(s) > math.MaxUint {
		return math.MaxUint
	}

	return uint(s)
}

func (s Size) Int64() int64 {
	if uint64(s) > uint64(math.MaxInt64) {
		return math.MaxInt64
	}

	return int64(s)
}

func (s Size) Int32() int32 {
	if uint64(s) > uint64(math.MaxInt32) {
		return math.MaxInt32
	}

	return int32(s)
}

func (s Size) Int() int {
	if uint64(s) > uint64(math.MaxInt) {
		return math.MaxInt
	}

	return int(s)
}

func (s Size) Float64() float64 {
	return float64(s)
}

func (s Size) Float32() float32 {
	return float32(s)
}
