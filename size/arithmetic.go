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

// Mul multiplies s in place by m, rounding to the nearest byte and
// saturating at math.MaxUint64. Negative multipliers reset s to zero.
func (s *Size) Mul(m float64) {
	_ = s.MulErr(m)
}

// MulErr is like Mul but reports an overflow instead of silently saturating.
func (s *Size) MulErr(m float64) error {
	if m <= 0 {
		*s = SizeNul
		return nil
	}

	v := math.Round(float64(*s) * m)
	if v > float64(math.MaxUint64) {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size: multiplication overflow")
	}

	*s = Size(v)
	return nil
}

// Div divides s in place by m, rounding to the nearest byte. A zero or
// negative divisor leaves s unchanged.
func (s *Size) Div(m float64) {
	_ = s.DivErr(m)
}

// DivErr is like Div but reports an invalid divisor instead of ignoring it.
func (s *Size) DivErr(m float64) error {
	if m <= 0 {
		return fmt.Errorf("size: invalid diviser: %v", m)
	}

	v := math.Round(float64(*s) / m)
	if v < 0 {
		v = 0
	}

	if v > float64(math.MaxUint64) {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size: division overflow")
	}

	*s = Size(v)
	return nil
}

// Add adds v to s in place, saturating at math.MaxUint64.
func (s *Size) Add(v uint64) {
	_ = s.AddErr(v)
}

// AddErr is like Add but reports an overflow instead of silently saturating.
func (s *Size) AddErr(v uint64) error {
	cur := uint64(*s)

	if cur > math.MaxUint64-v {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size: addition overflow")
	}

	*s = Size(cur + v)
	return nil
}

// Sub subtracts v from s in place, flooring at zero.
func (s *Size) Sub(v uint64) {
	_ = s.SubErr(v)
}

// SubErr is like Sub but reports an underflow instead of silently flooring.
func (s *Size) SubErr(v uint64) error {
	cur := uint64(*s)

	if v > cur {
		*s = SizeNul
		return fmt.Errorf("size: invalid substractor: value greater than current size")
	}

	*s = Size(cur - v)
	return nil
}
