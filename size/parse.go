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
	"regexp"
	"strconv"
	"strings"
)

var (
	reToken   = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)([A-Za-z]{1,2})`)
	reNumOnly = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)
)

func unitMultiplier(u string) (Size, bool) {
	switch strings.ToUpper(u) {
	case "B":
		return SizeUnit, true
	case "K", "KB":
		return SizeKilo, true
	case "M", "MB":
		return SizeMega, true
	case "G", "GB":
		return SizeGiga, true
	case "T", "TB":
		return SizeTera, true
	case "P", "PB":
		return SizePeta, true
	case "E", "EB":
		return SizeExa, true
	default:
		return 0, false
	}
}

func cleanInput(s string) string {
	s = strings.TrimSpace(s)

	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	return s
}

// Parse converts a human-readable byte size such as "5MB", "1.5GB" or "10KB"
// into a Size. It accepts case-insensitive single-letter (B, K, M, G, T, P,
// E) and two-letter (KB, MB, ...) units, an optional leading '+' sign, and
// compound values such as "1GB500MB".
func Parse(s string) (Size, error) {
	s = cleanInput(s)

	if s == "" {
		return SizeNul, fmt.Errorf("size: invalid size: empty string")
	}

	if strings.HasPrefix(s, "-") {
		return SizeNul, fmt.Errorf("size: negative size not allowed: %q", s)
	}

	s = strings.TrimPrefix(s, "+")

	if reNumOnly.MatchString(s) {
		return SizeNul, fmt.Errorf("size: missing unit in %q", s)
	}

	var (
		total   float64
		matched bool
		rest    = s
	)

	for len(rest) > 0 {
		m := reToken.FindStringSubmatch(rest)
		if m == nil {
			return SizeNul, fmt.Errorf("size: invalid size: %q", s)
		}

		numStr, unitStr := m[1], m[2]

		mul, ok := unitMultiplier(unitStr)
		if !ok {
			return SizeNul, fmt.Errorf("size: unknown unit %q in %q", unitStr, s)
		}

		v, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return SizeNul, fmt.Errorf("size: invalid size: %w", err)
		}

		total += v * float64(mul)
		matched = true
		rest = rest[len(m[0]):]
	}

	if !matched {
		return SizeNul, fmt.Errorf("size: invalid size: %q", s)
	}

	if total > float64(math.MaxUint64) {
		return SizeNul, fmt.Errorf("size: overflow: %q exceeds maximum representable size", s)
	}

	return SizeFromFloat64(total), nil
}

func (s *Size) parseString(str string) error {
	v, err := Parse(str)
	if err != nil {
		return err
	}

	*s = v
	return nil
}

func (s *Size) unmarshall(b []byte) error {
	return s.parseString(string(b))
}
