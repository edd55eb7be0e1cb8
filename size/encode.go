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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Size) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	return s.parseString(str)
}

func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	return s.parseString(value.Value)
}

func (s Size) MarshalTOML() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Size) UnmarshalTOML(i interface{}) error {
	if b, ok := i.([]byte); ok {
		return s.unmarshall(b)
	}

	if str, ok := i.(string); ok {
		return s.parseString(str)
	}

	return fmt.Errorf("size: value not in valid format")
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(b []byte) error {
	return s.unmarshall(b)
}

func (s Size) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.String())
}

func (s *Size) UnmarshalCBOR(b []byte) error {
	var str string
	if err := cbor.Unmarshal(b, &str); err != nil {
		return err
	}

	return s.parseString(str)
}

// MarshalBinary encodes the size as a big-endian uint64.
func (s Size) MarshalBinary() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(s))
	return b, nil
}

func (s *Size) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("size: invalid binary length: %d", len(b))
	}

	*s = Size(binary.BigEndian.Uint64(b))
	return nil
}

func toInt64(data interface{}) (int64, bool) {
	switch v := data.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func toUint64(data interface{}) (uint64, bool) {
	switch v := data.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

func toFloat64(data interface{}) (float64, bool) {
	switch v := data.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// ViperDecoderHook returns a mapstructure.DecodeHookFunc-shaped hook that
// decodes strings, byte slices and numeric kinds into Size, for use with
// Viper's configuration unmarshalling. Any other target type is passed
// through unchanged.
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Size(0)) {
			return data, nil
		}

		switch f.Kind() {
		case reflect.String:
			str, ok := data.(string)
			if !ok {
				return data, nil
			}

			v, err := Parse(str)
			if err != nil {
				return nil, err
			}

			return v, nil

		case reflect.Slice:
			b, ok := data.([]byte)
			if !ok {
				return data, nil
			}

			v, err := Parse(string(b))
			if err != nil {
				return nil, err
			}

			return v, nil

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v, ok := toInt64(data)
			if !ok {
				return data, nil
			}

			return SizeFromInt64(v), nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			v, ok := toUint64(data)
			if !ok {
				return data, nil
			}

			return Size(v), nil

		case reflect.Float32, reflect.Float64:
			v, ok := toFloat64(data)
			if !ok {
				return data, nil
			}

			return SizeFromFloat64(v), nil

		default:
			return data, nil
		}
	}
}
