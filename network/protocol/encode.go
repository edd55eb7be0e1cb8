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

package protocol

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

func (p NetworkProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *NetworkProtocol) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	*p = Parse(str)
	return nil
}

func (p NetworkProtocol) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *NetworkProtocol) UnmarshalYAML(value *yaml.Node) error {
	*p = Parse(value.Value)
	return nil
}

func (p NetworkProtocol) MarshalTOML() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *NetworkProtocol) UnmarshalTOML(i interface{}) error {
	if str, ok := i.(string); ok {
		*p = Parse(str)
		return nil
	}

	if b, ok := i.([]byte); ok {
		*p = ParseBytes(b)
		return nil
	}

	return fmt.Errorf("protocol: value not in valid format")
}

func (p NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *NetworkProtocol) UnmarshalText(b []byte) error {
	*p = ParseBytes(b)
	return nil
}

func (p NetworkProtocol) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.String())
}

func (p *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	var str string
	if err := cbor.Unmarshal(b, &str); err != nil {
		return err
	}

	*p = Parse(str)
	return nil
}

// ViperDecoderHook returns a mapstructure.DecodeHookFunc-shaped hook that
// decodes strings, byte slices and protocol codes into NetworkProtocol, for
// use with Viper's configuration unmarshalling. Any other target type is
// passed through unchanged.
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(NetworkProtocol(0)) {
			return data, nil
		}

		switch f.Kind() {
		case reflect.String:
			str, ok := data.(string)
			if !ok {
				return data, nil
			}

			return Parse(str), nil

		case reflect.Slice:
			b, ok := data.([]byte)
			if !ok {
				return data, nil
			}

			return ParseBytes(b), nil

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v, ok := toInt64(data)
			if !ok {
				return data, nil
			}

			return ParseInt64(v), nil

		default:
			return data, nil
		}
	}
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
