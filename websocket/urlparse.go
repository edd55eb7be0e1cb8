/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package websocket

import (
	"net/url"
	"strconv"

	libstm "github.com/nabbar/wsio/stream"
)

// ParseURL accepts ws://host[:port]/path?query and wss://host[:port]/path?query,
// returning the dial info, the request path (with query string), and
// whether the scheme calls for TLS. Default ports are 80 for ws and 443
// for wss.
func ParseURL(raw string) (libstm.ConnectionInfo, string, bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return libstm.ConnectionInfo{}, "", false, ErrorInvalidURL.Error(err)
	}

	var secure bool

	switch u.Scheme {
	case "ws":
		secure = false
	case "wss":
		secure = true
	default:
		return libstm.ConnectionInfo{}, "", false, ErrorInvalidURL.Error(nil)
	}

	host := u.Hostname()
	if host == "" {
		return libstm.ConnectionInfo{}, "", false, ErrorInvalidURL.Error(nil)
	}

	port := uint16(80)
	if secure {
		port = 443
	}

	if p := u.Port(); p != "" {
		v, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return libstm.ConnectionInfo{}, "", false, ErrorInvalidURL.Error(err)
		}
		port = uint16(v)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return libstm.ConnectionInfo{Host: host, Port: port}, path, secure, nil
}
