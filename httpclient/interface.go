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

// Package httpclient is a deliberately thin HTTP/1.1 request/response
// pair for a stream.ReadWriter of any layer (plain TCP, TLS, or
// buffered): one buffered write per request, one incremental,
// non-blocking parser per response. No redirects, no chunked transfer,
// no HTTP/2 — a connection pool and retry policy belong to the caller.
package httpclient

import (
	"net/textproto"
)

// MaxHeaderBytes caps how much of a response this client will buffer
// while still looking for the end of the header block, so a
// misbehaving or malicious peer cannot grow the buffer without bound.
const MaxHeaderBytes = 64 * 1024

// Header is a single request header field. A slice, not a map, so
// callers control field order the way the wire format requires Host to
// come first.
type Header struct {
	Name  string
	Value string
}

// Request is the request line plus headers plus an optional body.
// Method defaults to GET and Path to "/" when left empty.
type Request struct {
	Method  string
	Path    string
	Host    string
	Headers []Header
	Body    []byte
}

// Response is the parsed status line, headers, and body of a completed
// HTTP/1.1 response.
type Response struct {
	StatusCode int
	StatusText string
	Body       []byte

	headers textproto.MIMEHeader
}

// Header returns the first value of the named header, matched
// case-insensitively per RFC 7230.
func (r *Response) Header(name string) (string, bool) {
	if r == nil || r.headers == nil {
		return "", false
	}

	key := textproto.CanonicalMIMEHeaderKey(name)
	vals, ok := r.headers[key]
	if !ok || len(vals) == 0 {
		return "", false
	}

	return vals[0], true
}
