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

package httpclient

import (
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

// minPkgHttpClient reserves this package's error code range above
// liberr.MinAvailable, the first block golib/errors leaves free for
// consumers that are not part of the golib module itself.
const minPkgHttpClient liberr.CodeError = liberr.MinAvailable + 700

const (
	ErrorWriteRequest liberr.CodeError = iota + minPkgHttpClient
	ErrorMalformedStatusLine
	ErrorMalformedHeaders
	ErrorMalformedContentLength
	ErrorResponseTooLarge
)

func init() {
	if liberr.ExistInMapMessage(ErrorWriteRequest) {
		panic(fmt.Errorf("error code collision with package golib/httpclient"))
	}
	liberr.RegisterIdFctMessage(ErrorWriteRequest, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorWriteRequest:
		return "failed to write request to the underlying stream"
	case ErrorMalformedStatusLine:
		return "response status line could not be parsed"
	case ErrorMalformedHeaders:
		return "response headers could not be parsed"
	case ErrorMalformedContentLength:
		return "response Content-Length header is not a valid integer"
	case ErrorResponseTooLarge:
		return "response headers exceeded the maximum buffered size"
	}

	return liberr.NullMessage
}
