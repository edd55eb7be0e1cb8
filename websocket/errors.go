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
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

// minPkgWebsocket reserves this package's error code range above
// liberr.MinAvailable, the first block golib/errors leaves free for
// consumers that are not part of the golib module itself.
const minPkgWebsocket liberr.CodeError = liberr.MinAvailable + 200

const (
	ErrorProtocol liberr.CodeError = iota + minPkgWebsocket
	ErrorClosed
	ErrorReceivedCloseFrame
	ErrorHandshakeQueueFull
	ErrorHandshakeRejected
	ErrorHandshakeAcceptMismatch
	ErrorInvalidURL
)

func init() {
	if liberr.ExistInMapMessage(ErrorProtocol) {
		panic(fmt.Errorf("error code collision with package golib/websocket"))
	}
	liberr.RegisterIdFctMessage(ErrorProtocol, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorProtocol:
		return "websocket protocol error"
	case ErrorClosed:
		return "the websocket is closed and can be dropped"
	case ErrorReceivedCloseFrame:
		return "the peer has sent the close frame"
	case ErrorHandshakeQueueFull:
		return "pending message queue exceeded its memory cap during handshake"
	case ErrorHandshakeRejected:
		return "server did not switch protocols"
	case ErrorHandshakeAcceptMismatch:
		return "sec-websocket-accept value does not match the expected hash"
	case ErrorInvalidURL:
		return "invalid websocket url"
	}

	return liberr.NullMessage
}
