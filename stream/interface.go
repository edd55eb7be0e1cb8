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

// Package stream defines the capability interfaces shared by every layer
// of the non-blocking connection stack (TCP, TLS, kernel-TLS, buffered
// writer, recorder). Layers compose by embedding and explicit wrapping
// rather than a closed variant enum, the idiomatic substitute for the
// monomorphized generic layer stack the original design calls for.
package stream

import (
	"errors"
	"io"
	"net"
	"strconv"
)

// ErrWouldBlock is returned by Reader/Writer implementations when a
// non-blocking syscall made no progress. It is swallowed by callers that
// expect progress and never wrapped into a coded errors.Error — allocating
// a stack trace on every non-blocking read would defeat the zero-blocking
// design.
var ErrWouldBlock = errors.New("stream: would block")

// Reader reads plaintext bytes from a layer, translating the layer's
// underlying non-blocking semantics into ErrWouldBlock.
type Reader interface {
	// Read behaves like io.Reader but returns (0, ErrWouldBlock) instead
	// of (0, nil) when no bytes are currently available.
	Read(p []byte) (n int, err error)
}

// Writer writes plaintext bytes to a layer with the same ErrWouldBlock
// convention as Reader.
type Writer interface {
	Write(p []byte) (n int, err error)
}

// ReadWriter is the minimal capability set every layer implements.
type ReadWriter interface {
	Reader
	Writer
	io.Closer
}

// ConnectionInfoProvider exposes the descriptor a layer was created
// from, used by the DNS resolver and the I/O service for diagnostics.
type ConnectionInfoProvider interface {
	ConnectionInfo() (ConnectionInfo, bool)
}

// Selectable is the readiness contract a selector drives a stream
// through: register writable first, flip to readable once connected.
type Selectable interface {
	// Connected reports whether the underlying socket has completed
	// connection establishment (and, for TLS layers, handshake).
	Connected() bool

	// MakeWritable is called by the selector on the first writable
	// readiness event once Connected() is true.
	MakeWritable() error

	// MakeReadable is called by the selector on every subsequent
	// readable readiness event.
	MakeReadable() error
}

// Source is implemented by layers that own a raw file descriptor, used
// by OS-multiplexed selectors (selector.Epoll) to register/unregister
// interest. Layers without a direct descriptor (buffered, recorder) do
// not implement it, and selector.Epoll rejects them with ErrorUnsupported.
type Source interface {
	Fd() int
}

// Layer is the full capability set a stream-stack component may satisfy.
// Concrete layers need not implement Source (see above).
type Layer interface {
	ReadWriter
	ConnectionInfoProvider
	Selectable
}

// ConnectionInfo is the immutable descriptor used to materialize sockets
// and resolve DNS. BindCPU is only honored on Linux.
type ConnectionInfo struct {
	Host         string
	Port         uint16
	BindIface    *net.TCPAddr
	BindCPU      *int
	SocketConfig func(fd uintptr) error
}

func (c ConnectionInfo) String() string {
	if c.Host == "" {
		return ""
	}

	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
