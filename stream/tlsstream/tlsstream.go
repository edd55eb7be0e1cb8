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

// Package tlsstream implements the non-blocking TLS layer of the stream
// stack. It wraps an inner stream.Layer (typically stream/tcp) and a
// *certificates.Config, driving the handshake incrementally and
// buffering plaintext writes attempted before it completes.
package tlsstream

import (
	"crypto/tls"
	"errors"

	libcrt "github.com/nabbar/golib/certificates"
	libstm "github.com/nabbar/wsio/stream"
)

type state int

const (
	stateHandshaking state = iota
	stateEstablished
)

type tlsLayer struct {
	inner   libstm.Layer
	cfg     *tls.Config
	conn    *tls.Conn
	state   state
	pending []byte
}

// Client wraps inner with a client-side TLS session configured by cfg for
// serverName. The handshake is not performed here; it advances
// incrementally on subsequent Read/Write calls, matching the non-blocking
// contract every stream layer provides.
func Client(inner libstm.Layer, cfg libcrt.TLSConfig, serverName string) (libstm.Layer, error) {
	if inner == nil {
		return nil, libstm.ErrorConnect.Error(errors.New("nil inner layer"))
	}

	tc := cfg.TLS(serverName)
	conn := tls.Client(readWriteCloser{inner}, tc)

	return &tlsLayer{inner: inner, cfg: tc, conn: conn, state: stateHandshaking}, nil
}

// readWriteCloser adapts a stream.Layer (whose Read/Write return
// stream.ErrWouldBlock) into the plain io.ReadWriteCloser tls.Conn
// expects, translating ErrWouldBlock into a net.Error-shaped timeout so
// tls.Conn's handshake loop retries instead of treating it as fatal.
type readWriteCloser struct {
	libstm.Layer
}

func (r readWriteCloser) Read(p []byte) (int, error) {
	n, err := r.Layer.Read(p)
	if errors.Is(err, libstm.ErrWouldBlock) {
		return n, wouldBlockNetError{}
	}

	return n, err
}

func (r readWriteCloser) Write(p []byte) (int, error) {
	n, err := r.Layer.Write(p)
	if errors.Is(err, libstm.ErrWouldBlock) {
		return n, wouldBlockNetError{}
	}

	return n, err
}

type wouldBlockNetError struct{}

func (wouldBlockNetError) Error() string   { return "stream: would block" }
func (wouldBlockNetError) Timeout() bool   { return true }
func (wouldBlockNetError) Temporary() bool { return true }

func (t *tlsLayer) driveHandshake() error {
	err := t.conn.Handshake()
	if err == nil {
		t.state = stateEstablished
		return t.flushPending()
	}

	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return libstm.ErrWouldBlock
	}

	return libstm.ErrorConnect.Error(err)
}

func (t *tlsLayer) flushPending() error {
	if len(t.pending) == 0 {
		return nil
	}

	n, err := t.conn.Write(t.pending)
	t.pending = t.pending[n:]
	return err
}

func (t *tlsLayer) Read(p []byte) (int, error) {
	if t.state == stateHandshaking {
		if err := t.driveHandshake(); err != nil {
			return 0, err
		}
	}

	n, err := t.conn.Read(p)
	if isWouldBlock(err) {
		return n, libstm.ErrWouldBlock
	}

	return n, err
}

func (t *tlsLayer) Write(p []byte) (int, error) {
	if t.state == stateHandshaking {
		t.pending = append(t.pending, p...)

		if err := t.driveHandshake(); err != nil && !errors.Is(err, libstm.ErrWouldBlock) {
			return 0, err
		}

		return len(p), nil
	}

	n, err := t.conn.Write(p)
	if isWouldBlock(err) {
		return n, libstm.ErrWouldBlock
	}

	return n, err
}

func (t *tlsLayer) Close() error {
	return t.conn.Close()
}

func (t *tlsLayer) ConnectionInfo() (libstm.ConnectionInfo, bool) {
	return t.inner.ConnectionInfo()
}

func (t *tlsLayer) Connected() bool {
	return t.state == stateEstablished && t.inner.Connected()
}

func (t *tlsLayer) MakeWritable() error {
	return t.inner.MakeWritable()
}

func (t *tlsLayer) MakeReadable() error {
	return t.inner.MakeReadable()
}

func (t *tlsLayer) Fd() int {
	if s, ok := t.inner.(libstm.Source); ok {
		return s.Fd()
	}

	return -1
}

func isWouldBlock(err error) bool {
	if err == nil {
		return false
	}

	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}

	return errors.Is(err, libstm.ErrWouldBlock)
}
