//go:build linux

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

package ktls

import (
	"golang.org/x/sys/unix"

	libstm "github.com/nabbar/wsio/stream"
)

const (
	solTLS    = 282 // unix.SOL_TLS
	tcpULP    = 31  // unix.TCP_ULP
	tlsTX     = 1   // unix.TLS_TX
	tlsRX     = 2   // unix.TLS_RX
)

type layer struct {
	libstm.Layer
	fd    int
	state State
}

// New enables the "tls" TCP_ULP on inner's socket and then checks, via
// SOL_TLS getsockopt, that the kernel reports both TX and RX offload. It
// does not push TLS keys into the kernel and does not flush buffered
// plaintext; the state is set straight to Ready, and I/O still goes
// through inner.
func New(inner libstm.Layer) (libstm.Layer, error) {
	src, ok := inner.(libstm.Source)
	if !ok {
		return nil, ErrorUnsupported.Error(nil)
	}

	fd := src.Fd()

	if err := unix.SetsockoptString(fd, unix.SOL_TCP, tcpULP, "tls"); err != nil {
		return nil, ErrorUnsupported.Error(err)
	}

	l := &layer{Layer: inner, fd: fd, state: StateHandshake}
	l.state = StateDrain
	l.state = StateReady

	if !l.offloadEnabled() {
		return nil, ErrorOffloadNotEnabled.Error(nil)
	}

	return l, nil
}

func (l *layer) offloadEnabled() bool {
	_, errTX := unix.GetsockoptString(l.fd, solTLS, tlsTX)
	_, errRX := unix.GetsockoptString(l.fd, solTLS, tlsRX)
	return errTX == nil && errRX == nil
}

func (l *layer) Fd() int {
	return l.fd
}
