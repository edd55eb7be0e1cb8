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

// Package ktls implements the kernel-TLS offload layer. It is only
// functional on linux (see ktls_linux.go); other platforms get the
// fail-fast stub in ktls_other.go, per the ambient policy of refusing a
// silent no-op when a layer cannot honor its contract.
package ktls

import (
	"fmt"

	liberr "github.com/nabbar/golib/errors"
	libstm "github.com/nabbar/wsio/stream"
)

const (
	// ErrorUnsupported is returned by New on platforms without kernel-TLS
	// support.
	ErrorUnsupported liberr.CodeError = iota + libstm.MinPkg + 80
	ErrorOffloadNotEnabled
)

func init() {
	if liberr.ExistInMapMessage(ErrorUnsupported) {
		panic(fmt.Errorf("error code collision with package golib/stream/ktls"))
	}
	liberr.RegisterIdFctMessage(ErrorUnsupported, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorUnsupported:
		return "kernel tls is not supported on this platform"
	case ErrorOffloadNotEnabled:
		return "kernel did not report both send and receive tls offload enabled"
	}

	return liberr.NullMessage
}

// State mirrors the Connecting -> Handshake -> Drain -> Ready state
// machine the kernel-TLS layer drives before handing I/O to the kernel.
type State int

const (
	StateConnecting State = iota
	StateHandshake
	StateDrain
	StateReady
)
