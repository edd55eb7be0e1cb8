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

// Package buffered implements the fixed-capacity buffered writer layer:
// small writes (WebSocket header + mask + payload) are copied into an
// inline buffer and coalesced into one Flush syscall, the idiomatic
// substitute for the original's `[u8; N]` inline array grounded on
// ioutils/iowrapper's copy-then-flush shape.
package buffered

import (
	"fmt"

	liberr "github.com/nabbar/golib/errors"
	libstm "github.com/nabbar/wsio/stream"
)

const (
	ErrorOverflow liberr.CodeError = iota + libstm.MinPkg + 40
)

func init() {
	if liberr.ExistInMapMessage(ErrorOverflow) {
		panic(fmt.Errorf("error code collision with package golib/stream/buffered"))
	}
	liberr.RegisterIdFctMessage(ErrorOverflow, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorOverflow:
		return "buffered writer capacity exceeded"
	}

	return liberr.NullMessage
}

type writer struct {
	libstm.Layer
	buf []byte
	pos int
}

// New wraps inner with a fixed-capacity write buffer of the given size.
// Write copies into the buffer; once full (or on explicit Flush) the
// buffered bytes are written to inner in one call.
func New(inner libstm.Layer, capacity int) libstm.Layer {
	return &writer{Layer: inner, buf: make([]byte, capacity)}
}

func (w *writer) Write(p []byte) (int, error) {
	if w.pos+len(p) > len(w.buf) {
		if err := w.Flush(); err != nil {
			return 0, err
		}

		if len(p) > len(w.buf) {
			return 0, ErrorOverflow.Error(nil)
		}
	}

	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

// Flush writes the buffered bytes to the underlying layer and resets the
// cursor. It does not retry: on any error from the underlying layer,
// including stream.ErrWouldBlock, the unwritten bytes are kept at the
// front of the buffer and the error is returned.
func (w *writer) Flush() error {
	off := 0

	for off < w.pos {
		n, err := w.Layer.Write(w.buf[off:w.pos])
		off += n

		if err != nil {
			copy(w.buf, w.buf[off:w.pos])
			w.pos -= off
			return err
		}
	}

	w.pos = 0
	return nil
}
