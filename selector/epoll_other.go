//go:build !linux

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

package selector

import (
	libstm "github.com/nabbar/wsio/stream"
)

// Epoll is unavailable outside Linux. NewEpoll always fails with
// ErrorUnsupported; callers should fall back to Direct.
type Epoll struct{}

func NewEpoll(_ int) (*Epoll, error) {
	return nil, ErrorUnsupported.Error(nil)
}

func (e *Epoll) Close() error {
	return nil
}

func (e *Epoll) Register(_ libstm.Layer) (Token, error) {
	return 0, ErrorUnsupported.Error(nil)
}

func (e *Epoll) Unregister(_ Token) error {
	return ErrorUnsupported.Error(nil)
}

func (e *Epoll) Poll(_ map[Token]libstm.Layer) error {
	return ErrorUnsupported.Error(nil)
}
