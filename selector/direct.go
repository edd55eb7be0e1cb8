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
	"sync"

	libstm "github.com/nabbar/wsio/stream"
)

// Direct never queries the OS for readiness: it hands every registered
// layer to the caller on every cycle and leaves the writable/readable
// transition to the layer's own non-blocking Read/Write, surfacing
// ErrWouldBlock the way a raw non-blocking socket would without ever
// waiting on a multiplexer. It is the only selector available on
// platforms without an Epoll implementation.
type Direct struct {
	mu   sync.Mutex
	next uint32
}

// NewDirect returns a ready-to-use Direct selector.
func NewDirect() *Direct {
	return &Direct{}
}

func (d *Direct) Register(_ libstm.Layer) (Token, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.next
	d.next++

	return Token(t), nil
}

func (d *Direct) Unregister(_ Token) error {
	return nil
}

func (d *Direct) Poll(_ map[Token]libstm.Layer) error {
	return nil
}
