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

package buffer

import (
	"io"
)

type buf struct {
	inner []byte
	head  int
	tail  int
	chunk uint64
}

func (b *buf) Chunk() uint64 {
	return b.chunk
}

func (b *buf) Cap() uint64 {
	return uint64(len(b.inner))
}

func (b *buf) Available() int {
	return b.tail - b.head
}

func (b *buf) View() []byte {
	return b.inner[b.head:b.tail]
}

func (b *buf) ViewLast(n int) []byte {
	if n > b.Available() {
		n = b.Available()
	}

	return b.inner[b.tail-n : b.tail]
}

func (b *buf) ConsumeNext(n int) ([]byte, error) {
	if n > b.Available() {
		return nil, ErrorNothingToConsume.Error(nil)
	}

	s := b.inner[b.head : b.head+n]
	b.head += n
	return s, nil
}

func (b *buf) ConsumeNextByte() (byte, error) {
	s, err := b.ConsumeNext(1)
	if err != nil {
		return 0, err
	}

	return s[0], nil
}

func (b *buf) Reset() {
	b.head = 0
	b.tail = 0
}

// compact moves the live region to offset zero when head > 0 and some
// data remains unread; a fully-drained buffer just resets both cursors.
func (b *buf) compact() {
	if b.head == 0 {
		return
	}

	if b.head == b.tail {
		b.head = 0
		b.tail = 0
		return
	}

	n := copy(b.inner, b.inner[b.head:b.tail])
	b.head = 0
	b.tail = n
}

// grow doubles the backing array until at least need bytes of idle
// capacity are available past tail.
func (b *buf) grow(need uint64) {
	for uint64(len(b.inner)-b.tail) < need {
		next := make([]byte, len(b.inner)*2)
		copy(next, b.inner[:b.tail])
		b.inner = next
	}
}

func (b *buf) ensure(need uint64) {
	b.compact()

	if uint64(len(b.inner)-b.tail) < need {
		b.grow(need)
	}
}

func (b *buf) ReadFrom(r io.Reader) (int, error) {
	b.ensure(b.chunk)

	n, err := r.Read(b.inner[b.tail : b.tail+int(b.chunk)])
	if n > 0 {
		b.tail += n
	}

	if n == 0 && err == io.EOF {
		return 0, ErrorEOF.Error(err)
	}

	if err == io.EOF {
		return n, nil
	}

	return n, err
}

func (b *buf) ReadAllFrom(r io.Reader) (int, error) {
	b.ensure(b.chunk)

	idle := uint64(len(b.inner) - b.tail)
	n, err := r.Read(b.inner[b.tail : b.tail+int(idle)])
	if n > 0 {
		b.tail += n
	}

	if n == 0 && err == io.EOF {
		return 0, ErrorEOF.Error(err)
	}

	if err == io.EOF {
		return n, nil
	}

	return n, err
}
