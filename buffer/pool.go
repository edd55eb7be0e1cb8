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

// Pool hands out previously-released buffers to a single owning
// goroutine. It is not safe for concurrent use across goroutines — each
// ioservice.Service instance (one goroutine) owns its own Pool, matching
// the "thread-local" pool the spec describes (there are no OS threads in
// the Go runtime to bind to, so goroutine-affine ownership is the
// substitute).
type Pool interface {
	// Acquire returns the first released buffer with capacity >= want,
	// or allocates a fresh one if none qualifies.
	Acquire(want uint64) ReadBuffer

	// Release returns b to the pool after resetting it.
	Release(b ReadBuffer)
}

type pool struct {
	chunk uint64
	free  []ReadBuffer
}

// NewPool creates an empty Pool whose allocated buffers use chunk as
// their read size (DefaultChunk if zero).
func NewPool(chunk uint64) Pool {
	if chunk == 0 {
		chunk = DefaultChunk
	}

	return &pool{chunk: chunk}
}

func (p *pool) Acquire(want uint64) ReadBuffer {
	for i, b := range p.free {
		if b.Cap() >= want {
			p.free = append(p.free[:i], p.free[i+1:]...)
			return b
		}
	}

	return New(want, p.chunk)
}

func (p *pool) Release(b ReadBuffer) {
	b.Reset()
	p.free = append(p.free, b)
}
