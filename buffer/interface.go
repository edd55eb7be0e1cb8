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

// Package buffer provides a growable, contiguous byte buffer tuned for
// incremental protocol decoding: bytes are appended from a non-blocking
// io.Reader, consumed as zero-copy slices, and the live region is
// compacted to offset zero only when idle capacity can be reclaimed.
package buffer

import (
	"io"

	libsize "github.com/nabbar/wsio/size"
)

// DefaultChunk is the read size requested from the underlying stream on
// each ReadFrom call, and the minimum growth step when doubling.
const DefaultChunk = 4 * uint64(libsize.SizeKilo)

// ReadBuffer accumulates bytes from a stream and hands out zero-copy
// views into its backing slice. It is not safe for concurrent use; a
// single goroutine owns a buffer for its lifetime (see Pool).
//
// Invariant: 0 <= head <= tail <= len(inner). Slices returned by
// ConsumeNext alias the backing array and are only valid until the next
// call that compacts or grows the buffer (ReadFrom, ReadAllFrom).
type ReadBuffer interface {
	// ReadFrom reads up to Chunk() bytes from r. A zero-byte read with no
	// error is treated as WouldBlock-equivalent (stream.ErrWouldBlock
	// callers translate this); a zero-byte read with io.EOF fails with
	// ErrorEOF. The buffer grows (doubling) if a full chunk cannot fit
	// after compaction.
	ReadFrom(r io.Reader) (int, error)

	// ReadAllFrom fills the entire idle capacity in one Read call,
	// growing first if the idle capacity is smaller than Chunk().
	ReadAllFrom(r io.Reader) (int, error)

	// Available returns tail-head, the number of unconsumed bytes.
	Available() int

	// View returns the unconsumed region [head:tail). The slice aliases
	// the backing array; see the aliasing note on ReadBuffer.
	View() []byte

	// ViewLast returns the last n unconsumed bytes, or the whole
	// available region if n exceeds it.
	ViewLast(n int) []byte

	// ConsumeNext advances head by n and returns the consumed slice. It
	// fails with ErrorNothingToConsume if n > Available().
	ConsumeNext(n int) ([]byte, error)

	// ConsumeNextByte consumes and returns a single byte.
	ConsumeNextByte() (byte, error)

	// Chunk returns the read-size used by ReadFrom.
	Chunk() uint64

	// Cap returns the current backing-array capacity.
	Cap() uint64

	// Reset empties the buffer without releasing the backing array,
	// used by Pool on release.
	Reset()
}

// New allocates a ReadBuffer with the given initial capacity and chunk
// size. A zero capacity or chunk falls back to DefaultChunk.
func New(capacity, chunk uint64) ReadBuffer {
	if chunk == 0 {
		chunk = DefaultChunk
	}

	if capacity == 0 {
		capacity = chunk
	}

	return &buf{
		inner: make([]byte, capacity),
		chunk: chunk,
	}
}
