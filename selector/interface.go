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

// Package selector decides when the I/O service is allowed to call a
// layer's MakeWritable/MakeReadable transitions. Direct is a portable
// no-op fallback; Epoll drives those transitions from real kernel
// readiness events on Linux.
package selector

import (
	libstm "github.com/nabbar/wsio/stream"
)

// Token identifies a registered layer with a given Selector instance.
// Tokens are not comparable across Selector instances.
type Token uint32

// Selector is the registration and readiness-polling contract driven by
// the I/O service's duty cycle, once per cycle, never blocking.
type Selector interface {
	// Register allocates a Token for layer. Implementations that drive
	// readiness from OS events subscribe for writable readiness only;
	// MakeReadable subscription happens after the first MakeWritable.
	Register(layer libstm.Layer) (Token, error)

	// Unregister releases any OS-level interest held for token. Safe to
	// call on a token whose layer already closed itself.
	Unregister(token Token) error

	// Poll performs at most one non-blocking readiness check and calls
	// MakeWritable/MakeReadable on whichever of nodes are ready. nodes
	// must contain an entry for every token currently registered.
	Poll(nodes map[Token]libstm.Layer) error
}
