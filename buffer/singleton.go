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
	libatm "github.com/nabbar/golib/atomic"
)

// registry maps a service-owned key (typically the *ioservice.Service
// pointer as uintptr) to its Pool. One ioservice.Service drives one
// goroutine, so each registry entry is goroutine-affine even though the
// map itself tolerates concurrent Load/Store.
var registry = libatm.NewMapTyped[uintptr, Pool]()

// PoolFor returns the Pool registered for owner, creating one with the
// given chunk size on first use.
func PoolFor(owner uintptr, chunk uint64) Pool {
	if p, ok := registry.Load(owner); ok {
		return p
	}

	p := NewPool(chunk)
	p, _ = registry.LoadOrStore(owner, p)
	return p
}

// ReleasePool forgets the pool registered for owner, allowing it to be
// garbage collected once the owning service is discarded.
func ReleasePool(owner uintptr) {
	registry.Delete(owner)
}
