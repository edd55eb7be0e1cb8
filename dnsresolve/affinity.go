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

package dnsresolve

type affinityKind int

const (
	affinityNone affinityKind = iota
	affinityIndex
	affinityCore
)

// Affinity selects whether Async's worker goroutine should be pinned to
// a CPU, expressed as a closed type-state rather than a raw *int so a
// caller cannot accidentally request core -1.
type Affinity struct {
	kind  affinityKind
	value int
}

// NoAffinity leaves the worker goroutine free to run on any CPU.
func NoAffinity() Affinity {
	return Affinity{kind: affinityNone}
}

// AffinityByIndex pins the worker to the index'th CPU reported by
// runtime.NumCPU, counting from zero.
func AffinityByIndex(index int) Affinity {
	return Affinity{kind: affinityIndex, value: index}
}

// AffinityByCoreID pins the worker to an explicit OS core id.
func AffinityByCoreID(coreID int) Affinity {
	return Affinity{kind: affinityCore, value: coreID}
}
