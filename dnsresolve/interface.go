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

// Package dnsresolve resolves a host:port pair into concrete socket
// addresses for ioservice, either synchronously on the calling
// goroutine (Blocking) or on a dedicated worker goroutine polled for
// readiness the same way a non-blocking socket is (Async). Both
// implementations consult an optional dnsmapper override table before
// falling back to the standard resolver.
package dnsresolve

import (
	"net"
)

// MaxAddresses bounds how many resolved addresses a query keeps; this
// mirrors the original design's fixed-capacity result vector and
// avoids an amplification vector where a hostile or misconfigured
// record set would otherwise grow without limit.
const MaxAddresses = 32

// MaxInlineHostname is the hostname length kept inline in a query
// before it would need to spill to a heap allocation. NewQuery rejects
// longer hostnames outright rather than silently falling back to an
// allocation, keeping the cost of a query predictable.
const MaxInlineHostname = 64

// Query is a single in-flight or completed resolution, polled once per
// ioservice duty cycle.
type Query interface {
	// Poll returns the resolved addresses once ready. Returns
	// (nil, stream.ErrWouldBlock) while resolution is still pending
	// (Async only; Blocking never returns ErrWouldBlock).
	Poll() ([]net.Addr, error)
}

// Resolver creates Query instances for a host:port pair.
type Resolver interface {
	NewQuery(host string, port uint16) (Query, error)
}

// Mapper is the subset of dnsmapper.DNSMapper consulted before falling
// back to the standard resolver. Declared locally so this package does
// not need to import the http-transport-flavored dnsmapper package
// just to shell out a lookup.
type Mapper interface {
	Get(from string) string
}
