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

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Blocking resolves every query with a synchronous getaddrinfo call on
// the calling goroutine, the first time Poll is invoked for that query.
// Suited to setups where a single duty cycle stall for a DNS round trip
// is acceptable.
type Blocking struct {
	mapper Mapper
}

// NewBlocking returns a Blocking resolver. mapper may be nil to skip
// the override lookup entirely.
func NewBlocking(mapper Mapper) *Blocking {
	return &Blocking{mapper: mapper}
}

func (b *Blocking) NewQuery(host string, port uint16) (Query, error) {
	if len(host) > MaxInlineHostname {
		return nil, ErrorHostnameTooLong.Error(nil)
	}

	return &blockingQuery{mapper: b.mapper, host: host, port: port}, nil
}

type blockingQuery struct {
	mapper Mapper
	host   string
	port   uint16
	addrs  []net.Addr
	resolved bool
}

func (q *blockingQuery) Poll() ([]net.Addr, error) {
	if q.resolved {
		return q.addrs, nil
	}

	addrs, err := resolve(q.mapper, q.host, q.port)
	if err != nil {
		return nil, err
	}

	q.addrs = addrs
	q.resolved = true

	return q.addrs, nil
}

// resolve consults mapper for a host:port override before falling back
// to net.DefaultResolver, and truncates the result to MaxAddresses.
func resolve(mapper Mapper, host string, port uint16) ([]net.Addr, error) {
	target := net.JoinHostPort(host, strconv.Itoa(int(port)))

	if mapper != nil {
		if override := mapper.Get(target); override != "" {
			target = override
		}
	}

	h, p, err := net.SplitHostPort(target)
	if err != nil {
		return nil, ErrorResolve.Error(err)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(context.Background(), h)
	if err != nil {
		return nil, ErrorResolve.Error(err)
	}

	if len(ips) == 0 {
		return nil, ErrorResolve.Error(fmt.Errorf("no address found for %s", h))
	}

	if len(ips) > MaxAddresses {
		ips = ips[:MaxAddresses]
	}

	addrs := make([]net.Addr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, &net.TCPAddr{IP: ip.IP, Port: mustAtoi(p), Zone: ip.Zone})
	}

	return addrs, nil
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
