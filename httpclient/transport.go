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

package httpclient

import (
	"context"

	htcdns "github.com/nabbar/wsio/httpcli/dns-mapper"
)

// Transport hands out one Client per dialed connection, sharing the
// caller's DNSMapper for hostname overrides instead of opening sockets
// through net/http's own dialer. It mirrors httpcli.GetClient's
// "ask the mapper to dial" shape, but returns a raw stream.ReadWriter
// client rather than an *http.Client, since this component shares the
// connection with the rest of the non-blocking stream stack instead of
// owning its own transport.
type Transport struct {
	mapper htcdns.DNSMapper
}

// NewPooledTransport builds a Transport backed by mapper.
func NewPooledTransport(mapper htcdns.DNSMapper) *Transport {
	return &Transport{mapper: mapper}
}

// Dial resolves and connects to address over network (typically "tcp"),
// returning a Client ready for Do/ReadResponse.
func (t *Transport) Dial(ctx context.Context, network, address string) (*Client, error) {
	conn, err := t.mapper.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	return NewClient(conn), nil
}
