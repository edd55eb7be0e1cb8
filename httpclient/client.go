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
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	libstm "github.com/nabbar/wsio/stream"
)

// Client serializes one request at a time over rw and incrementally
// parses the matching response. It keeps no connection-pooling state;
// NewPooledTransport's Transport dials a new connection for each Client.
type Client struct {
	rw libstm.ReadWriter

	scratch [4096]byte
	raw     []byte

	headerEnd     int
	contentLength int
	done          bool
	resp          *Response
}

// NewClient wraps rw (plain TCP, TLS, or buffered) for one request at a
// time. rw is never closed by Client; the caller owns its lifetime.
func NewClient(rw libstm.ReadWriter) *Client {
	return &Client{rw: rw, headerEnd: -1, resp: &Response{}}
}

// Do serializes req as a single buffered write: request line, Host and
// custom headers, an auto-computed Content-Length when Body is set,
// then the body. Resets the response parser so a subsequent
// ReadResponse reads this request's reply, not a stale one.
func (c *Client) Do(req *Request) error {
	method := req.Method
	if method == "" {
		method = "GET"
	}
	path := req.Path
	if path == "" {
		path = "/"
	}

	var buf bytes.Buffer
	buf.WriteString(method)
	buf.WriteByte(' ')
	buf.WriteString(path)
	buf.WriteString(" HTTP/1.1\r\n")
	buf.WriteString("Host: ")
	buf.WriteString(req.Host)
	buf.WriteString("\r\n")

	for _, h := range req.Headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString("\r\n")
	}

	if len(req.Body) > 0 {
		buf.WriteString("Content-Length: ")
		buf.WriteString(strconv.Itoa(len(req.Body)))
		buf.WriteString("\r\n")
	}

	buf.WriteString("\r\n")

	if len(req.Body) > 0 {
		buf.Write(req.Body)
	}

	if _, err := c.rw.Write(buf.Bytes()); err != nil {
		return ErrorWriteRequest.Error(err)
	}

	c.resetResponse()
	return nil
}

// ReadResponse drains whatever bytes rw currently has available and
// advances the parser. It returns (nil, stream.ErrWouldBlock) — the
// same non-blocking convention every other Poll-style call in this
// module uses — until the full header block and body have arrived.
// Once a response is complete, further calls return the same *Response
// until the next Do.
func (c *Client) ReadResponse() (*Response, error) {
	if c.done {
		return c.resp, nil
	}

	n, err := c.rw.Read(c.scratch[:])
	if n > 0 {
		c.raw = append(c.raw, c.scratch[:n]...)
	}
	if err != nil && !errors.Is(err, libstm.ErrWouldBlock) {
		return nil, err
	}

	if c.headerEnd < 0 {
		if len(c.raw) > MaxHeaderBytes {
			return nil, ErrorResponseTooLarge.Error(nil)
		}

		idx := bytes.Index(c.raw, []byte("\r\n\r\n"))
		if idx < 0 {
			return nil, libstm.ErrWouldBlock
		}

		c.headerEnd = idx + 4
		if perr := c.parseHeaders(); perr != nil {
			return nil, perr
		}
	}

	total := c.headerEnd + c.contentLength
	if len(c.raw) < total {
		return nil, libstm.ErrWouldBlock
	}

	c.resp.Body = c.raw[c.headerEnd:total]
	c.done = true

	return c.resp, nil
}

func (c *Client) parseHeaders() error {
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(c.raw[:c.headerEnd])))

	statusLine, err := r.ReadLine()
	if err != nil {
		return ErrorMalformedStatusLine.Error(err)
	}

	parts := strings.SplitN(statusLine, " ", 3)
	if len(parts) < 2 {
		return ErrorMalformedStatusLine.Error(nil)
	}

	code, cerr := strconv.Atoi(parts[1])
	if cerr != nil {
		return ErrorMalformedStatusLine.Error(cerr)
	}

	hdr, herr := r.ReadMIMEHeader()
	if herr != nil && herr != io.EOF {
		return ErrorMalformedHeaders.Error(herr)
	}

	c.resp.StatusCode = code
	if len(parts) == 3 {
		c.resp.StatusText = parts[2]
	}
	c.resp.headers = hdr

	if cl := hdr.Get("Content-Length"); cl != "" {
		n, nerr := strconv.Atoi(cl)
		if nerr != nil {
			return ErrorMalformedContentLength.Error(nerr)
		}
		c.contentLength = n
	}

	return nil
}

func (c *Client) resetResponse() {
	c.raw = c.raw[:0]
	c.headerEnd = -1
	c.contentLength = 0
	c.done = false
	c.resp = &Response{}
}
