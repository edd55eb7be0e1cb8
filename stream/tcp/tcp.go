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

// Package tcp implements the non-blocking TCP layer of the stream stack:
// a plain net.TCPConn wrapped to translate WouldBlock-style errors into
// stream.ErrWouldBlock and to expose the Selectable/Source contracts.
package tcp

import (
	"errors"
	"net"
	"syscall"
	"time"

	libstm "github.com/nabbar/wsio/stream"
)

type conn struct {
	nc        *net.TCPConn
	info      libstm.ConnectionInfo
	connected bool
}

// Dial creates a non-blocking TCP connection described by info. The
// connect itself is performed synchronously by net.DialTCP (Go's runtime
// poller already parks the goroutine without blocking an OS thread); the
// returned layer reports Connected() true once the dial succeeds, which
// mirrors the spec's "connect returns success on EINPROGRESS" for a
// runtime that does not expose non-blocking connect() directly.
func Dial(info libstm.ConnectionInfo) (libstm.Layer, error) {
	raddr := &net.TCPAddr{IP: net.ParseIP(info.Host), Port: int(info.Port)}
	if raddr.IP == nil {
		resolved, err := net.ResolveIPAddr("ip", info.Host)
		if err != nil {
			return nil, libstm.ErrorConnect.Error(err)
		}

		raddr = &net.TCPAddr{IP: resolved.IP, Port: int(info.Port)}
	}

	d := net.Dialer{Timeout: 10 * time.Second}
	if info.BindIface != nil {
		d.LocalAddr = info.BindIface
	}

	nc, err := d.Dial("tcp", raddr.String())
	if err != nil {
		return nil, libstm.ErrorConnect.Error(err)
	}

	tc, ok := nc.(*net.TCPConn)
	if !ok {
		return nil, libstm.ErrorConnect.Error(errors.New("dialed connection is not TCP"))
	}

	_ = tc.SetNoDelay(true)
	_ = tc.SetKeepAlive(true)

	if info.SocketConfig != nil {
		if raw, e := tc.SyscallConn(); e == nil {
			_ = raw.Control(func(fd uintptr) {
				_ = info.SocketConfig(fd)
			})
		}
	}

	return &conn{nc: tc, info: info, connected: true}, nil
}

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.nc.Read(p)
	if isWouldBlock(err) {
		return n, libstm.ErrWouldBlock
	}

	return n, err
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.nc.Write(p)
	if isWouldBlock(err) {
		return n, libstm.ErrWouldBlock
	}

	return n, err
}

func (c *conn) Close() error {
	return c.nc.Close()
}

func (c *conn) ConnectionInfo() (libstm.ConnectionInfo, bool) {
	return c.info, true
}

func (c *conn) Connected() bool {
	return c.connected
}

func (c *conn) MakeWritable() error {
	return nil
}

func (c *conn) MakeReadable() error {
	return nil
}

func (c *conn) Fd() int {
	raw, err := c.nc.SyscallConn()
	if err != nil {
		return -1
	}

	var fd int
	_ = raw.Control(func(f uintptr) {
		fd = int(f)
	})

	return fd
}

func isWouldBlock(err error) bool {
	if err == nil {
		return false
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}

	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}
