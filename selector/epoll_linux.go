//go:build linux

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

package selector

import (
	"sync"

	"golang.org/x/sys/unix"

	libstm "github.com/nabbar/wsio/stream"
)

// Epoll drives readiness from the Linux epoll(7) facility: layers are
// registered for EPOLLOUT first (connect completion), then switched to
// EPOLLIN once writable, mirroring a raw connect/read readiness cycle.
// Only layers implementing stream.Source (exposing a raw file
// descriptor) can be registered; wrapping layers without a descriptor
// of their own (buffered, recorder) are rejected with ErrorUnsupported.
type Epoll struct {
	mu sync.Mutex

	epfd   int
	events []unix.EpollEvent

	nextToken uint32
	fdByToken map[Token]int
	tokenByFd map[int]Token
}

// NewEpoll creates a fresh epoll instance sized for up to cap events per
// Poll call.
func NewEpoll(cap int) (*Epoll, error) {
	if cap <= 0 {
		cap = 1024
	}

	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, ErrorCreate.Error(err)
	}

	return &Epoll{
		epfd:      fd,
		events:    make([]unix.EpollEvent, cap),
		fdByToken: make(map[Token]int),
		tokenByFd: make(map[int]Token),
	}, nil
}

// Close releases the underlying epoll file descriptor.
func (e *Epoll) Close() error {
	return unix.Close(e.epfd)
}

func (e *Epoll) Register(layer libstm.Layer) (Token, error) {
	src, ok := layer.(libstm.Source)
	if !ok {
		return 0, ErrorUnsupported.Error(nil)
	}

	fd := src.Fd()

	ev := unix.EpollEvent{
		Events: unix.EPOLLOUT,
		Fd:     int32(fd),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return 0, ErrorRegister.Error(err)
	}

	t := Token(e.nextToken)
	e.nextToken++
	e.fdByToken[t] = fd
	e.tokenByFd[fd] = t

	return t, nil
}

func (e *Epoll) Unregister(token Token) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fd, ok := e.fdByToken[token]
	if !ok {
		return nil
	}

	delete(e.fdByToken, token)
	delete(e.tokenByFd, fd)

	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return ErrorUnregister.Error(err)
	}

	return nil
}

func (e *Epoll) Poll(nodes map[Token]libstm.Layer) error {
	n, err := unix.EpollWait(e.epfd, e.events, 0)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}

		return ErrorPoll.Error(err)
	}

	for i := 0; i < n; i++ {
		ev := e.events[i]
		fd := int(ev.Fd)

		e.mu.Lock()
		token, ok := e.tokenByFd[fd]
		e.mu.Unlock()

		if !ok {
			continue
		}

		layer, ok := nodes[token]
		if !ok {
			return ErrorNodeNotFound.Error(nil)
		}

		if ev.Events&unix.EPOLLOUT != 0 && layer.Connected() {
			if err = layer.MakeWritable(); err != nil {
				return err
			}

			mev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: ev.Fd}

			e.mu.Lock()
			_ = unix.EpollCtl(e.epfd, unix.EPOLL_CTL_MOD, fd, &mev)
			e.mu.Unlock()
		}

		if ev.Events&unix.EPOLLIN != 0 {
			if err = layer.MakeReadable(); err != nil {
				return err
			}
		}
	}

	return nil
}
