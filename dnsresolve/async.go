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
	"net"
	"sync"

	libstm "github.com/nabbar/wsio/stream"
)

type dnsJob struct {
	host  string
	port  uint16
	reply chan dnsResult
}

type dnsResult struct {
	addrs []net.Addr
	err   error
}

// Async hands every lookup to a dedicated worker goroutine over a
// bounded channel, so the calling goroutine's duty cycle never blocks
// on getaddrinfo. Queries poll their own reply channel and surface
// stream.ErrWouldBlock until the worker answers.
type Async struct {
	mapper Mapper
	jobs   chan dnsJob

	closeOnce sync.Once
	done      chan struct{}
}

// NewAsync starts the worker goroutine and returns an Async resolver.
// queueSize bounds how many in-flight lookups may be queued before
// NewQuery starts rejecting with ErrorWorkerClosed; callers should
// retry on the next duty cycle. affinity optionally pins the worker to
// a CPU (Linux only; a no-op elsewhere).
func NewAsync(mapper Mapper, queueSize int, affinity Affinity) *Async {
	if queueSize <= 0 {
		queueSize = 64
	}

	a := &Async{
		mapper: mapper,
		jobs:   make(chan dnsJob, queueSize),
		done:   make(chan struct{}),
	}

	go a.run(affinity)

	return a
}

func (a *Async) run(affinity Affinity) {
	_ = applyAffinity(affinity)

	for {
		select {
		case job, ok := <-a.jobs:
			if !ok {
				return
			}

			addrs, err := resolve(a.mapper, job.host, job.port)
			job.reply <- dnsResult{addrs: addrs, err: err}
		case <-a.done:
			for {
				select {
				case job := <-a.jobs:
					addrs, err := resolve(a.mapper, job.host, job.port)
					job.reply <- dnsResult{addrs: addrs, err: err}
				default:
					return
				}
			}
		}
	}
}

func (a *Async) NewQuery(host string, port uint16) (Query, error) {
	if len(host) > MaxInlineHostname {
		return nil, ErrorHostnameTooLong.Error(nil)
	}

	select {
	case <-a.done:
		return nil, ErrorWorkerClosed.Error(nil)
	default:
	}

	reply := make(chan dnsResult, 1)

	select {
	case a.jobs <- dnsJob{host: host, port: port, reply: reply}:
		return &asyncQuery{reply: reply}, nil
	case <-a.done:
		return nil, ErrorWorkerClosed.Error(nil)
	default:
		return nil, ErrorWorkerClosed.Error(nil)
	}
}

// Close stops the worker goroutine. In-flight queries whose job was
// already accepted still complete; queries submitted after Close fail
// with ErrorWorkerClosed.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		close(a.done)
	})

	return nil
}

type asyncQuery struct {
	reply  chan dnsResult
	result *dnsResult
}

func (q *asyncQuery) Poll() ([]net.Addr, error) {
	if q.result != nil {
		return q.result.addrs, q.result.err
	}

	select {
	case r := <-q.reply:
		q.result = &r
		return r.addrs, r.err
	default:
		return nil, libstm.ErrWouldBlock
	}
}
