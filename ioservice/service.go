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

// Package ioservice drives a pool of endpoints through a single-threaded,
// non-blocking poll loop: it admits pending endpoints one at a time behind
// a DNS resolution step, hands live connections to a selector for
// readiness, sweeps connections past their TTL deadline, and polls every
// connected endpoint once per cycle. Nothing in this package blocks; a
// caller drives it by calling Poll repeatedly (typically from a single
// dedicated goroutine, or cooperatively from an event loop).
package ioservice

import (
	"errors"
	"sync"
	"time"

	libdns "github.com/nabbar/wsio/dnsresolve"
	libep "github.com/nabbar/wsio/endpoint"
	liblog "github.com/nabbar/golib/logger"
	libsel "github.com/nabbar/wsio/selector"
	libstm "github.com/nabbar/wsio/stream"
)

// admitThrottle is the minimum delay between two successive endpoint
// admissions, so a burst of registrations does not open a flood of
// sockets/DNS queries within a single cycle.
const admitThrottle = 1 * time.Second

// defaultDNSTimeout bounds how long a single DNS resolution may stay
// in flight before it is abandoned and the endpoint is requeued.
const defaultDNSTimeout = 5 * time.Second

// Handle identifies a registered endpoint for its whole lifetime,
// independent of the selector.Token assigned to whatever connection
// currently backs it (a recreated endpoint keeps its Handle across
// reconnects, but is assigned a fresh Token each time).
type Handle uint64

type pendingEntry[T any] struct {
	handle    Handle
	ep        libep.Endpoint[T]
	query     libdns.Query
	queriedAt time.Time
	notBefore time.Time
}

type nodeState[T any] struct {
	handle Handle
	ep     libep.Endpoint[T]
	target *T
	layer  libstm.Layer

	// disconnectAt is the fixed deadline past which the node becomes
	// eligible for auto-disconnect, set once at connect time and pushed
	// out by AutoDisconnectTTL each time CanAutoDisconnect vetoes a
	// sweep. It is a connection-lifetime deadline, not an idle timer:
	// successful polls never touch it.
	disconnectAt time.Time
}

// Service orchestrates endpoints of a single target type T. PT pins the
// pointer receiver (*T) that must satisfy stream.Layer, the idiomatic
// substitute for the original design's "target implements the stream
// trait" bound since Go generics cannot express that a type parameter's
// pointer satisfies an interface without naming the pointer itself.
type Service[T any, PT interface {
	*T
	libstm.Layer
}] struct {
	mu sync.Mutex

	sel      libsel.Selector
	resolver libdns.Resolver
	log      liblog.Logger

	// AutoDisconnectTTL, when greater than zero, disconnects a node this
	// long after it connected, whether or not its polls succeed, subject
	// to the endpoint's CanAutoDisconnect veto (each veto adds one TTL).
	AutoDisconnectTTL time.Duration

	// RequeueBackoff delays the next admission attempt of an endpoint
	// whose CreateTarget returned (nil, nil) ("not ready yet, try a
	// fresh DNS query later"). Zero means eligible again next cycle,
	// subject to the 1-second admission throttle.
	RequeueBackoff time.Duration

	// DNSTimeout bounds how long a DNS query may remain in flight
	// before it is abandoned. Defaults to 5 seconds when zero.
	DNSTimeout time.Duration

	nextHandle  uint64
	lastAdmitAt time.Time

	pending []*pendingEntry[T]
	active  *pendingEntry[T]

	nodes    map[libsel.Token]*nodeState[T]
	byHandle map[Handle]libsel.Token
}

// NewService builds a Service driving endpoints through sel using
// resolver for DNS lookups. A nil log falls back to logger.GetDefault().
func NewService[T any, PT interface {
	*T
	libstm.Layer
}](sel libsel.Selector, resolver libdns.Resolver, log liblog.Logger) *Service[T, PT] {
	if log == nil {
		log = liblog.GetDefault()
	}

	return &Service[T, PT]{
		sel:      sel,
		resolver: resolver,
		log:      log,
		nodes:    make(map[libsel.Token]*nodeState[T]),
		byHandle: make(map[Handle]libsel.Token),
	}
}

// Register enqueues ep for admission and returns the Handle it will be
// known by for its whole lifetime, across reconnects.
func (s *Service[T, PT]) Register(ep libep.Endpoint[T]) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextHandle++
	h := Handle(s.nextHandle)
	s.pending = append(s.pending, &pendingEntry[T]{handle: h, ep: ep})

	return h
}

// Active reports whether h currently backs a connected node.
func (s *Service[T, PT]) Active(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byHandle[h]
	return ok
}

// Dispatch runs action against the live target behind h. It returns
// ErrorNotActive if h has no connected node right now (still pending,
// mid-admission, or torn down).
func (s *Service[T, PT]) Dispatch(h Handle, action func(target *T) error) error {
	s.mu.Lock()
	tok, ok := s.byHandle[h]
	if !ok {
		s.mu.Unlock()
		return ErrorNotActive.Error(nil)
	}
	ns := s.nodes[tok]
	s.mu.Unlock()

	return action(ns.target)
}

// Len returns the number of currently connected nodes.
func (s *Service[T, PT]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.nodes)
}

// Poll runs one cycle of the service: admit one pending endpoint (DNS
// resolution may span several cycles), drive readiness through the
// selector, sweep nodes past their TTL deadline, then poll every connected
// endpoint once.
func (s *Service[T, PT]) Poll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	s.admitPending(now)

	if s.active != nil {
		s.driveAdmission(now)
	}

	if err := s.sel.Poll(s.layerMap()); err != nil {
		return err
	}

	s.sweepTTL(now)
	s.pollActive(now)

	return nil
}

func (s *Service[T, PT]) dnsTimeout() time.Duration {
	if s.DNSTimeout <= 0 {
		return defaultDNSTimeout
	}
	return s.DNSTimeout
}

func (s *Service[T, PT]) admitPending(now time.Time) {
	if s.active != nil || len(s.pending) == 0 {
		return
	}
	if now.Sub(s.lastAdmitAt) < admitThrottle {
		return
	}

	head := s.pending[0]
	if !head.notBefore.IsZero() && now.Before(head.notBefore) {
		return
	}

	s.pending = s.pending[1:]
	s.lastAdmitAt = now

	info, ok := head.ep.ConnectionInfo()
	if !ok {
		s.log.Entry(liblog.ErrorLevel, "ioservice: endpoint has no connection info to resolve").
			FieldAdd("handle", uint64(head.handle)).ErrorAdd(true, ErrorNoConnectionInfo.Error(nil)).Log()
		return
	}

	q, err := s.resolver.NewQuery(info.Host, info.Port)
	if err != nil {
		s.log.Entry(liblog.ErrorLevel, "ioservice: dns query creation failed").
			FieldAdd("handle", uint64(head.handle)).ErrorAdd(true, err).Log()
		s.requeue(head, now)
		return
	}

	head.query = q
	head.queriedAt = now
	s.active = head
}

func (s *Service[T, PT]) driveAdmission(now time.Time) {
	a := s.active

	addrs, err := a.query.Poll()
	if errors.Is(err, libstm.ErrWouldBlock) {
		if now.Sub(a.queriedAt) > s.dnsTimeout() {
			s.log.Entry(liblog.ErrorLevel, "ioservice: dns resolution exceeded its time budget").
				FieldAdd("handle", uint64(a.handle)).ErrorAdd(true, ErrorDNSTimedOut.Error(nil)).Log()
			s.requeue(a, now)
			s.active = nil
		}
		return
	}
	if err != nil {
		s.log.Entry(liblog.ErrorLevel, "ioservice: dns resolution failed").
			FieldAdd("handle", uint64(a.handle)).ErrorAdd(true, err).Log()
		s.requeue(a, now)
		s.active = nil
		return
	}

	target, cerr := a.ep.CreateTarget(addrs[0].String())
	s.active = nil

	if cerr != nil {
		s.log.Entry(liblog.ErrorLevel, "ioservice: create target failed").
			FieldAdd("handle", uint64(a.handle)).ErrorAdd(true, cerr).Log()
		return
	}
	if target == nil {
		a.query = nil
		a.notBefore = now.Add(s.RequeueBackoff)
		s.pending = append(s.pending, a)
		return
	}

	var layer libstm.Layer = PT(target)

	token, rerr := s.sel.Register(layer)
	if rerr != nil {
		s.log.Entry(liblog.ErrorLevel, "ioservice: selector registration failed").
			FieldAdd("handle", uint64(a.handle)).ErrorAdd(true, rerr).Log()
		_ = layer.Close()
		return
	}

	ns := &nodeState[T]{handle: a.handle, ep: a.ep, target: target, layer: layer}
	if s.AutoDisconnectTTL > 0 {
		ns.disconnectAt = now.Add(s.AutoDisconnectTTL)
	}
	s.nodes[token] = ns
	s.byHandle[a.handle] = token

	s.log.Entry(liblog.DebugLevel, "ioservice: endpoint connected").
		FieldAdd("handle", uint64(a.handle)).Log()
}

func (s *Service[T, PT]) requeue(a *pendingEntry[T], now time.Time) {
	a.query = nil
	a.notBefore = now.Add(s.RequeueBackoff)
	s.pending = append(s.pending, a)
}

func (s *Service[T, PT]) layerMap() map[libsel.Token]libstm.Layer {
	m := make(map[libsel.Token]libstm.Layer, len(s.nodes))
	for tok, ns := range s.nodes {
		m[tok] = ns.layer
	}
	return m
}

func (s *Service[T, PT]) sweepTTL(now time.Time) {
	if s.AutoDisconnectTTL <= 0 {
		return
	}

	for tok, ns := range s.nodes {
		if now.Before(ns.disconnectAt) {
			continue
		}
		if !ns.ep.CanAutoDisconnect() {
			ns.disconnectAt = ns.disconnectAt.Add(s.AutoDisconnectTTL)
			continue
		}
		s.teardown(tok, ns, libep.AutoDisconnect(s.AutoDisconnectTTL))
	}
}

func (s *Service[T, PT]) pollActive(now time.Time) {
	for tok, ns := range s.nodes {
		if !ns.layer.Connected() {
			continue
		}
		if err := ns.ep.Poll(ns.target); err != nil {
			s.teardown(tok, ns, libep.Other(err))
			continue
		}
	}
}

func (s *Service[T, PT]) teardown(tok libsel.Token, ns *nodeState[T], reason libep.DisconnectReason) {
	_ = s.sel.Unregister(tok)
	_ = ns.layer.Close()
	delete(s.nodes, tok)
	delete(s.byHandle, ns.handle)

	s.log.Entry(liblog.DebugLevel, "ioservice: endpoint disconnected").
		FieldAdd("handle", uint64(ns.handle)).ErrorAdd(true, reason.Err()).Log()

	if ns.ep.CanRecreate(reason) {
		s.pending = append(s.pending, &pendingEntry[T]{handle: ns.handle, ep: ns.ep})
		return
	}

	s.log.Entry(liblog.ErrorLevel, "ioservice: endpoint reported it cannot be recreated").
		FieldAdd("handle", uint64(ns.handle)).ErrorAdd(true, ErrorUnrecoverable.Error(nil)).Log()
	panic(ErrorUnrecoverable.Error(nil))
}
