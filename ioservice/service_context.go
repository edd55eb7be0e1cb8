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

type pendingEntryCtx[T any, C any] struct {
	handle    Handle
	ep        libep.EndpointWithContext[T, C]
	ctx       *C
	query     libdns.Query
	queriedAt time.Time
	notBefore time.Time
}

type nodeStateCtx[T any, C any] struct {
	handle Handle
	ep     libep.EndpointWithContext[T, C]
	ctx    *C
	target *T
	layer  libstm.Layer

	// disconnectAt is the fixed deadline past which the node becomes
	// eligible for auto-disconnect, set once at connect time and pushed
	// out by AutoDisconnectTTL each time CanAutoDisconnect vetoes a
	// sweep. It is a connection-lifetime deadline, not an idle timer:
	// successful polls never touch it.
	disconnectAt time.Time
}

// ServiceWithContext is the context-carrying counterpart of Service, for
// endpoints whose CreateTarget/Poll/CanRecreate/CanAutoDisconnect need a
// caller-supplied value (connection pool, metrics sink, credentials)
// threaded through every call instead of captured in the endpoint itself.
type ServiceWithContext[T any, C any, PT interface {
	*T
	libstm.Layer
}] struct {
	mu sync.Mutex

	sel      libsel.Selector
	resolver libdns.Resolver
	log      liblog.Logger

	AutoDisconnectTTL time.Duration
	RequeueBackoff    time.Duration
	DNSTimeout        time.Duration

	nextHandle  uint64
	lastAdmitAt time.Time

	pending []*pendingEntryCtx[T, C]
	active  *pendingEntryCtx[T, C]

	nodes    map[libsel.Token]*nodeStateCtx[T, C]
	byHandle map[Handle]libsel.Token
}

// NewServiceWithContext mirrors NewService for context-carrying endpoints.
func NewServiceWithContext[T any, C any, PT interface {
	*T
	libstm.Layer
}](sel libsel.Selector, resolver libdns.Resolver, log liblog.Logger) *ServiceWithContext[T, C, PT] {
	if log == nil {
		log = liblog.GetDefault()
	}

	return &ServiceWithContext[T, C, PT]{
		sel:      sel,
		resolver: resolver,
		log:      log,
		nodes:    make(map[libsel.Token]*nodeStateCtx[T, C]),
		byHandle: make(map[Handle]libsel.Token),
	}
}

// Register enqueues ep bound to ctx for admission and returns its Handle.
func (s *ServiceWithContext[T, C, PT]) Register(ep libep.EndpointWithContext[T, C], ctx *C) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextHandle++
	h := Handle(s.nextHandle)
	s.pending = append(s.pending, &pendingEntryCtx[T, C]{handle: h, ep: ep, ctx: ctx})

	return h
}

// Active reports whether h currently backs a connected node.
func (s *ServiceWithContext[T, C, PT]) Active(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byHandle[h]
	return ok
}

// Dispatch runs action against the live target and context behind h.
func (s *ServiceWithContext[T, C, PT]) Dispatch(h Handle, action func(target *T, ctx *C) error) error {
	s.mu.Lock()
	tok, ok := s.byHandle[h]
	if !ok {
		s.mu.Unlock()
		return ErrorNotActive.Error(nil)
	}
	ns := s.nodes[tok]
	s.mu.Unlock()

	return action(ns.target, ns.ctx)
}

// Len returns the number of currently connected nodes.
func (s *ServiceWithContext[T, C, PT]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.nodes)
}

// Poll runs one cycle of the service, identical in shape to Service.Poll.
func (s *ServiceWithContext[T, C, PT]) Poll() error {
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

func (s *ServiceWithContext[T, C, PT]) dnsTimeout() time.Duration {
	if s.DNSTimeout <= 0 {
		return defaultDNSTimeout
	}
	return s.DNSTimeout
}

func (s *ServiceWithContext[T, C, PT]) admitPending(now time.Time) {
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

func (s *ServiceWithContext[T, C, PT]) driveAdmission(now time.Time) {
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

	target, cerr := a.ep.CreateTarget(addrs[0].String(), a.ctx)
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

	ns := &nodeStateCtx[T, C]{handle: a.handle, ep: a.ep, ctx: a.ctx, target: target, layer: layer}
	if s.AutoDisconnectTTL > 0 {
		ns.disconnectAt = now.Add(s.AutoDisconnectTTL)
	}
	s.nodes[token] = ns
	s.byHandle[a.handle] = token

	s.log.Entry(liblog.DebugLevel, "ioservice: endpoint connected").
		FieldAdd("handle", uint64(a.handle)).Log()
}

func (s *ServiceWithContext[T, C, PT]) requeue(a *pendingEntryCtx[T, C], now time.Time) {
	a.query = nil
	a.notBefore = now.Add(s.RequeueBackoff)
	s.pending = append(s.pending, a)
}

func (s *ServiceWithContext[T, C, PT]) layerMap() map[libsel.Token]libstm.Layer {
	m := make(map[libsel.Token]libstm.Layer, len(s.nodes))
	for tok, ns := range s.nodes {
		m[tok] = ns.layer
	}
	return m
}

func (s *ServiceWithContext[T, C, PT]) sweepTTL(now time.Time) {
	if s.AutoDisconnectTTL <= 0 {
		return
	}

	for tok, ns := range s.nodes {
		if now.Before(ns.disconnectAt) {
			continue
		}
		if !ns.ep.CanAutoDisconnect(ns.ctx) {
			ns.disconnectAt = ns.disconnectAt.Add(s.AutoDisconnectTTL)
			continue
		}
		s.teardown(tok, ns, libep.AutoDisconnect(s.AutoDisconnectTTL))
	}
}

func (s *ServiceWithContext[T, C, PT]) pollActive(now time.Time) {
	for tok, ns := range s.nodes {
		if !ns.layer.Connected() {
			continue
		}
		if err := ns.ep.Poll(ns.target, ns.ctx); err != nil {
			s.teardown(tok, ns, libep.Other(err))
			continue
		}
	}
}

func (s *ServiceWithContext[T, C, PT]) teardown(tok libsel.Token, ns *nodeStateCtx[T, C], reason libep.DisconnectReason) {
	_ = s.sel.Unregister(tok)
	_ = ns.layer.Close()
	delete(s.nodes, tok)
	delete(s.byHandle, ns.handle)

	s.log.Entry(liblog.DebugLevel, "ioservice: endpoint disconnected").
		FieldAdd("handle", uint64(ns.handle)).ErrorAdd(true, reason.Err()).Log()

	if ns.ep.CanRecreate(reason, ns.ctx) {
		s.pending = append(s.pending, &pendingEntryCtx[T, C]{handle: ns.handle, ep: ns.ep, ctx: ns.ctx})
		return
	}

	s.log.Entry(liblog.ErrorLevel, "ioservice: endpoint reported it cannot be recreated").
		FieldAdd("handle", uint64(ns.handle)).ErrorAdd(true, ErrorUnrecoverable.Error(nil)).Log()
	panic(ErrorUnrecoverable.Error(nil))
}
