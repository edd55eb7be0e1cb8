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

// Package endpoint defines the user-facing application contract driven
// by ioservice: build a stream stack once DNS has resolved an address,
// poll it every duty cycle, and decide whether a disconnected
// connection is worth recreating. Go generics stand in for the
// associated-type pattern the original design expresses with a trait's
// Target type.
package endpoint

import (
	"time"

	libstm "github.com/nabbar/wsio/stream"
)

// DisconnectReason explains why ioservice is tearing down a connection,
// passed to CanRecreate so the endpoint can distinguish a TTL expiry it
// chose not to veto from a genuine I/O failure.
type DisconnectReason struct {
	ttl *time.Duration
	err error
}

// AutoDisconnect builds a DisconnectReason for a TTL-driven teardown.
func AutoDisconnect(ttl time.Duration) DisconnectReason {
	return DisconnectReason{ttl: &ttl}
}

// Other builds a DisconnectReason for a teardown caused by an error
// returned from Poll or CreateTarget.
func Other(err error) DisconnectReason {
	return DisconnectReason{err: err}
}

// IsAutoDisconnect reports whether this reason originated from TTL
// expiry rather than an I/O error.
func (d DisconnectReason) IsAutoDisconnect() bool {
	return d.ttl != nil
}

// TTL returns the configured TTL when IsAutoDisconnect is true, zero
// otherwise.
func (d DisconnectReason) TTL() time.Duration {
	if d.ttl == nil {
		return 0
	}

	return *d.ttl
}

// Err returns the triggering error when IsAutoDisconnect is false, nil
// otherwise.
func (d DisconnectReason) Err() error {
	return d.err
}

// Endpoint is the entry point for application logic registered with and
// managed by ioservice.Service. T is the stream stack this endpoint
// operates on (e.g. a *websocket.Websocket over a *tlsstream.Layer).
type Endpoint[T any] interface {
	libstm.ConnectionInfoProvider

	// CreateTarget builds the stream stack now that DNS has resolved
	// addr. Returning (nil, nil) means "not ready yet"; the caller
	// re-queues this endpoint for another DNS+connect attempt.
	CreateTarget(addr string) (*T, error)

	// Poll is called once per duty cycle while the connection is alive.
	Poll(target *T) error

	// CanRecreate decides whether ioservice should reconnect after a
	// disconnect described by reason.
	CanRecreate(reason DisconnectReason) bool

	// CanAutoDisconnect vetoes TTL expiry; returning false extends the
	// TTL by one more period instead of tearing the connection down.
	CanAutoDisconnect() bool
}

// EndpointWithContext is Endpoint threaded with a user-provided context
// value shared across every call for this endpoint.
type EndpointWithContext[T any, C any] interface {
	libstm.ConnectionInfoProvider

	CreateTarget(addr string, ctx *C) (*T, error)
	Poll(target *T, ctx *C) error
	CanRecreate(reason DisconnectReason, ctx *C) bool
	CanAutoDisconnect(ctx *C) bool
}

// DefaultBehavior implements the permissive defaults (CanRecreate and
// CanAutoDisconnect both true) so an Endpoint implementation only needs
// to embed it and provide ConnectionInfo/CreateTarget/Poll.
type DefaultBehavior struct{}

func (DefaultBehavior) CanRecreate(_ DisconnectReason) bool {
	return true
}

func (DefaultBehavior) CanAutoDisconnect() bool {
	return true
}

// DefaultBehaviorWithContext is the EndpointWithContext counterpart of
// DefaultBehavior.
type DefaultBehaviorWithContext[C any] struct{}

func (DefaultBehaviorWithContext[C]) CanRecreate(_ DisconnectReason, _ *C) bool {
	return true
}

func (DefaultBehaviorWithContext[C]) CanAutoDisconnect(_ *C) bool {
	return true
}
