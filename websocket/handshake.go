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

package websocket

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	libbuf "github.com/nabbar/wsio/buffer"
	libstm "github.com/nabbar/wsio/stream"
)

// Phase is the handshake's position in NotStarted -> PendingRequest ->
// PendingResponse -> Completed.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhasePendingRequest
	PhasePendingResponse
	PhaseCompleted
)

// requestBufferSize is the fixed upper bound for a serialized upgrade
// request, matching the stack-allocated array the reference client uses.
const requestBufferSize = 256

// MaxPendingBytes is the default memory cap on messages queued by the
// user before the handshake completes.
const MaxPendingBytes = 1 << 20

const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

type pendingMessage struct {
	op   OpCode
	fin  bool
	body []byte
}

// Handshaker drives the HTTP/1.1 upgrade handshake incrementally, never
// blocking: each call to Advance performs at most one Read or Write and
// reports progress via its Phase.
type Handshaker struct {
	phase Phase

	request     [requestBufferSize]byte
	requestLen  int
	requestSent int

	response libbuf.ReadBuffer
	key      string

	pending     []pendingMessage
	pendingSize int
	maxPending  int
}

// NewHandshaker builds the upgrade request for path/host and starts in
// PhasePendingRequest. maxPending of 0 uses MaxPendingBytes.
func NewHandshaker(host, path string, maxPending int) (*Handshaker, error) {
	if maxPending <= 0 {
		maxPending = MaxPendingBytes
	}

	key, err := generateNonce()
	if err != nil {
		return nil, err
	}

	h := &Handshaker{
		phase:      PhasePendingRequest,
		response:   libbuf.New(0, 0),
		key:        key,
		maxPending: maxPending,
	}

	req := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nUpgrade: websocket\r\nConnection: upgrade\r\nSec-WebSocket-Key: %s\r\nSec-WebSocket-Version: 13\r\n\r\n", path, host, key)
	if len(req) > requestBufferSize {
		return nil, ErrorProtocol.Error(nil)
	}

	h.requestLen = copy(h.request[:], req)
	return h, nil
}

// CompletedHandshaker returns a Handshaker already in PhaseCompleted, for
// callers that establish the websocket state out of band (tests, a
// custom frame source).
func CompletedHandshaker() *Handshaker {
	return &Handshaker{phase: PhaseCompleted}
}

func (h *Handshaker) Phase() Phase {
	return h.phase
}

// Enqueue queues a user message sent before the handshake completes. It
// fails with ErrorHandshakeQueueFull once the queued payload bytes
// exceed maxPending.
func (h *Handshaker) Enqueue(op OpCode, fin bool, body []byte) error {
	h.pendingSize += len(body)
	if h.pendingSize > h.maxPending {
		return ErrorHandshakeQueueFull.Error(nil)
	}

	h.pending = append(h.pending, pendingMessage{op: op, fin: fin, body: body})
	return nil
}

// Advance performs at most one read or write towards completing the
// handshake. It returns justCompleted=true exactly once, on the call
// that observes the 101 Switching Protocols response, so the caller can
// flush the pending queue in FIFO order before handing control to the
// frame decoder.
func (h *Handshaker) Advance(stream libstm.ReadWriter) (justCompleted bool, err error) {
	switch h.phase {
	case PhaseNotStarted:
		return false, ErrorProtocol.Error(nil)

	case PhasePendingRequest:
		for h.requestSent < h.requestLen {
			n, werr := stream.Write(h.request[h.requestSent:h.requestLen])
			h.requestSent += n

			if werr == libstm.ErrWouldBlock {
				return false, nil
			}
			if werr != nil {
				return false, werr
			}
		}

		h.phase = PhasePendingResponse
		return false, nil

	case PhasePendingResponse:
		_, rerr := h.response.ReadFrom(stream)
		if rerr == libstm.ErrWouldBlock {
			return false, nil
		}
		if rerr != nil {
			return false, rerr
		}

		available := h.response.Available()
		if available < 4 || !bytes.Equal(h.response.ViewLast(4), []byte("\r\n\r\n")) {
			return false, nil
		}

		if err := h.validateResponse(h.response.View()); err != nil {
			return false, err
		}

		h.phase = PhaseCompleted
		return true, nil

	default: // PhaseCompleted
		return false, nil
	}
}

func (h *Handshaker) validateResponse(raw []byte) error {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	if err != nil {
		return ErrorHandshakeRejected.Error(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		return ErrorHandshakeRejected.Error(nil)
	}

	expected := acceptHash(h.key)
	if resp.Header.Get("Sec-WebSocket-Accept") != expected {
		return ErrorHandshakeAcceptMismatch.Error(nil)
	}

	return nil
}

func acceptHash(key string) string {
	sum := sha1.Sum([]byte(key + websocketGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func generateNonce() (string, error) {
	var raw [16]byte
	if _, err := io.ReadFull(rand.Reader, raw[:]); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(raw[:]), nil
}
