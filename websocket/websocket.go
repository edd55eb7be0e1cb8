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

// Package websocket implements a single-threaded, non-blocking RFC 6455
// client: handshake state machine, incremental frame decoder, frame
// encoder with a zero masking key, and automatic Ping/Close handling.
// Grounded conceptually on original_source/src/ws/{handshake,decoder,
// encoder,mod}.rs, generalized to Go's explicit error-return style and
// the CodeError pattern used throughout this module.
package websocket

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	libstm "github.com/nabbar/wsio/stream"
)

// ReceivedCloseFrame carries the status code and UTF-8 reason the peer
// sent in its Close frame.
type ReceivedCloseFrame struct {
	Status uint16
	Reason string
}

func (e *ReceivedCloseFrame) Error() string {
	return fmt.Sprintf("the peer has sent the close frame: status code %d, body: %s", e.Status, e.Reason)
}

// Websocket wraps a stream.Layer with the handshake and frame codec,
// presenting a single ReceiveNext/ReadBatch surface that never blocks
// and never yields Ping frames or the Close echo to the caller.
type Websocket struct {
	stream     libstm.Layer
	handshaker *Handshaker
	decoder    *Decoder
	closed     bool
}

// New starts a client handshake against rawURL (ws:// or wss://) over an
// already-connected stream and begins sending the upgrade request.
func New(stream libstm.Layer, rawURL string, maxPendingBytes int) (*Websocket, error) {
	info, path, _, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	h, err := NewHandshaker(info.Host, path, maxPendingBytes)
	if err != nil {
		return nil, err
	}

	return &Websocket{stream: stream, handshaker: h, decoder: NewDecoder()}, nil
}

// Established wraps a stream.Layer that has already completed the
// upgrade handshake out of band, skipping straight to frame decoding.
func Established(stream libstm.Layer) *Websocket {
	return &Websocket{stream: stream, handshaker: CompletedHandshaker(), decoder: NewDecoder()}
}

func (w *Websocket) Closed() bool {
	return w.closed
}

// SendText queues or sends a text frame depending on handshake phase.
func (w *Websocket) SendText(fin bool, body []byte) error {
	return w.send(fin, OpText, body)
}

// SendBinary queues or sends a binary frame depending on handshake phase.
func (w *Websocket) SendBinary(fin bool, body []byte) error {
	return w.send(fin, OpBinary, body)
}

func (w *Websocket) send(fin bool, op OpCode, body []byte) error {
	if w.closed {
		return ErrorClosed.Error(nil)
	}

	if w.handshaker.Phase() != PhaseCompleted {
		return w.handshaker.Enqueue(op, fin, body)
	}

	if err := encodeFrame(w.stream, fin, op, body); err != nil {
		w.closed = true
		return err
	}

	return nil
}

func (w *Websocket) sendControl(op OpCode, body []byte) error {
	if err := encodeFrame(w.stream, true, op, body); err != nil {
		w.closed = true
		return err
	}

	return nil
}

// ReceiveNext reads and returns the first frame available, or nil if
// none is available right now. It never blocks.
func (w *Websocket) ReceiveNext() (*Frame, error) {
	if w.closed {
		return nil, ErrorClosed.Error(nil)
	}

	if w.handshaker.Phase() != PhaseCompleted {
		return nil, w.advanceHandshake()
	}

	for {
		raw, err := w.decoder.DecodeNext(w.stream)
		if err != nil {
			w.closed = true
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}

		frame, err := w.handleFrame(raw)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
	}
}

// ReadBatch performs at most one underlying read, then returns every
// user-visible frame already decodable from the buffered bytes. It
// amortizes syscall cost across many messages; prefer it over repeated
// ReceiveNext calls when draining a connection each service cycle.
func (w *Websocket) ReadBatch() ([]*Frame, error) {
	if w.closed {
		return nil, ErrorClosed.Error(nil)
	}

	if w.handshaker.Phase() != PhaseCompleted {
		return nil, w.advanceHandshake()
	}

	frames, err := w.drainDecoded()
	if err != nil {
		return frames, err
	}

	// decoder.Prime may compact or grow the underlying buffer, which
	// invalidates the Payload slices of any frame already extracted by
	// the drain above (they alias the decoder's backing array per the
	// Frame contract). Clone them now so the batch this call returns
	// stays valid as a whole, not just the frames pulled after Prime.
	cloneFramePayloads(frames)

	if err := w.decoder.Prime(w.stream); err != nil {
		w.closed = true
		return frames, err
	}

	more, err := w.drainDecoded()
	return append(frames, more...), err
}

// cloneFramePayloads copies each frame's Payload into freshly allocated
// memory, detaching it from the decoder buffer it currently aliases.
func cloneFramePayloads(frames []*Frame) {
	for _, f := range frames {
		if len(f.Payload) == 0 {
			continue
		}
		cp := make([]byte, len(f.Payload))
		copy(cp, f.Payload)
		f.Payload = cp
	}
}

func (w *Websocket) drainDecoded() ([]*Frame, error) {
	var out []*Frame

	for {
		raw, err := w.decoder.Drain()
		if err != nil {
			w.closed = true
			return out, err
		}
		if raw == nil {
			return out, nil
		}

		frame, err := w.handleFrame(raw)
		if err != nil {
			return out, err
		}
		if frame != nil {
			out = append(out, frame)
		}
	}
}

// handleFrame applies the automatic control-frame policy: Ping gets an
// immediate Pong echo and is not returned; Close gets an echo attempt,
// marks the connection closed and returns a terminal error; Pong and
// data frames pass through unchanged.
func (w *Websocket) handleFrame(raw *Frame) (*Frame, error) {
	switch raw.Op {
	case OpPing:
		if err := w.sendControl(OpPong, raw.Payload); err != nil {
			return nil, err
		}
		return nil, nil

	case OpClose:
		status, reason := parseClosePayload(raw.Payload)
		_ = w.sendControl(OpClose, raw.Payload)
		w.closed = true
		return nil, &ReceivedCloseFrame{Status: status, Reason: reason}

	default:
		return raw, nil
	}
}

func (w *Websocket) advanceHandshake() error {
	justCompleted, err := w.handshaker.Advance(w.stream)
	if err != nil {
		w.closed = true
		return err
	}

	if justCompleted {
		return w.flushPending()
	}

	return nil
}

func (w *Websocket) flushPending() error {
	for _, m := range w.handshaker.pending {
		if err := encodeFrame(w.stream, m.fin, m.op, m.body); err != nil {
			w.closed = true
			return err
		}
	}

	w.handshaker.pending = nil
	return nil
}

func parseClosePayload(payload []byte) (uint16, string) {
	if len(payload) < 2 {
		return 0, ""
	}

	status := binary.BigEndian.Uint16(payload[:2])
	reason := payload[2:]

	if !utf8.Valid(reason) {
		return status, string(utf8.RuneError)
	}

	return status, string(reason)
}
