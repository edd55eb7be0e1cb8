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
	"encoding/binary"
	"time"

	libbuf "github.com/nabbar/wsio/buffer"
	libstm "github.com/nabbar/wsio/stream"
)

type decodeState int

const (
	stateHeader decodeState = iota
	statePayloadLen
	stateExt2
	stateExt8
	statePayload
)

// Decoder is the incremental frame state machine described in the
// protocol §4.3.2: one decode_next call performs at most one underlying
// read and returns every frame fully buffered at that point.
type Decoder struct {
	buffer  libbuf.ReadBuffer
	state   decodeState
	ts      int64
	hasTS   bool
	fin     bool
	opCode  OpCode
	payload int
}

func NewDecoder() *Decoder {
	return &Decoder{buffer: libbuf.New(0, 0)}
}

// DecodeNext drains whatever frames are already buffered, then performs
// at most one Read on stream before returning. It never blocks: a
// stream.ErrWouldBlock from the read is swallowed and nil/nil is
// returned, meaning "no frame available right now".
func (d *Decoder) DecodeNext(stream libstm.Reader) (*Frame, error) {
	frame, err := d.Drain()
	if err != nil || frame != nil {
		return frame, err
	}

	if err := d.Prime(stream); err != nil {
		return nil, err
	}

	return nil, nil
}

// Drain extracts one frame from data already buffered, performing no IO.
// It returns nil, nil when the buffered bytes do not yet form a
// complete frame.
func (d *Decoder) Drain() (*Frame, error) {
	for {
		frame, progressed, err := d.step()
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
		if progressed {
			continue
		}
		return nil, nil
	}
}

// Prime performs exactly one Read on stream, growing the buffer first if
// needed. A stream.ErrWouldBlock is swallowed; any other error (notably
// ErrorEOF from the underlying buffer on a closed stream) is returned.
func (d *Decoder) Prime(stream libstm.Reader) error {
	_, err := d.buffer.ReadFrom(stream)
	d.hasTS = false

	if err == libstm.ErrWouldBlock {
		return nil
	}

	return err
}

// step performs at most one state transition using only buffered data.
// It returns (frame, progressed, err): progressed is true when the state
// machine advanced and more buffered data might still yield a frame.
func (d *Decoder) step() (*Frame, bool, error) {
	switch d.state {
	case stateHeader:
		if d.buffer.Available() == 0 {
			return nil, false, nil
		}

		b, err := d.buffer.ConsumeNextByte()
		if err != nil {
			return nil, false, err
		}

		if b&(rsv1Mask|rsv2Mask|rsv3Mask) != 0 {
			return nil, false, ErrorProtocol.Error(nil)
		}

		d.fin = (b & finMask) != 0
		d.opCode = OpCode(b & opCodeMask)
		d.state = statePayloadLen
		return nil, true, nil

	case statePayloadLen:
		if d.buffer.Available() == 0 {
			return nil, false, nil
		}

		b, err := d.buffer.ConsumeNextByte()
		if err != nil {
			return nil, false, err
		}

		if b&maskMask != 0 {
			return nil, false, ErrorProtocol.Error(nil)
		}

		length := b & payloadLengthMask
		switch {
		case length <= 125:
			d.payload = int(length)
			d.state = statePayload
		case length == 126:
			d.state = stateExt2
		default:
			d.state = stateExt8
		}

		return nil, true, nil

	case stateExt2:
		if d.buffer.Available() < 2 {
			return nil, false, nil
		}

		raw, err := d.buffer.ConsumeNext(2)
		if err != nil {
			return nil, false, err
		}

		d.payload = int(binary.BigEndian.Uint16(raw))
		d.state = statePayload
		return nil, true, nil

	case stateExt8:
		if d.buffer.Available() < 8 {
			return nil, false, nil
		}

		raw, err := d.buffer.ConsumeNext(8)
		if err != nil {
			return nil, false, err
		}

		d.payload = int(binary.BigEndian.Uint64(raw))
		d.state = statePayload
		return nil, true, nil

	case statePayload:
		if d.buffer.Available() < d.payload {
			return nil, false, nil
		}

		if !d.hasTS {
			d.ts = time.Now().UnixNano()
			d.hasTS = true
		}

		payload, err := d.buffer.ConsumeNext(d.payload)
		if err != nil {
			return nil, false, err
		}

		frame := &Frame{Timestamp: d.ts, Op: d.opCode, Fin: d.fin, Payload: payload}
		d.state = stateHeader
		return frame, false, nil
	}

	return nil, false, nil
}
