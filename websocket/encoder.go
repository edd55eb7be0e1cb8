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

	libstm "github.com/nabbar/wsio/stream"
)

// encodeFrame writes a client frame to w: FIN+opcode byte, mask-bit=1
// with a length byte/ext2/ext8, a 32-bit masking key of all zeros, then
// the payload unmasked. The zero mask key leaves the payload unchanged
// under XOR, skipping the per-byte masking cost while staying
// protocol-conformant as long as the peer accepts a zero mask.
func encodeFrame(w libstm.Writer, fin bool, op OpCode, body []byte) error {
	var header byte
	if fin {
		header |= finMask
	}
	header |= byte(op)

	if err := writeAll(w, []byte{header}); err != nil {
		return err
	}

	length := len(body)
	lengthByte := byte(maskMask)

	switch {
	case length <= 125:
		lengthByte |= byte(length)
		if err := writeAll(w, []byte{lengthByte}); err != nil {
			return err
		}
	case length <= 0xFFFF:
		lengthByte |= 126
		if err := writeAll(w, []byte{lengthByte}); err != nil {
			return err
		}
		var ext [2]byte
		binary.BigEndian.PutUint16(ext[:], uint16(length))
		if err := writeAll(w, ext[:]); err != nil {
			return err
		}
	default:
		lengthByte |= 127
		if err := writeAll(w, []byte{lengthByte}); err != nil {
			return err
		}
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], uint64(length))
		if err := writeAll(w, ext[:]); err != nil {
			return err
		}
	}

	var mask [4]byte
	if err := writeAll(w, mask[:]); err != nil {
		return err
	}

	if length > 0 {
		if err := writeAll(w, body); err != nil {
			return err
		}
	}

	return nil
}

// writeAll loops over successive partial writes until p is fully
// written or w returns an error. A stream.ErrWouldBlock is returned
// immediately like any other error: the caller (send) treats any failed
// write, including would-block, as fatal to the connection, matching
// the one-shot write_all semantics a non-blocking socket gives a single
// frame write.
func writeAll(w libstm.Writer, p []byte) error {
	off := 0
	for off < len(p) {
		n, err := w.Write(p[off:])
		off += n

		if err != nil {
			return err
		}
	}

	return nil
}
