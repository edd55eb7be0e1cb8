/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package websocket_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libstm "github.com/nabbar/wsio/stream"
	libws "github.com/nabbar/wsio/websocket"
)

const wsGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// memLayer is a stream.Layer test double backed by two byte queues: one
// the websocket reads from (simulating peer->client bytes) and one it
// writes to (captured for assertions).
type memLayer struct {
	in  []byte
	out bytes.Buffer
}

func (m *memLayer) Read(p []byte) (int, error) {
	if len(m.in) == 0 {
		return 0, libstm.ErrWouldBlock
	}

	n := copy(p, m.in)
	m.in = m.in[n:]
	return n, nil
}

func (m *memLayer) Write(p []byte) (int, error) {
	return m.out.Write(p)
}

func (m *memLayer) Close() error                                   { return nil }
func (m *memLayer) ConnectionInfo() (libstm.ConnectionInfo, bool) { return libstm.ConnectionInfo{}, false }
func (m *memLayer) Connected() bool                               { return true }
func (m *memLayer) MakeWritable() error                            { return nil }
func (m *memLayer) MakeReadable() error                            { return nil }

func acceptFor(key string) string {
	sum := sha1.Sum([]byte(key + wsGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func extractKey(request string) string {
	re := regexp.MustCompile(`Sec-WebSocket-Key: (\S+)\r\n`)
	m := re.FindStringSubmatch(request)
	if m == nil {
		return ""
	}
	return m[1]
}

func writeFrame(fin bool, op byte, payload []byte) []byte {
	var buf bytes.Buffer

	var header byte
	if fin {
		header |= 0x80
	}
	header |= op
	buf.WriteByte(header)

	length := len(payload)
	switch {
	case length <= 125:
		buf.WriteByte(byte(length))
	case length <= 0xFFFF:
		buf.WriteByte(126)
		buf.WriteByte(byte(length >> 8))
		buf.WriteByte(byte(length))
	default:
		buf.WriteByte(127)
		for i := 7; i >= 0; i-- {
			buf.WriteByte(byte(length >> (8 * i)))
		}
	}

	buf.Write(payload)
	return buf.Bytes()
}

var _ = Describe("Websocket", func() {
	var layer *memLayer

	BeforeEach(func() {
		layer = &memLayer{}
	})

	Context("handshake", func() {
		It("completes on a valid 101 response and flushes queued sends", func() {
			ws, err := libws.New(layer, "ws://example.com/socket", 0)
			Expect(err).ToNot(HaveOccurred())

			_, err = ws.ReceiveNext()
			Expect(err).ToNot(HaveOccurred())

			key := extractKey(layer.out.String())
			Expect(key).ToNot(BeEmpty())

			Expect(ws.SendText(true, []byte("queued"))).To(Succeed())

			resp := "HTTP/1.1 101 Switching Protocols\r\n" +
				"Upgrade: websocket\r\n" +
				"Connection: Upgrade\r\n" +
				"Sec-WebSocket-Accept: " + acceptFor(key) + "\r\n\r\n"
			layer.in = append(layer.in, []byte(resp)...)

			_, err = ws.ReceiveNext()
			Expect(err).ToNot(HaveOccurred())
			Expect(ws.Closed()).To(BeFalse())
			Expect(layer.out.String()).To(ContainSubstring("queued"))
		})

		It("rejects a response with a mismatched Sec-WebSocket-Accept", func() {
			ws, err := libws.New(layer, "ws://example.com/socket", 0)
			Expect(err).ToNot(HaveOccurred())

			_, _ = ws.ReceiveNext()

			resp := "HTTP/1.1 101 Switching Protocols\r\n" +
				"Sec-WebSocket-Accept: bm90LXZhbGlk\r\n\r\n"
			layer.in = append(layer.in, []byte(resp)...)

			_, err = ws.ReceiveNext()
			Expect(err).To(HaveOccurred())
			Expect(ws.Closed()).To(BeTrue())
		})
	})

	Context("established connection", func() {
		It("decodes a text frame", func() {
			ws := libws.Established(layer)
			layer.in = writeFrame(true, 0x1, []byte("hello"))

			frame, err := ws.ReceiveNext()
			Expect(err).ToNot(HaveOccurred())
			Expect(frame).ToNot(BeNil())
			Expect(frame.Op).To(Equal(libws.OpText))
			Expect(frame.Fin).To(BeTrue())
			Expect(frame.Payload).To(Equal([]byte("hello")))
		})

		It("auto-replies to Ping without surfacing it, then surfaces Pong", func() {
			ws := libws.Established(layer)
			layer.in = append(writeFrame(true, 0x9, []byte("ABCD")), writeFrame(true, 0xA, []byte("ABCD"))...)

			frame, err := ws.ReceiveNext()
			Expect(err).ToNot(HaveOccurred())
			Expect(frame).ToNot(BeNil())
			Expect(frame.Op).To(Equal(libws.OpPong))

			written := layer.out.Bytes()
			Expect(written[0] & 0x0F).To(Equal(byte(0xA)))
			Expect(written[2:6]).To(Equal([]byte("ABCD")))
		})

		It("terminates on Close, echoes it, and closes for good afterwards", func() {
			ws := libws.Established(layer)
			layer.in = writeFrame(true, 0x8, []byte{0x03, 0xE8, 'b', 'y', 'e'})

			frame, err := ws.ReceiveNext()
			Expect(frame).To(BeNil())
			Expect(err).To(HaveOccurred())

			closeErr, ok := err.(*libws.ReceivedCloseFrame)
			Expect(ok).To(BeTrue())
			Expect(closeErr.Status).To(Equal(uint16(1000)))
			Expect(closeErr.Reason).To(Equal("bye"))

			Expect(ws.Closed()).To(BeTrue())

			_, err = ws.ReceiveNext()
			Expect(err).To(HaveOccurred())
		})

		It("decodes a fragmented message preserving order and fin bits", func() {
			ws := libws.Established(layer)
			layer.in = append(layer.in, writeFrame(false, 0x1, []byte("foo"))...)
			layer.in = append(layer.in, writeFrame(false, 0x0, []byte("bar"))...)
			layer.in = append(layer.in, writeFrame(true, 0x0, []byte("baz"))...)

			frames, err := ws.ReadBatch()
			Expect(err).ToNot(HaveOccurred())
			Expect(frames).To(HaveLen(3))

			Expect(frames[0].Op).To(Equal(libws.OpText))
			Expect(frames[0].Fin).To(BeFalse())
			Expect(frames[0].Payload).To(Equal([]byte("foo")))

			Expect(frames[1].Op).To(Equal(libws.OpContinuation))
			Expect(frames[1].Fin).To(BeFalse())

			Expect(frames[2].Fin).To(BeTrue())
			Expect(frames[2].Payload).To(Equal([]byte("baz")))
		})

		It("keeps a frame's Payload intact across a Prime-triggered compaction within the same ReadBatch call", func() {
			ws := libws.Established(layer)

			frame1 := writeFrame(true, 0x1, []byte("AAA"))
			frame2 := writeFrame(true, 0x1, []byte("BBBBB"))

			// A third frame that declares far more payload than it sends,
			// so draining it leaves a large run of unconsumed bytes behind
			// frame2 in the buffer — exactly the condition that forces
			// Prime's internal compact() to actually shift memory instead
			// of taking its empty-buffer fast path.
			full3 := writeFrame(true, 0x2, make([]byte, 50))
			partial3 := full3[:len(full3)-30]

			layer.in = append(layer.in, frame1...)
			layer.in = append(layer.in, frame2...)
			layer.in = append(layer.in, partial3...)

			// Primes the buffer with every byte above in one Read.
			_, err := ws.ReceiveNext()
			Expect(err).ToNot(HaveOccurred())

			// Drains frame1 from what is already buffered, leaving frame2
			// and the truncated frame3 prefix sitting in the buffer.
			first, err := ws.ReceiveNext()
			Expect(err).ToNot(HaveOccurred())
			Expect(first).ToNot(BeNil())
			Expect(first.Payload).To(Equal([]byte("AAA")))

			frames, err := ws.ReadBatch()
			Expect(err).ToNot(HaveOccurred())
			Expect(frames).To(HaveLen(1))
			Expect(frames[0].Payload).To(Equal([]byte("BBBBB")))
		})
	})

	Context("encoder", func() {
		It("writes a zero masking key and unmasked payload", func() {
			ws := libws.Established(layer)
			Expect(ws.SendText(true, []byte("hi"))).To(Succeed())

			written := layer.out.Bytes()
			Expect(written[0]).To(Equal(byte(0x81)))
			Expect(written[1]).To(Equal(byte(0x82)))
			Expect(written[2:6]).To(Equal([]byte{0, 0, 0, 0}))
			Expect(written[6:8]).To(Equal([]byte("hi")))
		})
	})
})
