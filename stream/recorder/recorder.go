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

// Package recorder implements the recorder/replay stream layer: Recorder
// tees every inbound and outbound chunk, through an ioutils/multi
// multiplexer, to append-only files plus a sequence file of
// (seq, byte_count) records; Replay reads the recorded inbound stream
// back in sequence order for deterministic offline reprocessing.
// Grounded on ioutils/multi's tee-writer semantics and ioutils/delim's
// incremental framed-read shape.
//
// NewEncrypted/ReplayEncrypted seal every recorded chunk with crypt's
// AES-GCM Encode/Decode pair before it touches disk, so a capture taken
// against a production endpoint never leaves cleartext payloads lying
// around in _inbound.rec/_outbound.rec.
//
// NewRateLimited/NewEncryptedRateLimited open the capture files through
// file/progress instead of a plain os.File and cap the disk-write rate
// with file/bandwidth, so recording a high-throughput endpoint cannot
// starve the rest of the process of disk I/O.
package recorder

import (
	"encoding/binary"
	"io"
	"os"

	libcrp "github.com/nabbar/wsio/crypt"
	libbdw "github.com/nabbar/wsio/file/bandwidth"
	libfpg "github.com/nabbar/wsio/file/progress"
	libmlt "github.com/nabbar/golib/ioutils/multi"
	libsiz "github.com/nabbar/wsio/size"
	libstm "github.com/nabbar/wsio/stream"
)

type recorder struct {
	libstm.Layer
	inboundFile  io.WriteCloser
	outboundFile io.WriteCloser
	seqFile      *os.File
	inbound      libmlt.Multi
	outbound     libmlt.Multi
	seq          uint64
	crypto       libcrp.Crypt
}

// New wraps inner, recording every inbound read to <name>_inbound.rec,
// every outbound write to <name>_outbound.rec, and a (seq, byte_count)
// pair per inbound read to <name>_inbound_seq.rec.
func New(inner libstm.Layer, name string) (libstm.Layer, error) {
	return newRecorder(inner, name, nil, 0)
}

// NewEncrypted behaves like New, but seals every recorded chunk with
// AES-GCM under key/nonce before writing it out. The seq file still
// stores the sealed chunk length, so ReplayEncrypted with the same
// key/nonce reproduces the original plaintext boundaries.
func NewEncrypted(inner libstm.Layer, name string, key [32]byte, nonce [12]byte) (libstm.Layer, error) {
	c, err := libcrp.New(key, nonce)
	if err != nil {
		return nil, err
	}

	return newRecorder(inner, name, c, 0)
}

// NewRateLimited behaves like New, but caps the inbound/outbound capture
// files to bytesPerSecond, sleeping inside Read/Write as needed rather
// than letting a fast endpoint flood disk I/O.
func NewRateLimited(inner libstm.Layer, name string, bytesPerSecond libsiz.Size) (libstm.Layer, error) {
	return newRecorder(inner, name, nil, bytesPerSecond)
}

// NewEncryptedRateLimited combines NewEncrypted and NewRateLimited.
func NewEncryptedRateLimited(inner libstm.Layer, name string, key [32]byte, nonce [12]byte, bytesPerSecond libsiz.Size) (libstm.Layer, error) {
	c, err := libcrp.New(key, nonce)
	if err != nil {
		return nil, err
	}

	return newRecorder(inner, name, c, bytesPerSecond)
}

func newRecorder(inner libstm.Layer, name string, c libcrp.Crypt, limit libsiz.Size) (libstm.Layer, error) {
	ib, err := openCaptureFile(name+"_inbound.rec", limit)
	if err != nil {
		return nil, err
	}

	ob, err := openCaptureFile(name+"_outbound.rec", limit)
	if err != nil {
		_ = ib.Close()
		return nil, err
	}

	sf, err := os.OpenFile(name+"_inbound_seq.rec", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = ib.Close()
		_ = ob.Close()
		return nil, err
	}

	ibTee := libmlt.New()
	ibTee.AddWriter(ib)

	obTee := libmlt.New()
	obTee.AddWriter(ob)

	return &recorder{
		Layer:        inner,
		inboundFile:  ib,
		outboundFile: ob,
		seqFile:      sf,
		inbound:      ibTee,
		outbound:     obTee,
		crypto:       c,
	}, nil
}

// openCaptureFile opens name for append, wrapping it in a file/progress
// handle and registering a file/bandwidth throttle when limit is set.
func openCaptureFile(name string, limit libsiz.Size) (io.WriteCloser, error) {
	if limit == 0 {
		return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}

	fpg, err := libfpg.New(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	libbdw.New(limit).RegisterIncrement(fpg, nil)
	return fpg, nil
}

func (r *recorder) Read(p []byte) (int, error) {
	n, err := r.Layer.Read(p)
	if n > 0 {
		chunk := p[:n]
		if r.crypto != nil {
			chunk = r.crypto.Encode(chunk)
		}
		_, _ = r.inbound.Write(chunk)

		var rec [16]byte
		binary.LittleEndian.PutUint64(rec[0:8], r.seq)
		binary.LittleEndian.PutUint64(rec[8:16], uint64(len(chunk)))
		_, _ = r.seqFile.Write(rec[:])
		r.seq++
	}

	return n, err
}

func (r *recorder) Write(p []byte) (int, error) {
	n, err := r.Layer.Write(p)
	if n > 0 {
		chunk := p[:n]
		if r.crypto != nil {
			chunk = r.crypto.Encode(chunk)
		}
		_, _ = r.outbound.Write(chunk)
	}

	return n, err
}

func (r *recorder) Close() error {
	_ = r.inboundFile.Close()
	_ = r.outboundFile.Close()
	_ = r.seqFile.Close()
	return r.Layer.Close()
}

type replay struct {
	inbound *os.File
	seqFile *os.File
	closed  bool
	crypto  libcrp.Crypt
}

// Replay reads back the inbound stream recorded by Recorder, reproducing
// the exact sequence of reads (same byte boundaries) from <name>_inbound.rec
// and <name>_inbound_seq.rec.
func Replay(name string) (libstm.Layer, error) {
	return newReplay(name, nil)
}

// ReplayEncrypted reads back a capture taken with NewEncrypted. key and
// nonce must match the ones the recording was sealed with.
func ReplayEncrypted(name string, key [32]byte, nonce [12]byte) (libstm.Layer, error) {
	c, err := libcrp.New(key, nonce)
	if err != nil {
		return nil, err
	}

	return newReplay(name, c)
}

func newReplay(name string, c libcrp.Crypt) (libstm.Layer, error) {
	ib, err := os.Open(name + "_inbound.rec")
	if err != nil {
		return nil, err
	}

	sf, err := os.Open(name + "_inbound_seq.rec")
	if err != nil {
		_ = ib.Close()
		return nil, err
	}

	return &replay{inbound: ib, seqFile: sf, crypto: c}, nil
}

func (r *replay) Read(p []byte) (int, error) {
	var rec [16]byte

	_, err := io.ReadFull(r.seqFile, rec[:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, err
	}

	n := int(binary.LittleEndian.Uint64(rec[8:16]))
	if n == 0 {
		return 0, libstm.ErrWouldBlock
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r.inbound, buf); err != nil {
		return 0, err
	}

	if r.crypto != nil {
		dec, derr := r.crypto.Decode(buf)
		if derr != nil {
			return 0, derr
		}
		buf = dec
	}

	return copy(p, buf), nil
}

func (r *replay) Write(p []byte) (int, error) {
	return len(p), nil
}

func (r *replay) Close() error {
	r.closed = true
	_ = r.seqFile.Close()
	return r.inbound.Close()
}

// ConnectionInfo returns false: a replay stream has no live connection
// descriptor, and this layer reports that explicitly rather than
// returning a leaked zero-value default.
func (r *replay) ConnectionInfo() (libstm.ConnectionInfo, bool) {
	return libstm.ConnectionInfo{}, false
}

func (r *replay) Connected() bool {
	return !r.closed
}

func (r *replay) MakeWritable() error {
	return nil
}

func (r *replay) MakeReadable() error {
	return nil
}
