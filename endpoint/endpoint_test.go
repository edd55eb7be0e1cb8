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

package endpoint_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libep "github.com/nabbar/wsio/endpoint"
	libstm "github.com/nabbar/wsio/stream"
)

type fakeTarget struct {
	polls int
}

type fakeEndpoint struct {
	libep.DefaultBehavior
	info libstm.ConnectionInfo
}

func (f *fakeEndpoint) ConnectionInfo() (libstm.ConnectionInfo, bool) {
	return f.info, true
}

func (f *fakeEndpoint) CreateTarget(_ string) (*fakeTarget, error) {
	return &fakeTarget{}, nil
}

func (f *fakeEndpoint) Poll(target *fakeTarget) error {
	target.polls++
	return nil
}

var _ = Describe("DisconnectReason", func() {
	It("reports an auto disconnect with its ttl", func() {
		r := libep.AutoDisconnect(5 * time.Second)
		Expect(r.IsAutoDisconnect()).To(BeTrue())
		Expect(r.TTL()).To(Equal(5 * time.Second))
		Expect(r.Err()).To(BeNil())
	})

	It("reports an error-driven disconnect", func() {
		boom := errors.New("boom")
		r := libep.Other(boom)
		Expect(r.IsAutoDisconnect()).To(BeFalse())
		Expect(r.TTL()).To(Equal(time.Duration(0)))
		Expect(r.Err()).To(Equal(boom))
	})
})

var _ = Describe("DefaultBehavior", func() {
	It("allows recreation and auto disconnect by default", func() {
		var e libep.Endpoint[fakeTarget] = &fakeEndpoint{info: libstm.ConnectionInfo{Host: "example.com", Port: 80}}

		Expect(e.CanRecreate(libep.Other(errors.New("boom")))).To(BeTrue())
		Expect(e.CanAutoDisconnect()).To(BeTrue())

		target, err := e.CreateTarget("93.184.216.34:80")
		Expect(err).ToNot(HaveOccurred())
		Expect(target).ToNot(BeNil())

		Expect(e.Poll(target)).To(Succeed())
		Expect(target.polls).To(Equal(1))
	})
})
