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

package dns_mapper

import (
	"context"
	"net/http"
	"sync"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	libtls "github.com/nabbar/golib/certificates"
)

// dmp is the concrete implementation of DNSMapper.
// d holds the hostname mappings (keyed by *dp, see part.go); z is the
// resolved-address cache used by SearchWithCache; the mapping methods
// themselves (Add, Get, Del, Len, Walk, WalkDP, Clean, Search,
// SearchWithCache) live in collection.go.
type dmp struct {
	d *sync.Map
	z *sync.Map
	c libatm.Value[*Config]
	t libatm.Value[*http.Transport]
	f libtls.FctRootCACert
	i FuncMessage
	n libatm.Value[context.CancelFunc]
	x libatm.Value[context.Context]
}

func (o *dmp) config() *Config {
	if cfg := o.c.Load(); cfg != nil {
		return cfg
	}

	return &Config{}
}

func (o *dmp) configDialerTimeout() time.Duration {
	if cfg := o.config(); cfg.Transport.TimeoutGlobal == 0 {
		return 30 * time.Second
	} else {
		return cfg.Transport.TimeoutGlobal.Time()
	}
}

func (o *dmp) configDialerKeepAlive() time.Duration {
	if cfg := o.config(); cfg.Transport.TimeoutKeepAlive == 0 {
		return 15 * time.Second
	} else {
		return cfg.Transport.TimeoutKeepAlive.Time()
	}
}

func (o *dmp) CacheHas(endpoint string) bool {
	_, l := o.z.Load(endpoint)
	return l
}

func (o *dmp) CacheGet(endpoint string) string {
	if i, l := o.z.Load(endpoint); !l {
		return ""
	} else if v, k := i.(string); !k {
		return ""
	} else {
		return v
	}
}

func (o *dmp) CacheSet(endpoint, ip string) {
	o.z.Store(endpoint, ip)
}

// Message forwards a log/trace line to the callback registered at New.
func (o *dmp) Message(msg string) {
	if o.i != nil {
		o.i(msg)
	}
}

// GetConfig returns the configuration currently in use by this mapper.
func (o *dmp) GetConfig() Config {
	return *o.config()
}

// RegisterTransport overrides the cached http.Transport used by DefaultTransport/DefaultClient.
func (o *dmp) RegisterTransport(t *http.Transport) {
	o.t.Store(t)
}

// TimeCleaner starts a background goroutine that periodically recycles idle
// connections on the default transport. It runs until ctx is cancelled or
// Close is called.
func (o *dmp) TimeCleaner(ctx context.Context, dur time.Duration) {
	if dur < 5*time.Second {
		dur = 5 * time.Minute
	}

	cctx, cancel := context.WithCancel(ctx)
	o.x.Store(cctx)
	o.n.Store(cancel)

	go func() {
		var tck = time.NewTicker(dur)
		defer tck.Stop()

		for {
			select {
			case <-tck.C:
				o.DefaultTransport().CloseIdleConnections()
			case <-cctx.Done():
				return
			}
		}
	}()
}

// Close stops the cleaner goroutine and closes the idle connections of the cached transport.
func (o *dmp) Close() error {
	if c := o.n.Load(); c != nil {
		c()
	}

	if t := o.t.Load(); t != nil {
		t.CloseIdleConnections()
	}

	return nil
}
