// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package chttp

import (
	"context"
	"net/http"
	"time"
)

type clientTraceKey struct{}

// ClientTrace holds hooks run around every request made with a context
// carrying it. Any hook may be nil. Hooks must not read or close bodies.
type ClientTrace struct {
	// Request is called just before the request is sent.
	Request func(*http.Request)

	// Response is called once the response headers have arrived, with the
	// time the round trip took.
	Response func(*http.Response, time.Duration)

	// Failure is called instead of Response when no response was received.
	Failure func(*http.Request, error, time.Duration)
}

// WithClientTrace returns a copy of ctx carrying trace. A nil trace returns
// ctx unchanged.
func WithClientTrace(ctx context.Context, trace *ClientTrace) context.Context {
	if trace == nil {
		return ctx
	}
	return context.WithValue(ctx, clientTraceKey{}, trace)
}

// ContextClientTrace returns the ClientTrace carried by ctx, or nil.
func ContextClientTrace(ctx context.Context) *ClientTrace {
	trace, _ := ctx.Value(clientTraceKey{}).(*ClientTrace)
	return trace
}

func (t *ClientTrace) request(req *http.Request) {
	if t.Request != nil {
		t.Request(req)
	}
}

func (t *ClientTrace) done(req *http.Request, res *http.Response, err error, elapsed time.Duration) {
	switch {
	case err != nil || res == nil:
		if t.Failure != nil {
			t.Failure(req, err, elapsed)
		}
	case t.Response != nil:
		t.Response(res, elapsed)
	}
}
