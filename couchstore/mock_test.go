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

package couchstore

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-kivik/cushion/chttp"
)

type customTransport func(*http.Request) (*http.Response, error)

var _ http.RoundTripper = customTransport(nil)

func (c customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return c(req)
}

func newCustomStore(fn func(*http.Request) (*http.Response, error)) *Store {
	client, err := chttp.New("http://example.com/")
	if err != nil {
		panic(err)
	}
	client.Client.Transport = customTransport(fn)
	return &Store{Client: client, dbName: "testdb"}
}

func newTestStore(resp *http.Response, err error) *Store {
	return newCustomStore(func(req *http.Request) (*http.Response, error) {
		if resp != nil {
			resp.Request = req
		}
		return resp, err
	})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        http.Header{"Content-Type": {"application/json"}},
		ContentLength: int64(len(body)),
		Body:          Body(body),
	}
}

func Body(str string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(str))
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}
