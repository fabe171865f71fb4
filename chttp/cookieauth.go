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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	kivik "github.com/go-kivik/kivik/v4"
)

// CookieAuth authenticates with a CouchDB session cookie. See
// https://docs.couchdb.org/en/stable/api/server/authn.html#cookie-authentication
//
// The session is opened by the first request. When the server rejects a
// session with 401, for instance after it timed out during a long import,
// the session is opened again and the request is sent once more.
type CookieAuth struct {
	Username string `json:"name"`
	Password string `json:"password"`

	client    *Client
	transport http.RoundTripper
	mu        sync.Mutex
}

var _ Authenticator = &CookieAuth{}

// Authenticate installs the session handling transport on c.
func (a *CookieAuth) Authenticate(c *Client) error {
	a.client = c
	a.transport = baseTransport(c)
	setCookieJar(c)
	c.Transport = a
	return nil
}

// Cookie returns the current session cookie, or nil if there is none. The
// cookie lives in the client's jar, which also collects the refreshed
// cookies CouchDB returns with ordinary responses, and drops it on expiry.
func (a *CookieAuth) Cookie() *http.Cookie {
	if a.client == nil || a.client.Jar == nil {
		return nil
	}
	for _, cookie := range a.client.Jar.Cookies(a.client.dsn) {
		if cookie.Name == kivik.SessionCookieName {
			return cookie
		}
	}
	return nil
}

// RoundTrip fulfills the http.RoundTripper interface.
func (a *CookieAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	cookie, err := a.session(req.Context(), nil)
	if err != nil {
		return nil, err
	}
	res, err := a.transport.RoundTrip(withSession(req, cookie))
	if err != nil || res.StatusCode != http.StatusUnauthorized || !replayable(req) {
		return res, err
	}
	_ = res.Body.Close()
	if cookie, err = a.session(req.Context(), cookie); err != nil {
		return nil, err
	}
	retry := withSession(req, cookie)
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return a.transport.RoundTrip(retry)
}

// session returns the session cookie, logging in when there is none or when
// the current one is still the rejected cookie stale.
func (a *CookieAuth) session(ctx context.Context, stale *http.Cookie) (*http.Cookie, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cookie := a.Cookie(); cookie != nil && (stale == nil || cookie.Value != stale.Value) {
		return cookie, nil
	}
	return a.login(ctx)
}

// login posts the credentials to /_session through the underlying
// transport, and stores the resulting cookie in the client's jar.
func (a *CookieAuth) login(ctx context.Context) (*http.Cookie, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	req, err := a.client.NewRequest(ctx, http.MethodPost, "/_session", bytes.NewReader(body), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", typeJSON)
	req.Header.Set("Content-Type", typeJSON)
	res, err := a.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := ResponseError(res); err != nil {
		return nil, err
	}
	_ = res.Body.Close()
	for _, cookie := range res.Cookies() {
		if cookie.Name == kivik.SessionCookieName {
			a.client.Jar.SetCookies(a.client.dsn, []*http.Cookie{cookie})
			return cookie, nil
		}
	}
	return nil, &HTTPError{Code: http.StatusBadGateway, Reason: "no session cookie in response"}
}

// withSession returns a copy of req carrying cookie in place of any session
// cookie the client's jar already added.
func withSession(req *http.Request, cookie *http.Cookie) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Del("Cookie")
	for _, c := range req.Cookies() {
		if c.Name != kivik.SessionCookieName {
			out.AddCookie(c)
		}
	}
	out.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	return out
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}
