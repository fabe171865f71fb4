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
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strings"
)

// ProxyAuth authenticates as a user asserted by a trusted front-end proxy.
// See https://docs.couchdb.org/en/stable/api/server/authn.html#proxy-authentication
type ProxyAuth struct {
	Username string
	// Secret, when set, is used to sign the username as X-Auth-CouchDB-Token.
	Secret string
	Roles  []string
	// Headers may rename the default X-Auth-CouchDB-* headers.
	Headers http.Header

	transport http.RoundTripper
}

var _ Authenticator = &ProxyAuth{}

func (a *ProxyAuth) header(header string) string {
	if h := a.Headers.Get(header); h != "" {
		return http.CanonicalHeaderKey(h)
	}
	return header
}

// RoundTrip fulfills the http.RoundTripper interface.
func (a *ProxyAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	if a.Secret != "" {
		h := hmac.New(sha1.New, []byte(a.Secret))
		_, _ = h.Write([]byte(a.Username))
		req.Header.Set(a.header("X-Auth-CouchDB-Token"), hex.EncodeToString(h.Sum(nil)))
	}
	req.Header.Set(a.header("X-Auth-CouchDB-UserName"), a.Username)
	req.Header.Set(a.header("X-Auth-CouchDB-Roles"), strings.Join(a.Roles, ","))
	return a.transport.RoundTrip(req)
}

// Authenticate installs the proxy headers on the client's transport.
func (a *ProxyAuth) Authenticate(c *Client) error {
	a.transport = baseTransport(c)
	c.Transport = a
	return nil
}
