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

// Package chttp provides a minimal HTTP client for talking to a CouchDB
// server.
package chttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const typeJSON = "application/json"

// Client represents a client connection. It embeds an *http.Client
type Client struct {
	// UserAgents is appended to set the User-Agent header. Typically it should
	// contain pairs of product name and version.
	UserAgents []string

	*http.Client

	rawDSN string
	dsn    *url.URL
	auth   Authenticator
}

// New returns a connection to a remote CouchDB server. If credentials are
// included in the URL, they are used to authenticate using CookieAuth. To use
// a different mechanism, omit the credentials and call Authenticate.
func New(dsn string) (*Client, error) {
	dsnURL, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	user := dsnURL.User
	dsnURL.User = nil
	c := &Client{
		Client: &http.Client{},
		dsn:    dsnURL,
		rawDSN: dsn,
	}
	if user != nil {
		password, _ := user.Password()
		if err := c.Authenticate(&CookieAuth{
			Username: user.Username(),
			Password: password,
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseDSN(dsn string) (*url.URL, error) {
	if dsn == "" {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: "no URL specified"}
	}
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	dsnURL, err := url.Parse(dsn)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	if dsnURL.Path == "" {
		dsnURL.Path = "/"
	}
	return dsnURL, nil
}

// DSN returns the unparsed DSN used to connect.
func (c *Client) DSN() string {
	return c.rawDSN
}

// Authenticate installs a as the client's authentication mechanism,
// replacing any earlier one.
func (c *Client) Authenticate(a Authenticator) error {
	if err := a.Authenticate(c); err != nil {
		return err
	}
	c.auth = a
	return nil
}

// url resolves path, which may carry a query string, against the DSN. Path
// segments that were escaped by the caller (see EncodeDocID) stay escaped.
func (c *Client) url(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	u := *c.dsn
	u.Path = strings.TrimSuffix(c.dsn.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawPath = strings.TrimSuffix(c.dsn.EscapedPath(), "/") + "/" + strings.TrimPrefix(ref.EscapedPath(), "/")
	u.RawQuery = ref.RawQuery
	return &u, nil
}

// NewRequest returns a new *http.Request to the CouchDB server, and the
// specified path. The host, schema, etc, of the specified path are ignored.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader, opts *Options) (*http.Request, error) {
	reqURL, err := c.url(path)
	if err != nil {
		return nil, err
	}
	if opts != nil && len(opts.Query) > 0 {
		q := reqURL.Query()
		for k, v := range opts.Query {
			q[k] = append(q[k], v...)
		}
		reqURL.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	req.URL = reqURL
	req.Header.Add("User-Agent", c.userAgent())
	return req, nil
}

func (c *Client) userAgent() string {
	if len(c.UserAgents) == 0 {
		return "cushion"
	}
	return strings.Join(c.UserAgents, " ")
}

// DoReq does an HTTP request. An error is returned only if there was an error
// processing the request. In particular, an error status code, such as 400
// or 500, does _not_ cause an error to be returned.
func (c *Client) DoReq(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	body, err := requestBody(opts)
	if err != nil {
		return nil, err
	}
	req, err := c.NewRequest(ctx, method, path, body, opts)
	if err != nil {
		return nil, err
	}
	setHeaders(req, opts)

	trace := ContextClientTrace(ctx)
	if trace != nil {
		trace.request(req)
	}
	start := time.Now()
	response, err := c.Do(req)
	if trace != nil {
		trace.done(req, response, err, time.Since(start))
	}
	return response, err
}

// requestBody returns a *bytes.Reader, so that http.NewRequest sets GetBody
// and CookieAuth can replay the request after renewing a session.
func requestBody(opts *Options) (io.Reader, error) {
	if opts == nil || opts.JSON == nil {
		return nil, nil
	}
	buf, err := json.Marshal(opts.JSON)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	return bytes.NewReader(buf), nil
}

// DoError is the same as DoReq(), followed by checking the response error. If
// an error is returned, the response body has been closed.
func (c *Client) DoError(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	res, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return res, err
	}
	if err := ResponseError(res); err != nil {
		return res, err
	}
	return res, nil
}

// DoJSON combines DoReq() and, ResponseError(), then unmarshals the response
// body into i, and closes the body.
func (c *Client) DoJSON(ctx context.Context, method, path string, opts *Options, i interface{}) (*http.Response, error) {
	res, err := c.DoError(ctx, method, path, opts)
	if err != nil {
		return res, err
	}
	defer func() { _ = res.Body.Close() }()
	if i == nil {
		return res, nil
	}
	dec := json.NewDecoder(res.Body)
	if opts != nil && opts.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(i); err != nil {
		return res, &HTTPError{Code: http.StatusBadGateway, Reason: err.Error()}
	}
	return res, nil
}

func setHeaders(req *http.Request, opts *Options) {
	req.Header.Set("Accept", typeJSON)
	if req.Body != nil && req.Body != http.NoBody {
		req.Header.Set("Content-Type", typeJSON)
	}
	if opts != nil && opts.FullCommit {
		req.Header.Set("X-Couch-Full-Commit", "true")
	}
}

// GetRev extracts the revision from the response's Etag header, if found.
// If not, it falls back to reading the revision from the _rev field of the
// document itself, then from the rev field of a write response.
func GetRev(resp *http.Response) (string, error) {
	if err := ResponseError(resp); err != nil {
		return "", err
	}
	rev, ok := getRevFromHeader(resp)
	if ok {
		return rev, nil
	}
	if resp.Body == nil || resp.Request == nil || resp.Request.Method == http.MethodHead {
		return "", errors.New("no ETag header found")
	}
	var body struct {
		Rev  string `json:"rev"`
		XRev string `json:"_rev"`
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && err != io.EOF {
		return "", errors.Wrap(err, "decode rev")
	}
	switch {
	case body.XRev != "":
		return body.XRev, nil
	case body.Rev != "":
		return body.Rev, nil
	}
	return "", errors.New("no ETag header found")
}

func getRevFromHeader(resp *http.Response) (string, bool) {
	etag := resp.Header.Get("ETag")
	if etag == "" {
		// Some proxies don't canonicalize the header name.
		if v := resp.Header["ETag"]; len(v) > 0 {
			etag = v[0]
		}
	}
	if etag == "" {
		return "", false
	}
	return strings.Trim(etag, `"`), true
}
