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
	"net/url"
)

// Options are optional parameters which may be sent with a request.
type Options struct {
	// JSON is marshaled to the request's body.
	JSON interface{}

	// UseNumber makes DoJSON decode numbers as json.Number, preserving the
	// distinction between integers and floats.
	UseNumber bool

	// FullCommit adds the X-Couch-Full-Commit: true header to requests
	FullCommit bool

	// Query is appended to the exiting url, if present. If the passed url
	// already contains query parameters, the values in Query are appended.
	// No merging takes place.
	Query url.Values
}
