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
package cushion

import "context"

// Store is the document database the importer and editor write to.
type Store interface {
	// Get returns the document with the given id.
	Get(ctx context.Context, id string) (Record, error)
	// Save creates or updates a single document and returns its new
	// revision.
	Save(ctx context.Context, doc Record) (string, error)
	// BulkSave writes docs in one request. The returned results are in the
	// same order as docs; a failure of an individual document is reported in
	// its result, not as the returned error.
	BulkSave(ctx context.Context, docs []Record) ([]BulkResult, error)
	// Query returns the current revision of each of ids that exists. Missing
	// and deleted documents are omitted.
	Query(ctx context.Context, ids []string) ([]ExistingDoc, error)
	// Delete removes the current revision of a document.
	Delete(ctx context.Context, id string) error
}

// ExistingDoc identifies the current revision of a stored document.
type ExistingDoc struct {
	ID  string
	Rev string
}

// BulkResult is the outcome of writing one document of a bulk write.
type BulkResult struct {
	ID  string
	Rev string
	// Err is non-nil if the document was not written. Conflicts carry
	// status 409.
	Err error
}
