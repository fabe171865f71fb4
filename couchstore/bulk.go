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
	"context"
	"net/http"

	"github.com/go-kivik/cushion"
	"github.com/go-kivik/cushion/chttp"
)

type bulkResult struct {
	ID     string `json:"id"`
	Rev    string `json:"rev"`
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// BulkSave writes docs with a single _bulk_docs request. Per-document
// failures are returned as *chttp.HTTPError in the matching result; a
// conflict has status 409.
func (s *Store) BulkSave(ctx context.Context, docs []cushion.Record) ([]cushion.BulkResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	opts := &chttp.Options{
		JSON:       map[string]interface{}{"docs": docs},
		FullCommit: s.FullCommit,
	}
	var results []bulkResult
	if _, err := s.DoJSON(ctx, http.MethodPost, s.path("_bulk_docs"), opts, &results); err != nil {
		return nil, err
	}
	out := make([]cushion.BulkResult, len(results))
	for i, r := range results {
		out[i] = cushion.BulkResult{ID: r.ID, Rev: r.Rev}
		if r.Error != "" {
			out[i].Err = &chttp.HTTPError{
				Code:   chttp.StatusForName(r.Error),
				Name:   r.Error,
				Reason: r.Reason,
			}
		}
	}
	return out, nil
}

// Query returns the current revision of each of ids that exists, using
// _all_docs. Missing and deleted documents are left out.
func (s *Store) Query(ctx context.Context, ids []string) ([]cushion.ExistingDoc, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var result struct {
		Rows []struct {
			ID    string `json:"id"`
			Error string `json:"error"`
			Value struct {
				Rev     string `json:"rev"`
				Deleted bool   `json:"deleted"`
			} `json:"value"`
		} `json:"rows"`
	}
	opts := &chttp.Options{
		JSON: map[string]interface{}{"keys": ids},
	}
	if _, err := s.DoJSON(ctx, http.MethodPost, s.path("_all_docs"), opts, &result); err != nil {
		return nil, err
	}
	existing := make([]cushion.ExistingDoc, 0, len(result.Rows))
	for _, row := range result.Rows {
		if row.Error != "" || row.Value.Deleted {
			continue
		}
		existing = append(existing, cushion.ExistingDoc{ID: row.ID, Rev: row.Value.Rev})
	}
	return existing, nil
}
