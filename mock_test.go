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

import (
	"context"
	"net/http"
	"strconv"
)

// mockStore is an in-memory Store. Documents in docs are returned by Get
// and Query; BulkSave records what it was given and answers with results,
// or succeeds for every document if results is nil.
type mockStore struct {
	docs    map[string]Record
	results func([]Record) []BulkResult

	getErr, saveErr, queryErr, bulkErr error

	queried []string
	bulk    [][]Record
	saved   []Record
	deleted []string
}

var _ Store = &mockStore{}

func (s *mockStore) Get(_ context.Context, id string) (Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, &statusError{status: http.StatusNotFound, msg: "missing"}
	}
	return doc.Clone(), nil
}

func (s *mockStore) Save(_ context.Context, doc Record) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, doc)
	return nextRev(doc.Rev()), nil
}

func (s *mockStore) BulkSave(_ context.Context, docs []Record) ([]BulkResult, error) {
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	s.bulk = append(s.bulk, docs)
	if s.results != nil {
		return s.results(docs), nil
	}
	results := make([]BulkResult, len(docs))
	for i, doc := range docs {
		results[i] = BulkResult{ID: doc.ID(), Rev: nextRev(doc.Rev())}
	}
	return results, nil
}

func (s *mockStore) Query(_ context.Context, ids []string) ([]ExistingDoc, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	s.queried = append(s.queried, ids...)
	var found []ExistingDoc
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			found = append(found, ExistingDoc{ID: id, Rev: doc.Rev()})
		}
	}
	return found, nil
}

func (s *mockStore) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

// nextRev returns the revision following rev, ignoring its hash.
func nextRev(rev string) string {
	n := 0
	for i, c := range rev {
		if c == '-' {
			n, _ = strconv.Atoi(rev[:i])
			break
		}
	}
	return strconv.Itoa(n+1) + "-new"
}

// conflictOnRepeat fails, like CouchDB, every document after the first with
// a given id.
func conflictOnRepeat(docs []Record) []BulkResult {
	seen := make(map[string]bool)
	results := make([]BulkResult, len(docs))
	for i, doc := range docs {
		id := doc.ID()
		results[i].ID = id
		if seen[id] {
			results[i].Err = &statusError{status: http.StatusConflict, msg: "Document update conflict."}
			continue
		}
		seen[id] = true
		results[i].Rev = "1-new"
	}
	return results
}
