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

// Package couchstore stores cushion records in a CouchDB database.
package couchstore

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/go-kivik/cushion"
	"github.com/go-kivik/cushion/chttp"
)

// Store is a cushion.Store backed by a single CouchDB database.
type Store struct {
	*chttp.Client
	dbName string

	// FullCommit asks the server to sync writes to disk before responding.
	FullCommit bool
}

var _ cushion.Store = &Store{}

// New returns a store for the database dbName on the server client talks to.
func New(client *chttp.Client, dbName string) (*Store, error) {
	if client == nil {
		return nil, missingArg("client")
	}
	if dbName == "" {
		return nil, missingArg("dbName")
	}
	return &Store{Client: client, dbName: dbName}, nil
}

// DBName returns the name of the database.
func (s *Store) DBName() string {
	return s.dbName
}

func (s *Store) path(path string) string {
	if path == "" {
		return url.PathEscape(s.dbName)
	}
	return url.PathEscape(s.dbName) + "/" + strings.TrimPrefix(path, "/")
}

func missingArg(arg string) error {
	return &chttp.HTTPError{Code: http.StatusBadRequest, Reason: arg + " required"}
}

// Get fetches a document. Numbers are decoded as json.Number, so integers
// and floats remain distinguishable.
func (s *Store) Get(ctx context.Context, docID string) (cushion.Record, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	var doc cushion.Record
	_, err := s.DoJSON(ctx, http.MethodGet, s.path(chttp.EncodeDocID(docID)), &chttp.Options{UseNumber: true}, &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Save creates or updates doc, and sets its _rev to the new revision. A
// document without an _id is given a random one.
func (s *Store) Save(ctx context.Context, doc cushion.Record) (string, error) {
	if doc == nil {
		return "", missingArg("doc")
	}
	docID := doc.ID()
	if docID == "" {
		docID = newID()
		doc.SetID(docID)
	}
	var result struct {
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}
	opts := &chttp.Options{
		JSON:       doc,
		FullCommit: s.FullCommit,
	}
	if _, err := s.DoJSON(ctx, http.MethodPut, s.path(chttp.EncodeDocID(docID)), opts, &result); err != nil {
		return "", err
	}
	if result.ID != docID {
		return result.Rev, errors.Errorf("modified document ID (%s) does not match that requested (%s)", result.ID, docID)
	}
	doc.SetRev(result.Rev)
	return result.Rev, nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Rev returns the current revision of a document.
func (s *Store) Rev(ctx context.Context, docID string) (string, error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	res, err := s.DoError(ctx, http.MethodHead, s.path(chttp.EncodeDocID(docID)), nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()
	return chttp.GetRev(res)
}

// Delete deletes the current revision of a document.
func (s *Store) Delete(ctx context.Context, docID string) error {
	rev, err := s.Rev(ctx, docID)
	if err != nil {
		return err
	}
	opts := &chttp.Options{
		FullCommit: s.FullCommit,
		Query:      url.Values{"rev": {rev}},
	}
	res, err := s.DoError(ctx, http.MethodDelete, s.path(chttp.EncodeDocID(docID)), opts)
	if err != nil {
		return err
	}
	return res.Body.Close()
}
