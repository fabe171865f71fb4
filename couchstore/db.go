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
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	kivik "github.com/go-kivik/kivik/v4"

	"github.com/go-kivik/cushion/chttp"
)

// Exists reports whether the database exists.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	res, err := s.DoError(ctx, http.MethodHead, s.path(""), nil)
	if kivik.HTTPStatus(err) == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, res.Body.Close()
}

// EnsureDB creates the database if it does not exist yet. created is true
// if this call created it.
func (s *Store) EnsureDB(ctx context.Context) (created bool, err error) {
	exists, err := s.Exists(ctx)
	if err != nil || exists {
		return false, err
	}
	res, err := s.DoError(ctx, http.MethodPut, s.path(""), nil)
	if kivik.HTTPStatus(err) == http.StatusPreconditionFailed {
		// Created concurrently.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, res.Body.Close()
}

// Destroy deletes the database.
func (s *Store) Destroy(ctx context.Context) error {
	res, err := s.DoError(ctx, http.MethodDelete, s.path(""), nil)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// Empty deletes every document by recreating the database.
func (s *Store) Empty(ctx context.Context) error {
	if err := s.Destroy(ctx); err != nil && kivik.HTTPStatus(err) != http.StatusNotFound {
		return err
	}
	_, err := s.EnsureDB(ctx)
	return err
}

// Compact starts compaction of the database.
func (s *Store) Compact(ctx context.Context) error {
	res, err := s.DoError(ctx, http.MethodPost, s.path("_compact"), nil)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// Info is a summary of a database.
type Info struct {
	Name     string `json:"db_name"`
	DocCount int64  `json:"doc_count"`
	DelCount int64  `json:"doc_del_count"`
}

// Info returns the database summary.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	info := &Info{}
	if _, err := s.DoJSON(ctx, http.MethodGet, s.path(""), nil, info); err != nil {
		return nil, err
	}
	return info, nil
}

// AllDBs lists the databases on the server client talks to.
func AllDBs(ctx context.Context, client *chttp.Client) ([]string, error) {
	var dbs []string
	_, err := client.DoJSON(ctx, http.MethodGet, "/_all_dbs", nil, &dbs)
	return dbs, err
}

const designPrefix = "_design/"

// DesignViews returns the sorted view names of each design document that
// defines views, keyed by the design document name without its _design/
// prefix.
func (s *Store) DesignViews(ctx context.Context) (map[string][]string, error) {
	var result struct {
		Rows []struct {
			ID  string `json:"id"`
			Doc struct {
				Views map[string]json.RawMessage `json:"views"`
			} `json:"doc"`
		} `json:"rows"`
	}
	opts := &chttp.Options{
		Query: url.Values{
			"startkey":     {`"` + designPrefix + `"`},
			"endkey":       {`"_design0"`},
			"include_docs": {"true"},
		},
	}
	if _, err := s.DoJSON(ctx, http.MethodGet, s.path("_all_docs"), opts, &result); err != nil {
		return nil, err
	}
	views := make(map[string][]string)
	for _, row := range result.Rows {
		if row.Doc.Views == nil || !strings.HasPrefix(row.ID, designPrefix) {
			continue
		}
		names := make([]string, 0, len(row.Doc.Views))
		for name := range row.Doc.Views {
			names = append(names, name)
		}
		sort.Strings(names)
		views[strings.TrimPrefix(row.ID, designPrefix)] = names
	}
	return views, nil
}
