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
	"net/http"
	"testing"
	"time"

	"gitlab.com/flimzy/testy"
)

func testModel(t *testing.T, opts ...ModelOption) *Model {
	t.Helper()
	m, err := NewModel("thing", []Field{
		{Name: "name", Type: Text},
		{Name: "count", Type: Integer},
		{Name: "weight", Type: Float},
		{Name: "active", Type: Boolean},
	}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewModel(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		fields []Field
		opts   []ModelOption
		status int
		err    string
	}{
		{
			name:   "no name",
			status: http.StatusBadRequest,
			err:    "model name required",
		},
		{
			name:   "empty field name",
			model:  "m",
			fields: []Field{{Name: ""}},
			err:    "model m: empty field name",
		},
		{
			name:   "duplicate field",
			model:  "m",
			fields: []Field{{Name: "a"}, {Name: "a", Type: Integer}},
			err:    `model m: duplicate field "a"`,
		},
		{
			name:   "undeclared identity field",
			model:  "m",
			fields: []Field{{Name: "a"}},
			opts:   []ModelOption{WithIdentity("a", "b")},
			err:    `model m: identity field "b" is not a declared field`,
		},
		{
			name:   "repeated identity field",
			model:  "m",
			fields: []Field{{Name: "a"}},
			opts:   []ModelOption{WithIdentity("a", "a")},
			err:    `model m: identity field "a" listed twice`,
		},
		{
			name:   "valid",
			model:  "m",
			fields: []Field{{Name: "a"}, {Name: "b", Type: Float}},
			opts:   []ModelOption{WithIdentity("b", "a")},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := NewModel(test.model, test.fields, test.opts...)
			if test.status != 0 {
				testy.StatusError(t, test.err, test.status, err)
			}
			testy.Error(t, test.err, err)
			if m.Name() != test.model {
				t.Errorf("Unexpected name: %s", m.Name())
			}
		})
	}
}

func TestModelAccessors(t *testing.T) {
	m := testModel(t, WithIdentity("name", "count"), WithProtected("name", "secret"))
	if d := testy.DiffInterface([]string{"name", "count"}, m.IdentityFields()); d != nil {
		t.Error(d)
	}
	if typ, ok := m.FieldType("weight"); !ok || typ != Float {
		t.Errorf("Unexpected weight type: %s %t", typ, ok)
	}
	if _, ok := m.FieldType("missing"); ok {
		t.Error("missing field reported as declared")
	}
	if !m.IsProtected("secret") || m.IsProtected("public") || m.IsProtected(1) {
		t.Error("Unexpected protection result")
	}
	fields := m.Fields()
	fields[0].Name = "changed"
	if m.Fields()[0].Name != "name" {
		t.Error("Fields returned internal slice")
	}
}

func TestModelCoerce(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("x", 3600)) }
	tests := []struct {
		name     string
		model    *Model
		row      map[string]string
		expected Record
		status   int
		err      string
	}{
		{
			name:  "typed fields and passthrough",
			model: testModel(t),
			row:   map[string]string{"name": "a", "count": "3", "weight": "1.5", "active": "y", "extra": "kept"},
			expected: Record{
				"name":   "a",
				"count":  int64(3),
				"weight": 1.5,
				"active": true,
				"extra":  "kept",
			},
		},
		{
			name:  "absent fields stay absent",
			model: testModel(t),
			row:   map[string]string{"name": "a"},
			expected: Record{
				"name": "a",
			},
		},
		{
			name:   "first failing field reported",
			model:  testModel(t),
			row:    map[string]string{"count": "x", "weight": "y"},
			status: http.StatusBadRequest,
			err:    "Attribute 'count' with value 'x' couldn't be validated: invalid syntax",
		},
		{
			name:  "identity derived after coercion",
			model: testModel(t, WithIdentity("name", "count")),
			row:   map[string]string{"name": "foo", "count": "45"},
			expected: Record{
				"_id":   "a2af2e57947140d517eaa1cc5199e937de7d213d",
				"name":  "foo",
				"count": int64(45),
			},
		},
		{
			name: "transforms run before identity",
			model: testModel(t,
				WithIdentity("name"),
				WithProtected("name", "foo"),
				WithTransform(
					TransformFunc(func(_ *Model, rec Record) error {
						rec["name"] = "foo"
						return nil
					}),
					ProtectionFlag{},
					&Timestamp{Now: now},
				),
			),
			row: map[string]string{"name": "bar"},
			expected: Record{
				"_id":           "0beec7b5ea3f0fdbc95d0dd47f3c5bc275da8a33",
				"name":          "foo",
				"is_protected":  true,
				"date_modified": "2024-05-06T06:08:09Z",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec, err := test.model.Coerce(test.row)
			testy.StatusError(t, test.err, test.status, err)
			if d := testy.DiffInterface(test.expected, rec); d != nil {
				t.Error(d)
			}
		})
	}
}
