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
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SchemaField describes one editable field of an arbitrary document.
type SchemaField struct {
	Name string
	Type FieldType
	// Concealed is set for system fields (names starting with an
	// underscore), which a form should show but not let the user change.
	Concealed bool
}

// Schema is the field layout of a document, ordered by field name.
type Schema []SchemaField

// InferSchema inspects the runtime value of each entry in doc and returns
// the corresponding schema. Values that are not integers, floats, strings or
// booleans, such as nested objects, arrays and nulls, are left out.
func InferSchema(doc map[string]interface{}) Schema {
	names := make([]string, 0, len(doc))
	for k := range doc {
		names = append(names, k)
	}
	sort.Strings(names)
	schema := make(Schema, 0, len(names))
	for _, name := range names {
		t, ok := kindOf(doc[name])
		if !ok {
			continue
		}
		schema = append(schema, SchemaField{
			Name:      name,
			Type:      t,
			Concealed: strings.HasPrefix(name, "_"),
		})
	}
	return schema
}

func kindOf(v interface{}) (FieldType, bool) {
	switch t := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Integer, true
	case float32, float64:
		return Float, true
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return Integer, true
		}
		if _, err := t.Float64(); err == nil {
			return Float, true
		}
		return 0, false
	case string:
		return Text, true
	case bool:
		return Boolean, true
	}
	return 0, false
}

// Field returns the named schema field.
func (s Schema) Field(name string) (SchemaField, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return SchemaField{}, false
}

// Apply coerces the submitted form values by the schema's field types and
// stores them in doc. Unknown and concealed fields are rejected. All field
// failures are returned together as FormErrors, in which case doc is left
// unchanged.
func (s Schema) Apply(doc Record, values map[string]string) error {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	var errs FormErrors
	typed := make(map[string]interface{}, len(values))
	for _, name := range names {
		f, ok := s.Field(name)
		switch {
		case !ok:
			errs = append(errs, errors.Errorf("unknown field %q", name))
			continue
		case f.Concealed:
			errs = append(errs, errors.Errorf("field %q cannot be edited", name))
			continue
		}
		v, err := Coerce(name, f.Type, values[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		typed[name] = v
	}
	if len(errs) > 0 {
		return errs
	}
	for k, v := range typed {
		doc[k] = v
	}
	return nil
}

// EditDocument fetches the document id, applies values through its inferred
// schema and saves it, returning the new revision.
func EditDocument(ctx context.Context, store Store, id string, values map[string]string) (string, error) {
	if id == "" {
		return "", missingArg("docID")
	}
	doc, err := store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := InferSchema(doc).Apply(doc, values); err != nil {
		return "", err
	}
	return store.Save(ctx, doc)
}
