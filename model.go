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
	"github.com/pkg/errors"
)

// Field declares the type of one model field.
type Field struct {
	Name string
	Type FieldType
}

// Model describes how raw rows become typed records: the type of each
// declared field, the identity fields from which the document ID is derived,
// the values that flag a record as protected, and a transform run after
// field coercion. A Model is immutable once built.
type Model struct {
	name           string
	fields         []Field
	types          map[string]FieldType
	identity       []string
	protectedField string
	protected      map[string]struct{}
	transform      Transformer
}

// ModelOption configures a Model built by NewModel.
type ModelOption func(*Model)

// WithIdentity sets the ordered identity fields. Every identity field must
// also be a declared field.
func WithIdentity(fields ...string) ModelOption {
	return func(m *Model) {
		m.identity = append([]string(nil), fields...)
	}
}

// WithProtected flags records as protected when the value of field is one of
// values. See ProtectionFlag.
func WithProtected(field string, values ...string) ModelOption {
	return func(m *Model) {
		m.protectedField = field
		m.protected = make(map[string]struct{}, len(values))
		for _, v := range values {
			m.protected[v] = struct{}{}
		}
	}
}

// WithTransform sets the transforms run, in order, after field coercion.
func WithTransform(t ...Transformer) ModelOption {
	return func(m *Model) {
		m.transform = Chain(t...)
	}
}

// NewModel returns a new model with the given name and ordered fields.
func NewModel(name string, fields []Field, opts ...ModelOption) (*Model, error) {
	if name == "" {
		return nil, missingArg("model name")
	}
	m := &Model{
		name:   name,
		fields: append([]Field(nil), fields...),
		types:  make(map[string]FieldType, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.Errorf("model %s: empty field name", name)
		}
		if _, ok := m.types[f.Name]; ok {
			return nil, errors.Errorf("model %s: duplicate field %q", name, f.Name)
		}
		m.types[f.Name] = f.Type
	}
	for _, opt := range opts {
		opt(m)
	}
	seen := make(map[string]struct{}, len(m.identity))
	for _, f := range m.identity {
		if _, ok := m.types[f]; !ok {
			return nil, errors.Errorf("model %s: identity field %q is not a declared field", name, f)
		}
		if _, ok := seen[f]; ok {
			return nil, errors.Errorf("model %s: identity field %q listed twice", name, f)
		}
		seen[f] = struct{}{}
	}
	return m, nil
}

// Name returns the model's registry name.
func (m *Model) Name() string { return m.name }

// Fields returns a copy of the declared fields, in declaration order.
func (m *Model) Fields() []Field {
	return append([]Field(nil), m.fields...)
}

// FieldType returns the declared type of the named field.
func (m *Model) FieldType(name string) (FieldType, bool) {
	t, ok := m.types[name]
	return t, ok
}

// IdentityFields returns a copy of the ordered identity fields.
func (m *Model) IdentityFields() []string {
	return append([]string(nil), m.identity...)
}

// ProtectedField returns the field consulted by IsProtected.
func (m *Model) ProtectedField() string { return m.protectedField }

// IsProtected reports whether v is one of the model's protected marker
// values.
func (m *Model) IsProtected(v interface{}) bool {
	s, ok := v.(string)
	if !ok || len(m.protected) == 0 {
		return false
	}
	_, ok = m.protected[s]
	return ok
}

// Coerce builds a typed record from an untyped row. See CoerceRecord.
func (m *Model) Coerce(row map[string]string) (Record, error) {
	rec := recordFromRow(row)
	if err := m.CoerceRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CoerceRecord coerces, in place, every declared field present in rec,
// leaving undeclared keys untouched. It then runs the model's transform and,
// if the model has identity fields, sets _id to the derived ID. The first
// failing field, in declaration order, is reported as *CoercionError.
func (m *Model) CoerceRecord(rec Record) error {
	for _, f := range m.fields {
		raw, ok := rec[f.Name]
		if !ok {
			continue
		}
		v, err := Coerce(f.Name, f.Type, raw)
		if err != nil {
			return err
		}
		rec[f.Name] = v
	}
	if m.transform != nil {
		if err := m.transform.Transform(m, rec); err != nil {
			return err
		}
	}
	if id, ok := DeriveID(rec, m.identity); ok {
		rec.SetID(id)
	}
	return nil
}
