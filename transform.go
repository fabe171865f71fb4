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
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Transformer is run by a Model after field coercion. It may modify the
// record in place, and should report invalid input as *CoercionError.
type Transformer interface {
	Transform(m *Model, rec Record) error
}

// TransformFunc adapts a function to the Transformer interface.
type TransformFunc func(m *Model, rec Record) error

var _ Transformer = TransformFunc(nil)

// Transform calls f(m, rec).
func (f TransformFunc) Transform(m *Model, rec Record) error {
	return f(m, rec)
}

type chain []Transformer

func (c chain) Transform(m *Model, rec Record) error {
	for _, t := range c {
		if err := t.Transform(m, rec); err != nil {
			return err
		}
	}
	return nil
}

// Chain returns a Transformer running each of ts in order, stopping at the
// first error. Nil entries are skipped.
func Chain(ts ...Transformer) Transformer {
	c := make(chain, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			c = append(c, t)
		}
	}
	return c
}

// UnitConversion converts Field to the canonical unit To when UnitField holds
// one of the alternate units in From. The value is multiplied by Factor using
// decimal arithmetic, coerced to Type (Integer results are rounded half away
// from zero), and UnitField is rewritten to To.
type UnitConversion struct {
	Field     string
	UnitField string
	From      []string
	To        string
	Factor    decimal.Decimal
	Type      FieldType
}

var _ Transformer = &UnitConversion{}

// Transform implements Transformer.
func (u *UnitConversion) Transform(_ *Model, rec Record) error {
	unit, _ := rec[u.UnitField].(string)
	if !u.matches(unit) {
		return nil
	}
	raw, ok := rec[u.Field]
	if !ok || raw == nil {
		return nil
	}
	d, err := toDecimal(raw)
	if err != nil {
		return &CoercionError{Field: u.Field, Value: raw, Reason: err.Error()}
	}
	converted := d.Mul(u.Factor)
	var v interface{}
	switch u.Type {
	case Integer:
		rounded := converted.Round(0)
		if rounded.GreaterThan(maxInt64) || rounded.LessThan(minInt64) {
			return &CoercionError{Field: u.Field, Value: raw, Reason: errOutOfRange.Error()}
		}
		v = rounded.IntPart()
	case Text:
		v = converted.String()
	default:
		v, err = Coerce(u.Field, u.Type, converted.InexactFloat64())
		if err != nil {
			return err
		}
	}
	rec[u.Field] = v
	rec[u.UnitField] = u.To
	return nil
}

func (u *UnitConversion) matches(unit string) bool {
	unit = strings.TrimSpace(unit)
	for _, from := range u.From {
		if strings.EqualFold(unit, from) {
			return true
		}
	}
	return false
}

var (
	errNotNumber  = errors.New("not a number")
	errOutOfRange = errors.New("value out of range")

	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

func toDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, errNotNumber
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Decimal{}, errNotNumber
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	}
	if i, ok := asInt64(raw); ok {
		return decimal.NewFromInt(i), nil
	}
	return decimal.Decimal{}, errNotNumber
}

// ProtectionFlag sets is_protected to true when the model's protected field
// holds one of its protected marker values.
type ProtectionFlag struct{}

var _ Transformer = ProtectionFlag{}

// Transform implements Transformer.
func (ProtectionFlag) Transform(m *Model, rec Record) error {
	if m.ProtectedField() == "" {
		return nil
	}
	if m.IsProtected(rec[m.ProtectedField()]) {
		rec[KeyProtected] = true
	}
	return nil
}

// Timestamp stamps Field (date_modified by default) with the current UTC
// time in TimestampFormat.
type Timestamp struct {
	Field string
	// Now defaults to time.Now.
	Now func() time.Time
}

var _ Transformer = &Timestamp{}

// Transform implements Transformer.
func (t *Timestamp) Transform(_ *Model, rec Record) error {
	field := t.Field
	if field == "" {
		field = KeyDateModified
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	rec[field] = now().UTC().Format(TimestampFormat)
	return nil
}
