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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FieldType is the semantic type of a model field.
type FieldType int

// The supported field types.
const (
	Text FieldType = iota
	Integer
	Float
	Boolean
)

var fieldTypeNames = map[FieldType]string{
	Text:    "text",
	Integer: "integer",
	Float:   "float",
	Boolean: "boolean",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return "FieldType(" + strconv.Itoa(int(t)) + ")"
}

// ParseFieldType returns the FieldType named by s, as returned by String.
func ParseFieldType(s string) (FieldType, error) {
	for t, name := range fieldTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown field type %q", s)
}

// Coerce converts raw to the Go representation of field type t: string,
// int64, float64 or bool. A nil raw value is returned unchanged. Failures
// are reported as *CoercionError for the named field.
func Coerce(field string, t FieldType, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := t.coerce(raw)
	if err != nil {
		return nil, &CoercionError{Field: field, Value: raw, Reason: err.Error()}
	}
	return v, nil
}

func (t FieldType) coerce(raw interface{}) (interface{}, error) {
	switch t {
	case Text:
		return toText(raw), nil
	case Integer:
		return toInteger(raw)
	case Float:
		return toFloat(raw)
	case Boolean:
		return toBoolean(raw)
	}
	return nil, errors.Errorf("unsupported field type %s", t)
}

func toText(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return canonicalText(raw)
}

func toInteger(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, numError(err)
		}
		return i, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, numError(err)
		}
		return truncate(f)
	case float64:
		return truncate(v)
	case float32:
		return truncate(float64(v))
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	if i, ok := asInt64(raw); ok {
		return i, nil
	}
	return 0, errors.Errorf("cannot convert %T to %s", raw, Integer)
}

// truncate converts f toward zero, the same way a float is narrowed to an
// integer field.
func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, errors.New("value out of range")
	}
	return int64(f), nil
}

func toFloat(raw interface{}) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, numError(err)
		}
	case json.Number:
		var err error
		f, err = v.Float64()
		if err != nil {
			return 0, numError(err)
		}
	case float64:
		f = v
	case float32:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	default:
		i, ok := asInt64(raw)
		if !ok {
			return 0, errors.Errorf("cannot convert %T to %s", raw, Float)
		}
		f = float64(i)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func toBoolean(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, numError(err)
		}
		return b, nil
	}
	if i, ok := asInt64(raw); ok {
		return i != 0, nil
	}
	return false, errors.Errorf("cannot convert %T to %s", raw, Boolean)
}

// asInt64 widens any Go integer kind to int64.
func asInt64(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// numError strips the "strconv.ParseX: parsing ..." prefix, since
// CoercionError already names the offending value.
func numError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
