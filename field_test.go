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
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestCoerce(t *testing.T) {
	type tst struct {
		typ      FieldType
		raw      interface{}
		expected interface{}
		status   int
		err      string
	}
	tests := testy.NewTable()
	tests.Add("nil passes through", tst{
		typ: Integer,
	})
	tests.Add("integer from string", tst{
		typ:      Integer,
		raw:      " 42 ",
		expected: int64(42),
	})
	tests.Add("integer from fractional string", tst{
		typ:    Integer,
		raw:    "4.5",
		status: http.StatusBadRequest,
		err:    "Attribute 'f' with value '4.5' couldn't be validated: invalid syntax",
	})
	tests.Add("integer from float truncates", tst{
		typ:      Integer,
		raw:      -3.9,
		expected: int64(-3),
	})
	tests.Add("integer from bool", tst{
		typ:      Integer,
		raw:      true,
		expected: int64(1),
	})
	tests.Add("integer from json number", tst{
		typ:      Integer,
		raw:      json.Number("12.7"),
		expected: int64(12),
	})
	tests.Add("integer out of range", tst{
		typ:    Integer,
		raw:    "99999999999999999999",
		status: http.StatusBadRequest,
		err:    "Attribute 'f' with value '99999999999999999999' couldn't be validated: value out of range",
	})
	tests.Add("float from string", tst{
		typ:      Float,
		raw:      "1.5",
		expected: 1.5,
	})
	tests.Add("float from int", tst{
		typ:      Float,
		raw:      3,
		expected: 3.0,
	})
	tests.Add("float not a number", tst{
		typ:    Float,
		raw:    "abc",
		status: http.StatusBadRequest,
		err:    "Attribute 'f' with value 'abc' couldn't be validated: invalid syntax",
	})
	tests.Add("float NaN", tst{
		typ:    Float,
		raw:    "NaN",
		status: http.StatusBadRequest,
		err:    "Attribute 'f' with value 'NaN' couldn't be validated: not a finite number",
	})
	tests.Add("text from int", tst{
		typ:      Text,
		raw:      int64(45),
		expected: "45",
	})
	tests.Add("text from float", tst{
		typ:      Text,
		raw:      45.0,
		expected: "45.0",
	})
	tests.Add("text unchanged", tst{
		typ:      Text,
		raw:      " as is ",
		expected: " as is ",
	})
	tests.Add("boolean yes", tst{
		typ:      Boolean,
		raw:      "Yes",
		expected: true,
	})
	tests.Add("boolean zero", tst{
		typ:      Boolean,
		raw:      "0",
		expected: false,
	})
	tests.Add("boolean from int", tst{
		typ:      Boolean,
		raw:      2,
		expected: true,
	})
	tests.Add("boolean invalid", tst{
		typ:    Boolean,
		raw:    "maybe",
		status: http.StatusBadRequest,
		err:    "Attribute 'f' with value 'maybe' couldn't be validated: invalid syntax",
	})
	tests.Add("boolean from slice", tst{
		typ:    Boolean,
		raw:    []string{"x"},
		status: http.StatusBadRequest,
		err:    "Attribute 'f' with value '[x]' couldn't be validated: cannot convert []string to boolean",
	})

	tests.Run(t, func(t *testing.T, test tst) {
		result, err := Coerce("f", test.typ, test.raw)
		testy.StatusError(t, test.err, test.status, err)
		if d := testy.DiffInterface(test.expected, result); d != nil {
			t.Error(d)
		}
	})
}

func TestCoercionErrorFields(t *testing.T) {
	_, err := Coerce("elevation", Integer, "high")
	ce, ok := err.(*CoercionError)
	if !ok {
		t.Fatalf("Unexpected error type: %T", err)
	}
	if ce.Field != "elevation" || ce.Value != "high" {
		t.Errorf("Unexpected error fields: %+v", ce)
	}
}

func TestFieldTypeString(t *testing.T) {
	tests := map[FieldType]string{
		Text:          "text",
		Integer:       "integer",
		Float:         "float",
		Boolean:       "boolean",
		FieldType(99): "FieldType(99)",
	}
	for typ, expected := range tests {
		if s := typ.String(); s != expected {
			t.Errorf("Unexpected name %q for %d", s, int(typ))
		}
	}
}

func TestParseFieldType(t *testing.T) {
	typ, err := ParseFieldType("Float")
	testy.Error(t, "", err)
	if typ != Float {
		t.Errorf("Unexpected type: %s", typ)
	}
	_, err = ParseFieldType("date")
	testy.Error(t, `unknown field type "date"`, err)
}
