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
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/flimzy/testy"
)

func metresToFeet(typ FieldType) *UnitConversion {
	return &UnitConversion{
		Field:     "elevation",
		UnitField: "elevation_units",
		From:      []string{"m.", "m"},
		To:        "ft.",
		Factor:    decimal.RequireFromString("3.280839895013123"),
		Type:      typ,
	}
}

func TestUnitConversion(t *testing.T) {
	tests := []struct {
		name     string
		conv     *UnitConversion
		rec      Record
		expected Record
		status   int
		err      string
	}{
		{
			name:     "metres to integer feet",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation": int64(100), "elevation_units": "m."},
			expected: Record{"elevation": int64(328), "elevation_units": "ft."},
		},
		{
			name:     "rounds half away from zero",
			conv:     &UnitConversion{Field: "v", UnitField: "u", From: []string{"x"}, To: "y", Factor: decimal.RequireFromString("0.5"), Type: Integer},
			rec:      Record{"v": int64(5), "u": "x"},
			expected: Record{"v": int64(3), "u": "y"},
		},
		{
			name:     "unit matched case-insensitively",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation": "10", "elevation_units": " M "},
			expected: Record{"elevation": int64(33), "elevation_units": "ft."},
		},
		{
			name:     "float target",
			conv:     metresToFeet(Float),
			rec:      Record{"elevation": 2.0, "elevation_units": "m"},
			expected: Record{"elevation": 6.561679790026246, "elevation_units": "ft."},
		},
		{
			name:     "canonical unit untouched",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation": int64(100), "elevation_units": "ft."},
			expected: Record{"elevation": int64(100), "elevation_units": "ft."},
		},
		{
			name:     "no unit",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation": int64(100)},
			expected: Record{"elevation": int64(100)},
		},
		{
			name:     "no value",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation_units": "m."},
			expected: Record{"elevation_units": "m."},
		},
		{
			name:   "non-numeric value",
			conv:   metresToFeet(Integer),
			rec:    Record{"elevation": "high", "elevation_units": "m."},
			status: http.StatusBadRequest,
			err:    "Attribute 'elevation' with value 'high' couldn't be validated: not a number",
		},
		{
			name:     "overflowing integer",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation": int64(9e18), "elevation_units": "m."},
			expected: Record{"elevation": int64(9e18), "elevation_units": "m."},
			status:   http.StatusBadRequest,
			err:      "Attribute 'elevation' with value '9000000000000000000' couldn't be validated: value out of range",
		},
		{
			name:     "underflowing integer",
			conv:     metresToFeet(Integer),
			rec:      Record{"elevation": "-9000000000000000000", "elevation_units": "m"},
			expected: Record{"elevation": "-9000000000000000000", "elevation_units": "m"},
			status:   http.StatusBadRequest,
			err:      "Attribute 'elevation' with value '-9000000000000000000' couldn't be validated: value out of range",
		},
		{
			name:     "largest integer",
			conv:     &UnitConversion{Field: "v", UnitField: "u", From: []string{"x"}, To: "y", Factor: decimal.NewFromInt(1), Type: Integer},
			rec:      Record{"v": int64(math.MaxInt64), "u": "x"},
			expected: Record{"v": int64(math.MaxInt64), "u": "y"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.conv.Transform(nil, test.rec)
			testy.StatusError(t, test.err, test.status, err)
			if d := testy.DiffInterface(test.expected, test.rec); d != nil {
				t.Error(d)
			}
		})
	}
}

func TestProtectionFlag(t *testing.T) {
	m := testModel(t, WithProtected("name", "rare", "endangered"))
	rec := Record{"name": "rare"}
	if err := (ProtectionFlag{}).Transform(m, rec); err != nil {
		t.Fatal(err)
	}
	if rec[KeyProtected] != true {
		t.Errorf("Expected record to be protected: %v", rec)
	}
	rec = Record{"name": "common"}
	_ = ProtectionFlag{}.Transform(m, rec)
	if _, ok := rec[KeyProtected]; ok {
		t.Errorf("Unexpected protection flag: %v", rec)
	}
	rec = Record{"name": "rare"}
	_ = ProtectionFlag{}.Transform(testModel(t), rec)
	if _, ok := rec[KeyProtected]; ok {
		t.Errorf("Unexpected protection flag without protected field: %v", rec)
	}
}

func TestTimestamp(t *testing.T) {
	ts := &Timestamp{
		Field: "stamped",
		Now:   func() time.Time { return time.Date(2001, 2, 3, 4, 5, 6, 7, time.UTC) },
	}
	rec := Record{}
	if err := ts.Transform(nil, rec); err != nil {
		t.Fatal(err)
	}
	if rec["stamped"] != "2001-02-03T04:05:06Z" {
		t.Errorf("Unexpected timestamp: %v", rec["stamped"])
	}
	rec = Record{}
	_ = (&Timestamp{}).Transform(nil, rec)
	if _, err := time.Parse(TimestampFormat, rec[KeyDateModified].(string)); err != nil {
		t.Errorf("Unexpected default timestamp: %s", err)
	}
}

func TestChain(t *testing.T) {
	var calls []string
	step := func(name string, err error) Transformer {
		return TransformFunc(func(*Model, Record) error {
			calls = append(calls, name)
			return err
		})
	}
	err := Chain(step("a", nil), nil, step("b", &CoercionError{Field: "f", Value: 1, Reason: "bad"}), step("c", nil)).Transform(nil, Record{})
	testy.Error(t, "Attribute 'f' with value '1' couldn't be validated: bad", err)
	if d := testy.DiffInterface([]string{"a", "b"}, calls); d != nil {
		t.Error(d)
	}
}
