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
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DeriveID computes a deterministic document ID from the values of fields,
// taken in order. Each present, non-nil value is rendered in its canonical
// text form; the texts are concatenated without a separator and hashed with
// SHA-1. The result is the lowercase hex digest. ok is false if fields is
// empty.
//
// Absent fields are skipped rather than replaced by a placeholder, so two
// records with different sets of identity fields can collide when their
// concatenations happen to match. Existing document IDs depend on this
// behaviour.
func DeriveID(rec Record, fields []string) (id string, ok bool) {
	if len(fields) == 0 {
		return "", false
	}
	var b strings.Builder
	for _, field := range fields {
		v, present := rec[field]
		if !present || v == nil {
			continue
		}
		b.WriteString(canonicalText(v))
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:]), true
}

// canonicalText renders v as text for hashing and for Text coercion.
// Floats always carry a fractional part or an exponent, so an Integer 45
// and a Float 45 produce different text ("45" and "45.0").
func canonicalText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := t.Float64(); err == nil {
			return formatFloat(f)
		}
		return t.String()
	}
	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
